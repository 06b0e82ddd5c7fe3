// Package config loads schemaport settings. Precedence, highest first:
// explicitly set flags, SCHEMAPORT_* environment variables, the YAML config
// file, built-in defaults.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"schemaport/internal/dialect"
	"schemaport/internal/infer"
	"schemaport/internal/output"
)

// DefaultFile is looked up in the working directory when no --config is given.
const DefaultFile = "schemaport.yaml"

// EnvPrefix namespaces environment overrides, e.g. SCHEMAPORT_DSN.
const EnvPrefix = "SCHEMAPORT_"

// EnvFile is loaded into the process environment when present. Variables
// already set are not overridden.
const EnvFile = ".env"

var reEnvRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// Config holds every user-tunable setting.
type Config struct {
	Title        string   `koanf:"title"`
	Format       string   `koanf:"format"`
	Pluralizer   string   `koanf:"pluralizer"`
	FKExclusions []string `koanf:"fk_exclusions"`
	DSN          string   `koanf:"dsn"`
	Verbose      bool     `koanf:"verbose"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

func defaults() map[string]any {
	return map[string]any{
		"title":         dialect.DefaultTitle,
		"format":        string(output.FormatSQL),
		"pluralizer":    infer.StrategyNaive,
		"fk_exclusions": infer.DefaultExclusions,
		"dsn":           "",
		"verbose":       false,
	}
}

// Load reads configuration from cfgFile (or DefaultFile when present),
// the environment, and the changed flags in flags, which may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	if err := loadEnvFile(EnvFile); err != nil {
		return nil, err
	}

	// SCHEMAPORT_FK_EXCLUSIONS=a,b -> fk_exclusions: [a b]
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if key == "fk_exclusions" {
			return key, splitList(value)
		}
		return key, value
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if key == "exclude" {
				key = "fk_exclusions"
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used
	cfg.DSN = expandEnvVars(cfg.DSN)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown output formats and pluralizer strategies.
func (c *Config) Validate() error {
	if _, err := output.NewFormatter(c.Format); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := infer.PluralizerFor(c.Pluralizer); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// findConfigFile returns the explicit path, or DefaultFile when it exists.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile
	}
	return ""
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s file: %w", path, err)
	}
	return nil
}

// expandEnvVars replaces ${VAR} references with their values. Unset
// variables are left as written.
func expandEnvVars(s string) string {
	return reEnvRef.ReplaceAllStringFunc(s, func(match string) string {
		if val, ok := os.LookupEnv(match[2 : len(match)-1]); ok {
			return val
		}
		return match
	})
}

func splitList(s string) []string {
	out := []string{}
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
