package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"schemaport/internal/config"
)

var (
	successFmt = color.New(color.FgGreen).SprintfFunc()
	infoFmt    = color.New(color.FgCyan).SprintfFunc()
	warnFmt    = color.New(color.FgYellow).SprintfFunc()
)

// app is the state shared by all commands once flags are parsed.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "schemaport",
		Short:        "Convert Rails schema.rb files into PostgreSQL DDL",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg

			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			if cfg.File != "" {
				a.logger.Debug("loaded config file", "path", cfg.File)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "Config file (default: ./"+config.DefaultFile+" when present)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newConvertCmd(a))
	rootCmd.AddCommand(newParseCmd(a))
	rootCmd.AddCommand(newApplyCmd(a))

	return rootCmd
}

// status writes a colored progress line to stderr so that stdout carries
// only generated output.
func status(w io.Writer, line string) {
	_, _ = fmt.Fprintln(w, line)
}

// writeFile writes content to path, creating missing parent directories.
func writeFile(path string, content string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// createFile truncates or creates path, creating missing parent directories.
func createFile(path string) (*os.File, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	return os.Create(path)
}

func ensureDir(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return nil
}
