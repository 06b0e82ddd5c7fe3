package rails

import (
	"regexp"
	"strings"
)

// Mapping is the result of mapping one declared column type and its options.
type Mapping struct {
	SQLType  string
	Skip     bool
	Nullable bool
	Default  *string
}

var sqlTypes = map[string]string{
	"string":   "VARCHAR(255)",
	"text":     "TEXT",
	"integer":  "INTEGER",
	"bigint":   "BIGINT",
	"float":    "FLOAT",
	"boolean":  "BOOLEAN",
	"date":     "DATE",
	"datetime": "TIMESTAMP WITH TIME ZONE",
	"uuid":     "UUID",
	"jsonb":    "JSONB",
	"json":     "JSON",
	"inet":     "INET",
}

var (
	reNotNull   = regexp.MustCompile(`null:\s*false\b`)
	rePrecision = regexp.MustCompile(`precision:\s*(\d+),\s*scale:\s*(\d+)`)
)

// defaultRules are tried in order; the first match wins.
var defaultRules = []struct {
	re     *regexp.Regexp
	render func(m []string) string
}{
	{regexp.MustCompile(`default:\s*"([^"]+)"`), func(m []string) string { return quoteLiteral(m[1]) }},
	{regexp.MustCompile(`default:\s*'([^']+)'`), func(m []string) string { return quoteLiteral(m[1]) }},
	{regexp.MustCompile(`default:\s*(true|false)\b`), func(m []string) string { return strings.ToUpper(m[1]) }},
	{regexp.MustCompile(`default:\s*(-?\d+(?:\.\d+)?)`), func(m []string) string { return m[1] }},
	{regexp.MustCompile(`default:\s*\{\s*\}`), func([]string) string { return "'{}'" }},
	{regexp.MustCompile(`default:\s*->\s*\{\s*"([^"]+)"\s*\}`), func(m []string) string { return m[1] }},
}

// MapType maps a declared column type and its raw option text to a
// PostgreSQL column type, nullability, and default clause. The lookup on
// declaredType is case-sensitive; unknown types are upper-cased verbatim.
// Virtual (computed) columns map to Skip.
func MapType(declaredType, options string) Mapping {
	if declaredType == "virtual" {
		return Mapping{Skip: true}
	}

	m := Mapping{
		SQLType:  sqlType(declaredType, options),
		Nullable: !reNotNull.MatchString(options),
		Default:  extractDefault(options),
	}
	return m
}

func sqlType(declaredType, options string) string {
	if declaredType == "decimal" {
		if m := rePrecision.FindStringSubmatch(options); m != nil {
			return "DECIMAL(" + m[1] + "," + m[2] + ")"
		}
		return "DECIMAL"
	}
	if t, ok := sqlTypes[declaredType]; ok {
		return t
	}
	return strings.ToUpper(declaredType)
}

func extractDefault(options string) *string {
	for _, rule := range defaultRules {
		if m := rule.re.FindStringSubmatch(options); m != nil {
			v := rule.render(m)
			return &v
		}
	}
	return nil
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
