// Package output provides a set of formatters for parsed schemas and
// generated migrations. It provides three formats: SQL, JSON, and a compact
// summary.
package output

import (
	"fmt"
	"strings"

	"schemaport/internal/core"
	"schemaport/internal/migration"
)

// Format is an enum type representing the available output formats.
type Format string

const (
	FormatSQL     Format = "sql"
	FormatJSON    Format = "json"
	FormatSummary Format = "summary"
)

// Formatter is an interface for formatting parsed schemas and migrations.
type Formatter interface {
	FormatSchema(*core.Database) (string, error)
	FormatMigration(*migration.Migration) (string, error)
}

// NewFormatter creates a new Formatter instance based on the given name.
// If no format is specified, defaults to SQL format.
func NewFormatter(name string) (Formatter, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	switch format {
	case "", FormatSQL:
		return sqlFormatter{}, nil
	case FormatJSON:
		return jsonFormatter{}, nil
	case FormatSummary:
		return summaryFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s; use 'sql', 'json', or 'summary'", name)
	}
}

// Stats are the entity counts reported by the JSON and summary formats.
type Stats struct {
	Enums              int `json:"enums"`
	Tables             int `json:"tables"`
	Columns            int `json:"columns"`
	Indexes            int `json:"indexes"`
	ForeignKeys        int `json:"foreignKeys"`
	SQLStatements      int `json:"sqlStatements"`
	RollbackStatements int `json:"rollbackStatements"`
}

func schemaStats(db *core.Database) Stats {
	if db == nil {
		return Stats{}
	}
	return Stats{
		Enums:   len(db.Enums),
		Tables:  len(db.Tables),
		Columns: db.ColumnCount(),
		Indexes: db.IndexCount(),
	}
}

func migrationStats(m *migration.Migration) Stats {
	s := schemaStats(m.Schema)
	s.Enums = len(m.Section(core.SectionTypes))
	s.Tables = len(m.Section(core.SectionTables))
	s.Indexes = len(m.Section(core.SectionIndexes))
	s.ForeignKeys = len(m.Section(core.SectionForeignKeys))
	s.SQLStatements = len(m.SQLStatements())
	s.RollbackStatements = len(m.RollbackStatements())
	return s
}

func normalizeStatements(stmts []string) []string {
	out := []string{}
	for _, stmt := range stmts {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if !strings.HasSuffix(stmt, ";") {
			stmt += ";"
		}
		out = append(out, stmt)
	}
	return out
}

func splitCommentLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines
}
