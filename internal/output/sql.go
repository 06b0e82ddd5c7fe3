package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"schemaport/internal/core"
	"schemaport/internal/migration"
)

type sqlFormatter struct{}

// FormatSchema lists the parsed tables as SQL comments.
func (sqlFormatter) FormatSchema(db *core.Database) (string, error) {
	if db == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("-- Parsed schema\n")
	for _, e := range db.Enums {
		fmt.Fprintf(&sb, "-- Enum: %s (%s)\n", e.Name, strings.Join(e.Values, ", "))
	}
	for _, t := range db.Tables {
		sb.WriteString("-- " + t.String() + "\n")
	}
	return sb.String(), nil
}

// FormatMigration renders the full DDL script: header, extensions, enum
// types, each table followed by its indexes, then the foreign-key block.
func (sqlFormatter) FormatMigration(m *migration.Migration) (string, error) {
	if m == nil {
		return "", nil
	}

	var sb strings.Builder
	writeHeader(&sb, m)

	sb.WriteString("-- Enable PostgreSQL extensions\n")
	writeStatements(&sb, m.Section(core.SectionExtensions))
	sb.WriteString("\n")

	if types := m.Section(core.SectionTypes); len(types) > 0 {
		sb.WriteString("-- Create enum types\n")
		writeStatements(&sb, types)
		sb.WriteString("\n")
	}

	sb.WriteString("-- Tables\n")
	for _, op := range m.Section(core.SectionTables) {
		writeStatement(&sb, op.SQL)
		sb.WriteString("\n")

		if idx := m.TableOperations(core.SectionIndexes, op.Table); len(idx) > 0 {
			sb.WriteString("-- Indexes for " + op.Table + "\n")
			writeStatements(&sb, idx)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("-- Foreign Key Constraints\n")
	sb.WriteString("-- Note: These are inferred and may need manual adjustment\n")
	sb.WriteString("\n")
	writeStatements(&sb, m.Section(core.SectionForeignKeys))

	return sb.String(), nil
}

func writeHeader(sb *strings.Builder, m *migration.Migration) {
	title := strings.TrimSpace(m.Title)
	if title == "" {
		title = "Database Schema"
	}
	sb.WriteString("-- " + title + "\n")
	if src := strings.TrimSpace(m.Source); src != "" {
		sb.WriteString("-- Converted from " + src + "\n")
	}
	sb.WriteString("-- Generated at: " + m.GeneratedAt.Format(time.RFC3339) + "\n")

	for _, note := range m.Notes() {
		for _, line := range splitCommentLines(note) {
			if line == "" {
				continue
			}
			sb.WriteString("-- Note: " + line + "\n")
		}
	}
	sb.WriteString("\n")
}

func writeStatements(sb *strings.Builder, ops []core.Operation) {
	for _, op := range ops {
		writeStatement(sb, op.SQL)
	}
}

func writeStatement(sb *strings.Builder, stmt string) {
	stmt = strings.TrimSpace(stmt)
	if stmt == "" {
		return
	}
	sb.WriteString(stmt)
	if !strings.HasSuffix(stmt, ";") {
		sb.WriteString(";")
	}
	sb.WriteString("\n")
}

// FormatRollbackSQL formats a migration's rollback statements as SQL, in
// execution order.
func FormatRollbackSQL(m *migration.Migration) string {
	if m == nil {
		return ""
	}

	var sb strings.Builder
	title := strings.TrimSpace(m.Title)
	if title == "" {
		title = "Database Schema"
	}
	sb.WriteString("-- " + title + " rollback\n")
	sb.WriteString("-- Run to revert the generated schema (review carefully).\n")

	rb := m.RollbackStatements()
	if len(rb) == 0 {
		sb.WriteString("\n-- No rollback statements generated.\n")
		return sb.String()
	}

	sb.WriteString("\n")
	for _, stmt := range rb {
		writeStatement(&sb, stmt)
	}

	return sb.String()
}

// WriteRollback writes formatted rollback SQL to the given writer.
func WriteRollback(m *migration.Migration, w io.Writer) error {
	_, err := io.WriteString(w, FormatRollbackSQL(m))
	return err
}
