package output

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"schemaport/internal/core"
	"schemaport/internal/migration"
)

type summaryFormatter struct{}

// FormatSchema formats a parsed schema as a compact summary.
// Example output:
//
//	Enum types:   1
//	Tables:       4
//	Columns:      23
//	Indexes:      6
func (summaryFormatter) FormatSchema(db *core.Database) (string, error) {
	if db == nil || (len(db.Tables) == 0 && len(db.Enums) == 0) {
		return "No tables found.\n", nil
	}

	var sb strings.Builder
	s := schemaStats(db)

	sb.WriteString("Schema Summary\n")
	sb.WriteString("==============\n\n")
	writeCounts(&sb, s)

	sb.WriteString("\nDetails:\n")
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Table", "Columns", "Indexes"})
	for _, t := range db.Tables {
		tw.AppendRow(table.Row{t.Name, len(t.Columns), len(t.Indexes)})
	}
	sb.WriteString(tw.Render())
	sb.WriteString("\n")

	return sb.String(), nil
}

// FormatMigration formats a generated migration as a compact summary.
func (summaryFormatter) FormatMigration(m *migration.Migration) (string, error) {
	if m == nil || len(m.Operations) == 0 {
		return "No migration operations.\n", nil
	}

	var sb strings.Builder
	s := migrationStats(m)

	sb.WriteString("Conversion Summary\n")
	sb.WriteString("==================\n\n")
	writeCounts(&sb, s)
	fmt.Fprintf(&sb, "Foreign keys: %d\n", s.ForeignKeys)

	fmt.Fprintf(&sb, "\nSQL Statements:      %d\n", s.SQLStatements)
	fmt.Fprintf(&sb, "Rollback Statements: %d\n", s.RollbackStatements)

	if fks := m.Section(core.SectionForeignKeys); len(fks) > 0 {
		sb.WriteString("\nInferred foreign keys (review before applying):\n")
		for _, op := range fks {
			fmt.Fprintf(&sb, "   - %s\n", firstLine(op.SQL))
		}
	}

	if notes := m.Notes(); len(notes) > 0 {
		fmt.Fprintf(&sb, "\nNotes: %d\n", len(notes))
		for _, n := range notes {
			fmt.Fprintf(&sb, "   - %s\n", n)
		}
	}

	return sb.String(), nil
}

func writeCounts(sb *strings.Builder, s Stats) {
	fmt.Fprintf(sb, "Enum types:   %d\n", s.Enums)
	fmt.Fprintf(sb, "Tables:       %d\n", s.Tables)
	fmt.Fprintf(sb, "Columns:      %d\n", s.Columns)
	fmt.Fprintf(sb, "Indexes:      %d\n", s.Indexes)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
