package postgres

import (
	"fmt"
	"strings"

	"schemaport/internal/core"
)

const columnIndent = "    "

// GenerateCreateExtension enables a PostgreSQL extension when missing.
func (g *Generator) GenerateCreateExtension(name string) string {
	return fmt.Sprintf("CREATE EXTENSION IF NOT EXISTS %q;", name)
}

// GenerateCreateType renders an enum type with its values in declared order.
func (g *Generator) GenerateCreateType(e *core.EnumType) string {
	values := make([]string, 0, len(e.Values))
	for _, v := range e.Values {
		values = append(values, g.QuoteString(v))
	}
	return fmt.Sprintf("CREATE TYPE %s AS ENUM (%s);", e.Name, strings.Join(values, ","))
}

// GenerateDropType renders the rollback of GenerateCreateType.
func (g *Generator) GenerateDropType(e *core.EnumType) string {
	return fmt.Sprintf("DROP TYPE IF EXISTS %s;", e.Name)
}

// GenerateCreateTable renders one CREATE TABLE statement with a column per
// line. A table without columns renders an empty column list.
func (g *Generator) GenerateCreateTable(t *core.Table) string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	sb.WriteString(t.Name)
	sb.WriteString(" (\n")

	for i, c := range t.Columns {
		if i > 0 {
			sb.WriteString(",\n")
		}
		sb.WriteString(columnIndent)
		sb.WriteString(g.columnDefinition(c))
	}
	if len(t.Columns) > 0 {
		sb.WriteString("\n")
	}

	sb.WriteString(");")
	return sb.String()
}

// GenerateDropTable renders the rollback of GenerateCreateTable. CASCADE also
// drops the table's indexes and the foreign keys pointing at it.
func (g *Generator) GenerateDropTable(t *core.Table) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE;", t.Name)
}

// columnDefinition renders <name> <type>[ PRIMARY KEY][ NOT NULL][ DEFAULT x].
// A primary key implies NOT NULL, which is therefore not repeated.
func (g *Generator) columnDefinition(c *core.Column) string {
	parts := []string{c.Name, c.SQLType}
	if c.PrimaryKey {
		parts = append(parts, "PRIMARY KEY")
	} else if !c.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if c.Default != nil {
		parts = append(parts, "DEFAULT "+*c.Default)
	}
	return strings.Join(parts, " ")
}

// GenerateCreateIndex renders an index over table using its explicit name or
// the generated idx_<table>_<columns> name.
func (g *Generator) GenerateCreateIndex(table string, idx *core.Index) string {
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s %s;", unique, idx.EffectiveName(table), table, g.formatColumns(idx.Columns))
}

// GenerateForeignKey renders an inferred constraint referencing the id column
// of its target table.
func (g *Generator) GenerateForeignKey(fk core.ForeignKey) string {
	return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s\n%sFOREIGN KEY (%s) REFERENCES %s(id);",
		fk.FromTable, fk.ConstraintName(), columnIndent, fk.FromColumn, fk.ToTable)
}
