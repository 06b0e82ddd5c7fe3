// Package postgres provides PostgreSQL DDL generation for a parsed schema:
// extensions, enum types, tables with their indexes, and inferred foreign
// keys, each paired with a rollback statement where one exists.
package postgres

import (
	"time"

	"schemaport/internal/core"
	"schemaport/internal/dialect"
	"schemaport/internal/migration"
)

// Extensions are enabled at the top of every generated script.
var Extensions = []string{"pgcrypto", "plpgsql"}

func init() {
	dialect.RegisterDialect(dialect.PostgreSQL, func() dialect.Dialect {
		return NewPostgresDialect()
	})
}

// Dialect represents the PostgreSQL dialect.
type Dialect struct {
	generator *Generator
}

// NewPostgresDialect initializes a new PostgreSQL dialect instance.
func NewPostgresDialect() *Dialect {
	return &Dialect{generator: NewPostgresGenerator()}
}

// Name returns the name of the PostgreSQL dialect.
func (d *Dialect) Name() dialect.Type {
	return dialect.PostgreSQL
}

// Generator returns the DDL generator for the PostgreSQL dialect.
func (d *Dialect) Generator() dialect.Generator {
	return d.generator
}

// Generator is a stateless struct for generating PostgreSQL DDL.
type Generator struct{}

// NewPostgresGenerator initializes a new PostgreSQL generator instance.
func NewPostgresGenerator() *Generator {
	return &Generator{}
}

// Generate renders db and its inferred foreign keys into a migration in fixed
// section order: extensions, enum types, tables each followed by their
// indexes, then foreign keys in inference order. It never validates its input.
func (g *Generator) Generate(db *core.Database, fks []core.ForeignKey, opts dialect.Options) *migration.Migration {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if db == nil {
		db = &core.Database{}
	}

	m := &migration.Migration{
		Title:       opts.Title,
		Source:      opts.Source,
		GeneratedAt: opts.Now(),
		Schema:      db,
	}

	for _, note := range db.Notes {
		m.AddNote(note)
	}

	for _, ext := range Extensions {
		m.AddStatement(core.SectionExtensions, "", g.GenerateCreateExtension(ext))
	}

	for _, e := range db.Enums {
		m.AddStatementWithRollback(core.SectionTypes, "", g.GenerateCreateType(e), g.GenerateDropType(e))
	}

	for _, t := range db.Tables {
		m.AddStatementWithRollback(core.SectionTables, t.Name, g.GenerateCreateTable(t), g.GenerateDropTable(t))
		for _, idx := range t.Indexes {
			m.AddStatement(core.SectionIndexes, t.Name, g.GenerateCreateIndex(t.Name, idx))
		}
	}

	for _, fk := range fks {
		m.AddStatement(core.SectionForeignKeys, fk.FromTable, g.GenerateForeignKey(fk))
	}

	m.Dedupe()
	return m
}
