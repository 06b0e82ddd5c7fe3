// Package dialect provides a unified interface for SQL dialect generators. A
// generator turns a parsed schema and its inferred foreign keys into an
// ordered migration plan.
package dialect

import (
	"time"

	"schemaport/internal/core"
	"schemaport/internal/migration"
)

type Type string

const (
	PostgreSQL Type = "postgresql"
)

// Generator interface creates a main abstraction for SQL dialects.
type Generator interface {
	Generate(db *core.Database, fks []core.ForeignKey, opts Options) *migration.Migration
	GenerateCreateType(e *core.EnumType) string
	GenerateCreateTable(t *core.Table) string
	GenerateCreateIndex(table string, idx *core.Index) string
	GenerateForeignKey(fk core.ForeignKey) string
	GenerateDropTable(t *core.Table) string
	QuoteString(value string) string
}

// Dialect interface creates a way to interact with a specific SQL dialect.
type Dialect interface {
	Name() Type
	Generator() Generator
}

var registry = map[Type]func() Dialect{}

// RegisterDialect creates a new registry entry for the specified dialect.
func RegisterDialect(d Type, ctor func() Dialect) {
	registry[d] = ctor
}

// GetDialect returns the dialect for the specified type from the registry,
// falling back to PostgreSQL.
func GetDialect(d Type) Dialect {
	if ctor, ok := registry[d]; ok {
		return ctor()
	}
	if ctor, ok := registry[PostgreSQL]; ok {
		return ctor()
	}
	return nil
}

// Options have all settings a user can specify during generation.
type Options struct {
	// Title is the first header line of the generated script.
	Title string
	// Source describes where the schema came from, e.g. "Rails schema.rb".
	Source string
	// Now supplies the generation timestamp. Tests pin it for stable output.
	Now func() time.Time
}

// Default header values.
const (
	DefaultTitle  = "Database Schema"
	DefaultSource = "Rails schema.rb"
)

// DefaultOptions creates a new Options instance with default values.
func DefaultOptions() Options {
	return Options{
		Title:  DefaultTitle,
		Source: DefaultSource,
		Now:    time.Now,
	}
}
