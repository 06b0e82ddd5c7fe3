// Package core contains the single source of truth for a converted schema.
// It provides a structured representation of enum types, tables, columns,
// indexes, and inferred foreign keys that every parser produces and every
// generator consumes.
package core

import (
	"fmt"
	"strings"
)

// Database is the root of a parsed schema document. It owns every entity
// below it; nothing is shared across documents.
type Database struct {
	Enums  []*EnumType `json:"enums,omitempty"`
	Tables []*Table    `json:"tables"`

	// Notes are remarks a parser attaches about input it did not convert.
	Notes []string `json:"notes,omitempty"`
}

// EnumType is a named, ordered set of allowed string values.
type EnumType struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Table represents a table in the schema. Columns and indexes keep the order
// in which they were declared in the source.
type Table struct {
	Name    string    `json:"name"`
	Columns []*Column `json:"columns"`
	Indexes []*Index  `json:"indexes,omitempty"`
}

// Column represents a single column inside a table.
type Column struct {
	Name         string `json:"name"`
	DeclaredType string `json:"declaredType"`
	Options      string `json:"options,omitempty"`
	SQLType      string `json:"sqlType"`
	Nullable     bool   `json:"nullable"`
	PrimaryKey   bool   `json:"primaryKey,omitempty"`

	// Default is the rendered SQL default clause without the DEFAULT keyword,
	// e.g. 'active', TRUE, 0 or now().
	Default *string `json:"default,omitempty"`
}

// Index is a plain or unique index over one or more columns.
type Index struct {
	Name    string   `json:"name,omitempty"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique,omitempty"`
}

// ForeignKey is a referential constraint derived by inference, never parsed.
// The referenced column is always the id of ToTable.
type ForeignKey struct {
	FromTable  string `json:"fromTable"`
	FromColumn string `json:"fromColumn"`
	ToTable    string `json:"toTable"`
}

// SQL type names shared by parsers, inference, and generators.
const (
	SQLTypeUUID      = "UUID"
	SQLTypeBigSerial = "BIGSERIAL"
)

// UUIDDefaultExpr generates a random UUID on the database side (pgcrypto).
const UUIDDefaultExpr = "gen_random_uuid()"

// PrimaryKeyType selects which id column a table receives when it is created.
type PrimaryKeyType string

const (
	PrimaryKeyBigSerial PrimaryKeyType = "bigserial"
	PrimaryKeyUUID      PrimaryKeyType = "uuid"
	PrimaryKeyNone      PrimaryKeyType = "none"
)

// NewTable creates an empty table with the id column dictated by pk.
func NewTable(name string, pk PrimaryKeyType) *Table {
	t := &Table{Name: name}
	switch pk {
	case PrimaryKeyUUID:
		def := UUIDDefaultExpr
		t.Columns = append(t.Columns, &Column{
			Name:         "id",
			DeclaredType: "uuid",
			SQLType:      SQLTypeUUID,
			PrimaryKey:   true,
			Default:      &def,
		})
	case PrimaryKeyNone:
	default:
		t.Columns = append(t.Columns, &Column{
			Name:         "id",
			DeclaredType: "bigserial",
			SQLType:      SQLTypeBigSerial,
			PrimaryKey:   true,
		})
	}
	return t
}

// Named is implemented by schema objects identified by a name.
type Named interface {
	GetName() string
}

func (t *Table) GetName() string    { return t.Name }
func (c *Column) GetName() string   { return c.Name }
func (e *EnumType) GetName() string { return e.Name }

// FindTable looks for a table by exact name inside a database.
func (db *Database) FindTable(name string) *Table {
	for _, t := range db.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// FindColumn looks for a column by exact name inside a table.
func (t *Table) FindColumn(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// GeneratedName returns the deterministic name used when the source declared
// none: idx_<table>_<col1>_<col2>...
func (i *Index) GeneratedName(table string) string {
	return "idx_" + table + "_" + strings.Join(i.Columns, "_")
}

// EffectiveName returns the explicit name when present, otherwise the
// generated one.
func (i *Index) EffectiveName(table string) string {
	if name := strings.TrimSpace(i.Name); name != "" {
		return name
	}
	return i.GeneratedName(table)
}

// ConstraintName returns the name used for the emitted constraint:
// fk_<from table>_<referenced singular>.
func (fk ForeignKey) ConstraintName() string {
	return "fk_" + fk.FromTable + "_" + strings.TrimSuffix(fk.FromColumn, "_id")
}

// String returns a string representation of a table with its counts.
func (t *Table) String() string {
	return fmt.Sprintf("Table: %s (%d cols, %d indexes)", t.Name, len(t.Columns), len(t.Indexes))
}

// String renders the constraint as from_table.from_column -> to_table.
func (fk ForeignKey) String() string {
	return fk.FromTable + "." + fk.FromColumn + " -> " + fk.ToTable
}

// ColumnCount returns the number of columns over all tables.
func (db *Database) ColumnCount() int {
	n := 0
	for _, t := range db.Tables {
		n += len(t.Columns)
	}
	return n
}

// IndexCount returns the number of indexes over all tables.
func (db *Database) IndexCount() int {
	n := 0
	for _, t := range db.Tables {
		n += len(t.Indexes)
	}
	return n
}
