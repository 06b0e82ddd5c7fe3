package core

import (
	"fmt"
	"strings"
)

// ValidationError represents an error during schema validation.
type ValidationError struct {
	Entity  string
	Name    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s %q field %q: %s", e.Entity, e.Name, e.Field, e.Message)
	}
	return fmt.Sprintf("validation error in %s %q: %s", e.Entity, e.Name, e.Message)
}

// Validate checks the structural rules a generator relies on: table and enum
// names are unique within the document, every column is named, and every
// index names at least one column. Anything else (unknown index columns,
// repeated column names) renders as declared.
func (db *Database) Validate() error {
	if db == nil {
		return &ValidationError{Entity: "database", Message: "database is nil"}
	}

	for i, e := range db.Enums {
		if e == nil {
			return &ValidationError{Entity: "database", Message: fmt.Sprintf("enum at index %d is nil", i)}
		}
		if strings.TrimSpace(e.Name) == "" {
			return &ValidationError{Entity: "enum", Name: "(empty)", Message: "enum name is empty"}
		}
	}
	if name, ok := firstDuplicate(db.Enums); ok {
		return &ValidationError{Entity: "database", Message: fmt.Sprintf("duplicate enum type %q", name)}
	}

	for i, t := range db.Tables {
		if t == nil {
			return &ValidationError{Entity: "database", Message: fmt.Sprintf("table at index %d is nil", i)}
		}
	}
	if name, ok := firstDuplicate(db.Tables); ok {
		return &ValidationError{Entity: "database", Message: fmt.Sprintf("duplicate table name %q", name)}
	}

	for _, t := range db.Tables {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// firstDuplicate returns the first name that occurs twice in items.
func firstDuplicate[T Named](items []T) (string, bool) {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		name := item.GetName()
		if _, ok := seen[name]; ok {
			return name, true
		}
		seen[name] = struct{}{}
	}
	return "", false
}

// Validate checks if the Table definition is valid and returns an error if not.
func (t *Table) Validate() error {
	if t == nil {
		return &ValidationError{Entity: "table", Message: "table is nil"}
	}
	if strings.TrimSpace(t.Name) == "" {
		return &ValidationError{Entity: "table", Name: "(empty)", Message: "table name is empty"}
	}

	for i, c := range t.Columns {
		if c == nil {
			return &ValidationError{Entity: "table", Name: t.Name, Message: fmt.Sprintf("column at index %d is nil", i)}
		}
		if strings.TrimSpace(c.Name) == "" {
			return &ValidationError{Entity: "table", Name: t.Name, Message: fmt.Sprintf("column at index %d has no name", i)}
		}
	}

	for i, idx := range t.Indexes {
		if idx == nil {
			return &ValidationError{Entity: "table", Name: t.Name, Message: fmt.Sprintf("index at index %d is nil", i)}
		}
		if len(idx.Columns) == 0 {
			return &ValidationError{Entity: "index", Name: idx.EffectiveName(t.Name), Field: "columns", Message: "index has no columns"}
		}
	}
	return nil
}
