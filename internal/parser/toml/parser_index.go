package toml

import (
	"fmt"
	"strings"

	"schemaport/internal/core"
)

// tomlIndex maps [[tables.indexes]].
type tomlIndex struct {
	Name    string   `toml:"name"`
	Columns []string `toml:"columns"`
	Unique  bool     `toml:"unique"`
}

func convertTableIndex(ti *tomlIndex) (*core.Index, error) {
	idx := &core.Index{
		Name:   ti.Name,
		Unique: ti.Unique,
	}

	for _, c := range ti.Columns {
		if c = strings.TrimSpace(c); c != "" {
			idx.Columns = append(idx.Columns, c)
		}
	}

	if len(idx.Columns) == 0 {
		name := ti.Name
		if name == "" {
			name = "(unnamed)"
		}
		return nil, fmt.Errorf("index %s has no columns", name)
	}

	return idx, nil
}

// validateIndexes checks for duplicate names and verifies that every index
// column references an existing table column.
func validateIndexes(table *core.Table) error {
	seen := make(map[string]bool, len(table.Indexes))
	for _, idx := range table.Indexes {
		name := strings.ToLower(idx.EffectiveName(table.Name))
		if seen[name] {
			return fmt.Errorf("duplicate index name %q", idx.EffectiveName(table.Name))
		}
		seen[name] = true
	}

	for _, idx := range table.Indexes {
		for _, col := range idx.Columns {
			if table.FindColumn(col) == nil {
				return fmt.Errorf("index %q references nonexistent column %q", idx.EffectiveName(table.Name), col)
			}
		}
	}

	return nil
}
