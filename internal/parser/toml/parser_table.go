package toml

import (
	"fmt"

	"schemaport/internal/core"
)

// tomlTable maps [[tables]].
type tomlTable struct {
	Name       string       `toml:"name"`
	PrimaryKey string       `toml:"primary_key"`
	Timestamps bool         `toml:"timestamps"`
	Columns    []tomlColumn `toml:"columns"`
	Indexes    []tomlIndex  `toml:"indexes"`
}

func (c *converter) convertTable(tt *tomlTable) (*core.Table, error) {
	if tt.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if c.seenTables[tt.Name] {
		return nil, fmt.Errorf("duplicate table name")
	}
	c.seenTables[tt.Name] = true

	pk, err := parsePrimaryKey(tt.PrimaryKey)
	if err != nil {
		return nil, err
	}

	table := core.NewTable(tt.Name, pk)
	if err := parseTableColumns(table, tt); err != nil {
		return nil, err
	}

	for i := range tt.Indexes {
		idx, err := convertTableIndex(&tt.Indexes[i])
		if err != nil {
			return nil, err
		}
		table.Indexes = append(table.Indexes, idx)
	}
	if err := validateIndexes(table); err != nil {
		return nil, err
	}

	return table, nil
}

func parsePrimaryKey(raw string) (core.PrimaryKeyType, error) {
	switch core.PrimaryKeyType(raw) {
	case "", core.PrimaryKeyBigSerial:
		return core.PrimaryKeyBigSerial, nil
	case core.PrimaryKeyUUID:
		return core.PrimaryKeyUUID, nil
	case core.PrimaryKeyNone:
		return core.PrimaryKeyNone, nil
	default:
		return "", fmt.Errorf("unsupported primary_key %q; use %q, %q, or %q",
			raw, core.PrimaryKeyBigSerial, core.PrimaryKeyUUID, core.PrimaryKeyNone)
	}
}

func parseTableColumns(table *core.Table, tt *tomlTable) error {
	for i := range tt.Columns {
		col, err := convertColumn(&tt.Columns[i])
		if err != nil {
			return fmt.Errorf("column %q: %w", tt.Columns[i].Name, err)
		}
		if col == nil {
			continue
		}
		table.Columns = append(table.Columns, col)
	}

	if tt.Timestamps {
		injectTimestampColumns(table)
	}

	return nil
}

// injectTimestampColumns appends created_at and updated_at, the columns
// Rails adds for t.timestamps, unless they are already declared.
func injectTimestampColumns(table *core.Table) {
	notNull := false
	for _, name := range []string{"created_at", "updated_at"} {
		if table.FindColumn(name) != nil {
			continue
		}
		col, _ := convertColumn(&tomlColumn{Name: name, Type: "datetime", Null: &notNull})
		table.Columns = append(table.Columns, col)
	}
}
