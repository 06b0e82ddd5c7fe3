package toml

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"schemaport/internal/core"
	"schemaport/internal/parser/rails"
)

// tomlColumn maps [[tables.columns]]. Type takes the Rails column type names
// (string, text, decimal, uuid, ...).
type tomlColumn struct {
	Name string `toml:"name"`
	Type string `toml:"type"`

	// Null defaults to true when absent, as in Rails.
	Null *bool `toml:"null"`

	// Default accepts a string, bool, number, or an empty inline table.
	Default     any    `toml:"default"`
	DefaultExpr string `toml:"default_expr"`

	Precision int  `toml:"precision"`
	Scale     *int `toml:"scale"`
}

// convertColumn renders the column as Rails option text and maps it through
// rails.MapType. It returns a nil column for types that are dropped.
func convertColumn(tc *tomlColumn) (*core.Column, error) {
	if tc.Name == "" {
		return nil, errors.New("name is required")
	}
	if tc.Type == "" {
		return nil, errors.New("type is required")
	}
	if tc.Default != nil && tc.DefaultExpr != "" {
		return nil, errors.New("default and default_expr are mutually exclusive")
	}

	options, literal, err := railsOptions(tc)
	if err != nil {
		return nil, err
	}

	m := rails.MapType(tc.Type, options)
	if m.Skip {
		return nil, nil
	}

	col := &core.Column{
		Name:         tc.Name,
		DeclaredType: tc.Type,
		Options:      options,
		SQLType:      m.SQLType,
		Nullable:     m.Nullable,
		Default:      m.Default,
	}
	if literal != nil {
		col.Default = literal
	}
	return col, nil
}

// railsOptions builds the option text a schema.rb line would carry for tc.
// String defaults the option grammar cannot express are returned as an
// already-quoted literal instead.
func railsOptions(tc *tomlColumn) (string, *string, error) {
	var parts []string
	var literal *string

	if tc.Precision > 0 && tc.Scale != nil {
		parts = append(parts, fmt.Sprintf("precision: %d, scale: %d", tc.Precision, *tc.Scale))
	}

	switch v := tc.Default.(type) {
	case nil:
	case string:
		if v == "" || strings.Contains(v, `"`) {
			q := "'" + strings.ReplaceAll(v, "'", "''") + "'"
			literal = &q
		} else {
			parts = append(parts, `default: "`+v+`"`)
		}
	case bool:
		parts = append(parts, "default: "+strconv.FormatBool(v))
	case int64:
		parts = append(parts, "default: "+strconv.FormatInt(v, 10))
	case float64:
		parts = append(parts, "default: "+strconv.FormatFloat(v, 'f', -1, 64))
	case map[string]any:
		if len(v) > 0 {
			return "", nil, errors.New("only an empty table is supported as a default")
		}
		parts = append(parts, "default: {}")
	default:
		return "", nil, fmt.Errorf("unsupported default of type %T", v)
	}

	if tc.DefaultExpr != "" {
		if strings.Contains(tc.DefaultExpr, `"`) {
			return "", nil, fmt.Errorf("default_expr %q must not contain double quotes", tc.DefaultExpr)
		}
		parts = append(parts, `default: -> { "`+tc.DefaultExpr+`" }`)
	}

	if tc.Null != nil && !*tc.Null {
		parts = append(parts, "null: false")
	}

	if len(parts) == 0 {
		return "", literal, nil
	}
	return ", " + strings.Join(parts, ", "), literal, nil
}
