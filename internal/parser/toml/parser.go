// Package toml provides a parser for the schemaport TOML schema format.
// It reads an explicit schema definition (enum types, tables, columns using
// Rails type names, and indexes) and converts it into the canonical
// core.Database representation, mapping every column through the same type
// mapper the Rails parser uses.
package toml

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"

	"schemaport/internal/core"
)

// schemaFile is the top-level TOML document.
type schemaFile struct {
	Enums  []tomlEnum  `toml:"enums"`
	Tables []tomlTable `toml:"tables"`
}

// tomlEnum maps [[enums]].
type tomlEnum struct {
	Name   string   `toml:"name"`
	Values []string `toml:"values"`
}

// Parser reads schemaport TOML schema files.
type Parser struct{}

// NewParser creates a new TOML schema parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads TOML content from reader and returns the corresponding core.Database.
func (p *Parser) Parse(r io.Reader) (*core.Database, error) {
	var sf schemaFile
	md, err := toml.NewDecoder(r).Decode(&sf)
	if err != nil {
		return nil, fmt.Errorf("toml: decode error: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("toml: unknown key %q", undecoded[0].String())
	}

	return newConverter(&sf).convert()
}

type converter struct {
	sf         *schemaFile
	seenEnums  map[string]bool
	seenTables map[string]bool
}

func newConverter(sf *schemaFile) *converter {
	return &converter{
		sf:         sf,
		seenEnums:  make(map[string]bool, len(sf.Enums)),
		seenTables: make(map[string]bool, len(sf.Tables)),
	}
}

func (c *converter) convert() (*core.Database, error) {
	db := &core.Database{
		Tables: make([]*core.Table, 0, len(c.sf.Tables)),
	}

	for i := range c.sf.Enums {
		e, err := c.convertEnum(&c.sf.Enums[i])
		if err != nil {
			return nil, fmt.Errorf("toml: enum %q: %w", c.sf.Enums[i].Name, err)
		}
		db.Enums = append(db.Enums, e)
	}

	for i := range c.sf.Tables {
		t, err := c.convertTable(&c.sf.Tables[i])
		if err != nil {
			return nil, fmt.Errorf("toml: table %q: %w", c.sf.Tables[i].Name, err)
		}
		db.Tables = append(db.Tables, t)
	}

	return db, nil
}

func (c *converter) convertEnum(te *tomlEnum) (*core.EnumType, error) {
	if te.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if c.seenEnums[te.Name] {
		return nil, fmt.Errorf("duplicate enum name")
	}
	c.seenEnums[te.Name] = true

	values := te.Values
	if values == nil {
		values = []string{}
	}
	return &core.EnumType{Name: te.Name, Values: values}, nil
}
