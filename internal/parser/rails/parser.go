// Package rails provides a parser for Rails schema.rb documents. It
// recognizes a small fixed grammar (create_enum, create_table blocks, typed
// column declarations, and t.index declarations) and converts it into the
// canonical core.Database representation. Every other line is ignored.
package rails

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"schemaport/internal/core"
)

var (
	reTableStart = regexp.MustCompile(`create_table\s+"(\w+)"(.*)do\s*\|t\|`)
	reUUIDKey    = regexp.MustCompile(`\bid:\s*:uuid\b`)
	reNoKey      = regexp.MustCompile(`\bid:\s*false\b`)

	reColumn     = regexp.MustCompile(`^\s*t\.(\w+)\s+"(\w+)"(.*)$`)
	reIndex      = regexp.MustCompile(`^\s*t\.index\s+\[+([^\]]*)\]`)
	reIndexName  = regexp.MustCompile(`name:\s*"(\w+)"`)
	reUniqueFlag = regexp.MustCompile(`unique:\s*true\b`)
)

// Parser reads Rails schema.rb documents.
type Parser struct {
	logger *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used to report ignored declarations.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewParser creates a new schema.rb parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads the whole document from r and returns its enum type and
// tables. Reading is the only failure; the grammar itself never errors.
func (p *Parser) Parse(r io.Reader) (*core.Database, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("rails: read schema: %w", err)
	}
	return p.ParseString(string(data)), nil
}

// ParseString runs the enum extractor and the table parser over src and
// merges their results.
func (p *Parser) ParseString(src string) *core.Database {
	db := p.ParseTables(src)

	enum, total := ExtractEnum(src)
	if enum != nil {
		db.Enums = append(db.Enums, enum)
	}
	if total > 1 && enum != nil {
		note := fmt.Sprintf("%d create_enum declarations found; only %q was converted", total, enum.Name)
		p.logger.Warn("additional enum declarations ignored", "found", total, "converted", enum.Name)
		db.Notes = append(db.Notes, note)
	}

	p.logger.Debug("parsed schema", "tables", len(db.Tables), "enums", len(db.Enums))
	return db
}

// ParseTables parses the table blocks of src. Enums are left empty for the
// caller to merge.
func (p *Parser) ParseTables(src string) *core.Database {
	acc := accumulator{db: &core.Database{Tables: []*core.Table{}}}

	for line := range strings.SplitSeq(src, "\n") {
		acc = step(acc, strings.TrimSuffix(line, "\r"))
	}

	return acc.finalize().db
}

// accumulator is the parser state threaded through every line. A nil
// current table means the parser is idle, between table blocks.
type accumulator struct {
	db      *core.Database
	current *core.Table
}

// finalize closes the open table, if any, and returns an idle accumulator.
func (acc accumulator) finalize() accumulator {
	if acc.current != nil {
		acc.db.Tables = append(acc.db.Tables, acc.current)
		acc.current = nil
	}
	return acc
}

func step(acc accumulator, line string) accumulator {
	if m := reTableStart.FindStringSubmatch(line); m != nil {
		acc = acc.finalize()
		acc.current = core.NewTable(m[1], primaryKeyPolicy(m[2]))
		return acc
	}

	if acc.current == nil {
		return acc
	}

	if col, ok := parseColumn(line); ok {
		if col != nil {
			acc.current.Columns = append(acc.current.Columns, col)
		}
		return acc
	}

	if idx, ok := parseIndex(line); ok {
		acc.current.Indexes = append(acc.current.Indexes, idx)
	}

	return acc
}

func primaryKeyPolicy(options string) core.PrimaryKeyType {
	switch {
	case reUUIDKey.MatchString(options):
		return core.PrimaryKeyUUID
	case reNoKey.MatchString(options):
		return core.PrimaryKeyNone
	default:
		return core.PrimaryKeyBigSerial
	}
}

// parseColumn recognizes `t.<type> "<name>" <options>`. It reports ok for a
// recognized line and returns a nil column for types that are dropped.
func parseColumn(line string) (*core.Column, bool) {
	m := reColumn.FindStringSubmatch(line)
	if m == nil || m[1] == "index" {
		return nil, false
	}

	declared, name, options := m[1], m[2], strings.TrimSpace(m[3])
	mapping := MapType(declared, options)
	if mapping.Skip {
		return nil, true
	}

	return &core.Column{
		Name:         name,
		DeclaredType: declared,
		Options:      options,
		SQLType:      mapping.SQLType,
		Nullable:     mapping.Nullable,
		Default:      mapping.Default,
	}, true
}

// parseIndex recognizes `t.index [<col>, ...] <options>`. A declaration
// without columns is not an index.
func parseIndex(line string) (*core.Index, bool) {
	m := reIndex.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}

	var cols []string
	for _, c := range splitList(m[1]) {
		c = strings.Trim(c, "[] \t")
		if c != "" {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		return nil, false
	}

	idx := &core.Index{Columns: cols, Unique: reUniqueFlag.MatchString(line)}
	if nm := reIndexName.FindStringSubmatch(line); nm != nil {
		idx.Name = nm[1]
	}
	return idx, true
}
