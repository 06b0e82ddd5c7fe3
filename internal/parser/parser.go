// Package parser selects a schema parser by file extension and converts
// schema documents (Rails schema.rb or the TOML schema format) into the
// canonical core.Database representation.
package parser

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"schemaport/internal/core"
	"schemaport/internal/parser/rails"
	"schemaport/internal/parser/toml"
)

// Parser reads one schema document.
type Parser interface {
	Parse(r io.Reader) (*core.Database, error)
}

// Format identifies a supported source format.
type Format string

const (
	FormatRails Format = "rails"
	FormatTOML  Format = "toml"
)

// Description is the human-readable source name written into generated headers.
func (f Format) Description() string {
	switch f {
	case FormatRails:
		return "Rails schema.rb"
	case FormatTOML:
		return "TOML schema"
	default:
		return string(f)
	}
}

// DetectFormat picks the source format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".rb":
		return FormatRails, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", &UnsupportedFormatError{Path: path}
	}
}

// New returns the parser for format. The logger is used by parsers that
// report ignored input.
func New(format Format, logger *slog.Logger) (Parser, error) {
	switch format {
	case FormatRails:
		return rails.NewParser(rails.WithLogger(logger)), nil
	case FormatTOML:
		return toml.NewParser(), nil
	default:
		return nil, &UnsupportedFormatError{Path: string(format)}
	}
}

// ParseFile detects the format of path, reads it, and parses it.
func ParseFile(path string, logger *slog.Logger) (*core.Database, Format, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, format, fmt.Errorf("failed to read schema: %w", err)
	}
	defer f.Close()

	p, err := New(format, logger)
	if err != nil {
		return nil, format, err
	}
	db, err := p.Parse(f)
	if err != nil {
		return nil, format, err
	}
	return db, format, nil
}

// UnsupportedFormatError reports a schema file whose extension has no parser.
type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return "unsupported file format: " + e.Path + " (expected .rb or .toml)"
}
