// Package convert wires the conversion pipeline: parse a schema document,
// validate the model, infer foreign keys, and generate the PostgreSQL
// migration. It performs no file I/O.
package convert

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"schemaport/internal/core"
	"schemaport/internal/dialect"
	_ "schemaport/internal/dialect/postgres"
	"schemaport/internal/infer"
	"schemaport/internal/migration"
	"schemaport/internal/output"
	"schemaport/internal/parser"
)

// Options control a single conversion.
type Options struct {
	// Format is the source format. Empty means Rails schema.rb.
	Format parser.Format
	// Title is the first header line. Empty means dialect.DefaultTitle.
	Title string
	// Source overrides the "Converted from" header line. Empty means the
	// format's description.
	Source string
	// Pluralizer names the foreign-key pluralization strategy.
	Pluralizer string
	// Exclusions are referenced names never inferred as foreign keys. Nil
	// means infer.DefaultExclusions; an empty non-nil slice disables them.
	Exclusions []string
	// Dialect selects the target generator. Empty means PostgreSQL.
	Dialect dialect.Type
	// Now supplies the header timestamp.
	Now    func() time.Time
	Logger *slog.Logger
}

// Result is everything one conversion produced.
type Result struct {
	Database    *core.Database
	ForeignKeys []core.ForeignKey
	Migration   *migration.Migration
}

// SQL renders the migration as a PostgreSQL script.
func (r *Result) SQL() (string, error) {
	f, err := output.NewFormatter(string(output.FormatSQL))
	if err != nil {
		return "", err
	}
	return f.FormatMigration(r.Migration)
}

// Run parses src in opts.Format and converts it.
func Run(src string, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	p, err := parser.New(opts.Format, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	db, err := p.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("convert: parse %s: %w", opts.Format, err)
	}
	return Database(db, opts)
}

// Database converts an already parsed model.
func Database(db *core.Database, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	if err := db.Validate(); err != nil {
		return nil, fmt.Errorf("convert: invalid schema: %w", err)
	}

	pluralize, err := infer.PluralizerFor(opts.Pluralizer)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	inferOpts := []infer.Option{
		infer.WithPluralizer(pluralize),
		infer.WithLogger(opts.Logger),
	}
	if opts.Exclusions != nil {
		inferOpts = append(inferOpts, infer.WithExclusions(opts.Exclusions...))
	}
	fks := infer.NewInferrer(inferOpts...).Infer(db)

	d := dialect.GetDialect(opts.Dialect)
	if d == nil {
		return nil, fmt.Errorf("convert: no generator registered for %q", opts.Dialect)
	}
	m := d.Generator().Generate(db, fks, dialect.Options{
		Title:  opts.Title,
		Source: opts.Source,
		Now:    opts.Now,
	})

	opts.Logger.Info("converted schema",
		"tables", len(db.Tables),
		"enums", len(db.Enums),
		"foreign_keys", len(fks),
		"statements", len(m.SQLStatements()),
	)

	return &Result{Database: db, ForeignKeys: fks, Migration: m}, nil
}

func (o Options) withDefaults() Options {
	if o.Format == "" {
		o.Format = parser.FormatRails
	}
	if strings.TrimSpace(o.Title) == "" {
		o.Title = dialect.DefaultTitle
	}
	if strings.TrimSpace(o.Source) == "" {
		o.Source = o.Format.Description()
	}
	if o.Dialect == "" {
		o.Dialect = dialect.PostgreSQL
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}
