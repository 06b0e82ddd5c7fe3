// Package infer derives foreign-key constraints from column naming
// conventions. It is a best-effort heuristic: a UUID column named <word>_id
// references the table whose name is the pluralized <word>, when such a table
// exists. Irregular plurals and name collisions are missed or misattributed;
// generated constraints are expected to be reviewed.
package infer

import (
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"slices"

	"github.com/gertd/go-pluralize"

	"schemaport/internal/core"
)

// Pluralizer turns a referenced singular name into a table name.
type Pluralizer func(string) string

// Strategy names accepted by PluralizerFor.
const (
	StrategyNaive   = "naive"
	StrategyInflect = "inflect"
)

// Naive appends "s". It is the default strategy.
func Naive(word string) string { return word + "s" }

// Inflect returns an English-inflection pluralizer.
func Inflect() Pluralizer {
	client := pluralize.NewClient()
	return client.Plural
}

var strategies = map[string]func() Pluralizer{
	StrategyNaive:   func() Pluralizer { return Naive },
	StrategyInflect: Inflect,
}

// PluralizerFor returns the registered strategy with the given name. An empty
// name selects the naive strategy.
func PluralizerFor(name string) (Pluralizer, error) {
	if name == "" {
		name = StrategyNaive
	}
	ctor, ok := strategies[name]
	if !ok {
		return nil, fmt.Errorf("infer: unknown pluralizer %q (supported: %v)", name, Strategies())
	}
	return ctor(), nil
}

// Strategies lists the registered strategy names in sorted order.
func Strategies() []string {
	return slices.Sorted(maps.Keys(strategies))
}

// DefaultExclusions are referenced names that look relational but are not.
var DefaultExclusions = []string{"import", "plaid"}

var reCandidate = regexp.MustCompile(`^(\w+)_id$`)

// Inferrer derives foreign keys from a finalized schema model.
type Inferrer struct {
	pluralize  Pluralizer
	exclusions map[string]struct{}
	logger     *slog.Logger
}

// Option configures an Inferrer.
type Option func(*Inferrer)

// WithPluralizer replaces the naive pluralizer.
func WithPluralizer(p Pluralizer) Option {
	return func(i *Inferrer) {
		if p != nil {
			i.pluralize = p
		}
	}
}

// WithExclusions replaces the default exclusion set.
func WithExclusions(names ...string) Option {
	return func(i *Inferrer) {
		i.exclusions = toSet(names)
	}
}

// WithLogger sets the logger used to report skipped candidates.
func WithLogger(l *slog.Logger) Option {
	return func(i *Inferrer) {
		if l != nil {
			i.logger = l
		}
	}
}

// NewInferrer creates an Inferrer with the naive pluralizer and the default
// exclusions unless overridden.
func NewInferrer(opts ...Option) *Inferrer {
	i := &Inferrer{
		pluralize:  Naive,
		exclusions: toSet(DefaultExclusions),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Infer walks tables, then columns, in model order and returns one constraint
// per UUID <word>_id column whose pluralized <word> names an existing table.
func (i *Inferrer) Infer(db *core.Database) []core.ForeignKey {
	fks := []core.ForeignKey{}
	if db == nil {
		return fks
	}

	for _, t := range db.Tables {
		for _, c := range t.Columns {
			fk, ok := i.candidate(db, t, c)
			if ok {
				fks = append(fks, fk)
			}
		}
	}

	i.logger.Debug("inferred foreign keys", "count", len(fks))
	return fks
}

func (i *Inferrer) candidate(db *core.Database, t *core.Table, c *core.Column) (core.ForeignKey, bool) {
	if c.SQLType != core.SQLTypeUUID {
		return core.ForeignKey{}, false
	}
	m := reCandidate.FindStringSubmatch(c.Name)
	if m == nil {
		return core.ForeignKey{}, false
	}

	ref := m[1]
	if _, excluded := i.exclusions[ref]; excluded {
		i.logger.Debug("excluded foreign key candidate", "table", t.Name, "column", c.Name)
		return core.ForeignKey{}, false
	}

	target := i.pluralize(ref)
	if db.FindTable(target) == nil {
		i.logger.Debug("no table for foreign key candidate", "table", t.Name, "column", c.Name, "target", target)
		return core.ForeignKey{}, false
	}

	return core.ForeignKey{FromTable: t.Name, FromColumn: c.Name, ToTable: target}, true
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
