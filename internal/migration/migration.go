// Package migration holds the ordered plan of statements generated for a
// schema. It is produced by a dialect generator and consumed by the output
// formatters and the apply package.
package migration

import (
	"strings"
	"time"

	"schemaport/internal/core"
)

// Migration struct contains all operations generated for one schema
// document, in emission order.
type Migration struct {
	Title       string
	Source      string
	GeneratedAt time.Time

	// Schema is the model the operations were generated from.
	Schema *core.Database

	Operations []core.Operation
}

// Plan returns the list of operations in emission order.
func (m *Migration) Plan() []core.Operation {
	return m.Operations
}

// SQLStatements returns the SQL statements in emission order.
func (m *Migration) SQLStatements() []string {
	return m.filterByKind(core.OperationSQL, func(op core.Operation) string { return op.SQL })
}

// RollbackStatements returns the statements that undo the migration, in the
// order they must be executed: last created, first dropped.
func (m *Migration) RollbackStatements() []string {
	stmts := m.filterByKind(core.OperationSQL, func(op core.Operation) string { return op.RollbackSQL })
	for i, j := 0, len(stmts)-1; i < j; i, j = i+1, j-1 {
		stmts[i], stmts[j] = stmts[j], stmts[i]
	}
	return stmts
}

// Notes returns the informational notes attached to the migration.
func (m *Migration) Notes() []string {
	return m.filterByKind(core.OperationNote, func(op core.Operation) string { return op.SQL })
}

// Section returns the SQL operations of one section, in emission order.
func (m *Migration) Section(s core.Section) []core.Operation {
	var out []core.Operation
	for _, op := range m.Operations {
		if op.Kind == core.OperationSQL && op.Section == s && op.SQL != "" {
			out = append(out, op)
		}
	}
	return out
}

// TableOperations returns the operations of section s that belong to table.
func (m *Migration) TableOperations(s core.Section, table string) []core.Operation {
	var out []core.Operation
	for _, op := range m.Section(s) {
		if op.Table == table {
			out = append(out, op)
		}
	}
	return out
}

// AddStatement appends a statement without a rollback counterpart.
func (m *Migration) AddStatement(section core.Section, table, stmt string) {
	m.AddStatementWithRollback(section, table, stmt, "")
}

// AddStatementWithRollback appends a statement together with the statement
// that undoes it. Blank statements are ignored.
func (m *Migration) AddStatementWithRollback(section core.Section, table, up, down string) {
	up = strings.TrimSpace(up)
	down = strings.TrimSpace(down)
	if up == "" && down == "" {
		return
	}
	m.Operations = append(m.Operations, core.Operation{
		Kind:        core.OperationSQL,
		Section:     section,
		Table:       table,
		SQL:         up,
		RollbackSQL: down,
	})
}

// AddNote appends an informational note. Blank notes are ignored.
func (m *Migration) AddNote(msg string) {
	if msg = strings.TrimSpace(msg); msg == "" {
		return
	}
	m.Operations = append(m.Operations, core.Operation{Kind: core.OperationNote, SQL: msg})
}

// Dedupe drops repeated notes and repeated rollback statements. SQL
// statements themselves are kept as generated.
func (m *Migration) Dedupe() {
	n := len(m.Operations)
	if n == 0 {
		return
	}
	seenNote := make(map[string]struct{}, n)
	seenRollback := make(map[string]struct{}, n)
	out := make([]core.Operation, 0, n)
	for i := range m.Operations {
		op := m.Operations[i]
		op.SQL = strings.TrimSpace(op.SQL)
		op.RollbackSQL = strings.TrimSpace(op.RollbackSQL)

		if m.shouldInclude(&op, seenNote, seenRollback) {
			out = append(out, op)
		}
	}
	m.Operations = out
}

func (m *Migration) shouldInclude(op *core.Operation, seenNote, seenRollback map[string]struct{}) bool {
	switch op.Kind {
	case core.OperationSQL:
		if op.SQL == "" && op.RollbackSQL == "" {
			return false
		}
		if op.RollbackSQL != "" {
			if _, ok := seenRollback[op.RollbackSQL]; ok {
				op.RollbackSQL = ""
			} else {
				seenRollback[op.RollbackSQL] = struct{}{}
			}
		}
		return true
	case core.OperationNote:
		if op.SQL == "" {
			return false
		}
		if _, ok := seenNote[op.SQL]; ok {
			return false
		}
		seenNote[op.SQL] = struct{}{}
		return true
	default:
		return true
	}
}

func (m *Migration) filterByKind(kind core.OperationKind, fieldFn func(core.Operation) string) []string {
	out := make([]string, 0, len(m.Operations))
	for i := range m.Operations {
		op := &m.Operations[i]
		if op.Kind != kind {
			continue
		}
		val := strings.TrimSpace(fieldFn(*op))
		if val == "" {
			continue
		}
		out = append(out, val)
	}
	return out
}
