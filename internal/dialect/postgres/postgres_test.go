package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemaport/internal/core"
	"schemaport/internal/dialect"
)

var fixedTime = time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)

func fixedOptions() dialect.Options {
	opts := dialect.DefaultOptions()
	opts.Now = func() time.Time { return fixedTime }
	return opts
}

func sampleDatabase() *core.Database {
	users := core.NewTable("users", core.PrimaryKeyUUID)
	users.Columns = append(users.Columns, &core.Column{Name: "email", SQLType: "VARCHAR(255)"})
	users.Indexes = append(users.Indexes, &core.Index{Columns: []string{"email"}, Unique: true})

	orders := core.NewTable("orders", core.PrimaryKeyUUID)
	orders.Columns = append(orders.Columns, &core.Column{Name: "user_id", SQLType: core.SQLTypeUUID})

	return &core.Database{
		Enums:  []*core.EnumType{{Name: "status", Values: []string{"a", "b"}}},
		Tables: []*core.Table{users, orders},
		Notes:  []string{"2 create_enum declarations found"},
	}
}

func TestDialectRegistered(t *testing.T) {
	d := dialect.GetDialect(dialect.PostgreSQL)
	require.NotNil(t, d)
	assert.Equal(t, dialect.PostgreSQL, d.Name())
	assert.IsType(t, &Generator{}, d.Generator())
}

func TestGenerateSectionOrder(t *testing.T) {
	g := NewPostgresGenerator()
	fks := []core.ForeignKey{{FromTable: "orders", FromColumn: "user_id", ToTable: "users"}}

	m := g.Generate(sampleDatabase(), fks, fixedOptions())

	assert.Equal(t, dialect.DefaultTitle, m.Title)
	assert.Equal(t, dialect.DefaultSource, m.Source)
	assert.Equal(t, fixedTime, m.GeneratedAt)
	assert.Equal(t, []string{"2 create_enum declarations found"}, m.Notes())

	var sections []core.Section
	for _, op := range m.Plan() {
		if op.Kind == core.OperationSQL {
			sections = append(sections, op.Section)
		}
	}
	assert.Equal(t, []core.Section{
		core.SectionExtensions,
		core.SectionExtensions,
		core.SectionTypes,
		core.SectionTables,
		core.SectionIndexes,
		core.SectionTables,
		core.SectionForeignKeys,
	}, sections)

	stmts := m.SQLStatements()
	require.Len(t, stmts, 7)
	assert.Equal(t, `CREATE EXTENSION IF NOT EXISTS "pgcrypto";`, stmts[0])
	assert.Equal(t, `CREATE EXTENSION IF NOT EXISTS "plpgsql";`, stmts[1])
	assert.Equal(t, "CREATE TYPE status AS ENUM ('a','b');", stmts[2])
	assert.Equal(t, "CREATE UNIQUE INDEX idx_users_email ON users (email);", stmts[4])
	assert.Contains(t, stmts[6], "REFERENCES users(id)")
}

func TestGenerateRollback(t *testing.T) {
	m := NewPostgresGenerator().Generate(sampleDatabase(), nil, fixedOptions())

	assert.Equal(t, []string{
		"DROP TABLE IF EXISTS orders CASCADE;",
		"DROP TABLE IF EXISTS users CASCADE;",
		"DROP TYPE IF EXISTS status;",
	}, m.RollbackStatements())
}

func TestGenerateEmptyDatabase(t *testing.T) {
	m := NewPostgresGenerator().Generate(&core.Database{}, nil, fixedOptions())

	assert.Equal(t, []string{
		`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
		`CREATE EXTENSION IF NOT EXISTS "plpgsql";`,
	}, m.SQLStatements())
	assert.Empty(t, m.Section(core.SectionTypes))
	assert.Empty(t, m.RollbackStatements())
}

func TestGenerateNilDatabaseAndClock(t *testing.T) {
	m := NewPostgresGenerator().Generate(nil, nil, dialect.Options{})

	assert.Len(t, m.SQLStatements(), 2)
	assert.False(t, m.GeneratedAt.IsZero())
}

func TestGenerateDeterministic(t *testing.T) {
	g := NewPostgresGenerator()
	fks := []core.ForeignKey{{FromTable: "orders", FromColumn: "user_id", ToTable: "users"}}

	first := g.Generate(sampleDatabase(), fks, fixedOptions())
	second := g.Generate(sampleDatabase(), fks, fixedOptions())

	assert.Equal(t, first, second)
}
