package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormatterDefaultsToSQL(t *testing.T) {
	f, err := NewFormatter("")
	require.NoError(t, err)
	_, ok := f.(sqlFormatter)
	assert.True(t, ok)
}

func TestNewFormatterSQL(t *testing.T) {
	f, err := NewFormatter("sql")
	require.NoError(t, err)
	_, ok := f.(sqlFormatter)
	assert.True(t, ok)
}

func TestNewFormatterJSON(t *testing.T) {
	f, err := NewFormatter("json")
	require.NoError(t, err)
	_, ok := f.(jsonFormatter)
	assert.True(t, ok)
}

func TestNewFormatterSummary(t *testing.T) {
	f, err := NewFormatter("summary")
	require.NoError(t, err)
	_, ok := f.(summaryFormatter)
	assert.True(t, ok)
}

func TestNewFormatterWithWhitespace(t *testing.T) {
	f, err := NewFormatter("  sql  ")
	require.NoError(t, err)
	_, ok := f.(sqlFormatter)
	assert.True(t, ok)
}

func TestNewFormatterInvalidFormat(t *testing.T) {
	f, err := NewFormatter("invalid")
	assert.Error(t, err)
	assert.Nil(t, f)
	assert.Contains(t, err.Error(), "unsupported format: invalid")
}

func TestNewFormatterInvalidFormatWithMessage(t *testing.T) {
	f, err := NewFormatter("yaml")
	assert.Error(t, err)
	assert.Nil(t, f)
	assert.Contains(t, err.Error(), "use 'sql', 'json', or 'summary'")
}

func TestNormalizeStatementsEmpty(t *testing.T) {
	result := normalizeStatements([]string{})
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestNormalizeStatementsRemovesEmptyStrings(t *testing.T) {
	input := []string{"CREATE TABLE t", "", "   ", "DROP TABLE t"}
	result := normalizeStatements(input)
	assert.Len(t, result, 2)
	assert.Equal(t, "CREATE TABLE t;", result[0])
	assert.Equal(t, "DROP TABLE t;", result[1])
}

func TestNormalizeStatementsAddsSemicolon(t *testing.T) {
	input := []string{"CREATE TABLE t"}
	result := normalizeStatements(input)
	assert.Len(t, result, 1)
	assert.Equal(t, "CREATE TABLE t;", result[0])
}

func TestNormalizeStatementsMultiple(t *testing.T) {
	input := []string{"CREATE TABLE users", "CREATE TABLE posts;", "  ALTER TABLE users  ", "", "DROP TABLE old"}
	result := normalizeStatements(input)
	assert.Len(t, result, 4)
	assert.Equal(t, "CREATE TABLE users;", result[0])
	assert.Equal(t, "CREATE TABLE posts;", result[1])
	assert.Equal(t, "ALTER TABLE users;", result[2])
	assert.Equal(t, "DROP TABLE old;", result[3])
}

func TestSchemaStats(t *testing.T) {
	assert.Equal(t, Stats{}, schemaStats(nil))

	db := sampleMigration().Schema
	s := schemaStats(db)
	assert.Equal(t, 1, s.Enums)
	assert.Equal(t, 3, s.Tables)
	assert.Equal(t, 6, s.Columns)
	assert.Equal(t, 2, s.Indexes)
	assert.Zero(t, s.ForeignKeys)
}

func TestMigrationStats(t *testing.T) {
	s := migrationStats(sampleMigration())
	assert.Equal(t, Stats{
		Enums:              1,
		Tables:             3,
		Columns:            6,
		Indexes:            2,
		ForeignKeys:        1,
		SQLStatements:      9,
		RollbackStatements: 4,
	}, s)
}
