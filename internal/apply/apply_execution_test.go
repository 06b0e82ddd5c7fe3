package apply

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemaport/internal/testutil"
)

func newMockApplier(t *testing.T, opts Options) (*Applier, sqlmock.Sqlmock, *bytes.Buffer) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	var buf bytes.Buffer
	opts.Out = &buf
	opts.Logger = testutil.NewTestLogger(t)
	a := NewApplier(opts)
	a.db = db

	t.Cleanup(func() {
		mock.ExpectClose()
		assert.NoError(t, a.Close())
	})
	return a, mock, &buf
}

var createStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	"CREATE TABLE users (\n    id UUID PRIMARY KEY DEFAULT gen_random_uuid()\n);",
	"CREATE UNIQUE INDEX idx_users_id ON users (id);",
}

func TestApplyWithTransaction(t *testing.T) {
	t.Run("commits after every statement succeeds", func(t *testing.T) {
		a, mock, buf := newMockApplier(t, Options{Transaction: true})

		mock.ExpectBegin()
		for _, stmt := range createStatements {
			mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 0))
		}
		mock.ExpectCommit()

		require.NoError(t, a.Apply(context.Background(), createStatements, nil))
		assert.NoError(t, mock.ExpectationsWereMet())

		out := buf.String()
		assert.Contains(t, out, "Executing statement 3/3")
		assert.Contains(t, out, "OK (")
		assert.Contains(t, out, "Successfully applied 3 statements in one transaction")
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		a, mock, buf := newMockApplier(t, Options{Transaction: true})

		mock.ExpectBegin()
		mock.ExpectExec(createStatements[0]).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(createStatements[1]).WillReturnError(errors.New("syntax error"))
		mock.ExpectRollback()

		err := a.Apply(context.Background(), createStatements, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "statement 2 failed (rolled back)")
		assert.Contains(t, err.Error(), "syntax error")
		assert.Contains(t, buf.String(), "FAILED")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		a, mock, _ := newMockApplier(t, Options{Transaction: true})
		mock.ExpectBegin().WillReturnError(errors.New("connection reset"))

		err := a.Apply(context.Background(), createStatements, nil)
		assert.ErrorContains(t, err, "failed to begin transaction")
	})

	t.Run("commit failure", func(t *testing.T) {
		a, mock, _ := newMockApplier(t, Options{Transaction: true})
		mock.ExpectBegin()
		mock.ExpectExec(createStatements[0]).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

		err := a.Apply(context.Background(), createStatements[:1], nil)
		assert.ErrorContains(t, err, "failed to commit transaction")
	})
}

func TestApplyWithoutTransaction(t *testing.T) {
	t.Run("executes each statement", func(t *testing.T) {
		a, mock, buf := newMockApplier(t, Options{})

		for _, stmt := range createStatements {
			mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 0))
		}

		require.NoError(t, a.Apply(context.Background(), createStatements, nil))
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Contains(t, buf.String(), "Successfully applied 3 statements, skipped 0")
	})

	t.Run("reports applied count on failure", func(t *testing.T) {
		a, mock, _ := newMockApplier(t, Options{})

		mock.ExpectExec(createStatements[0]).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(createStatements[1]).WillReturnError(&pgconn.PgError{Code: codeDuplicateTable, Message: `relation "users" already exists`})

		err := a.Apply(context.Background(), createStatements, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "statement 2 failed")
		assert.Contains(t, err.Error(), "1 statements were already applied")
	})

	t.Run("skip existing ignores duplicate objects", func(t *testing.T) {
		a, mock, buf := newMockApplier(t, Options{SkipExisting: true})

		mock.ExpectExec(createStatements[0]).WillReturnError(&pgconn.PgError{Code: codeDuplicateObject})
		mock.ExpectExec(createStatements[1]).WillReturnError(&pgconn.PgError{Code: codeDuplicateTable})
		mock.ExpectExec(createStatements[2]).WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, a.Apply(context.Background(), createStatements, nil))
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Contains(t, buf.String(), "SKIPPED (already exists)")
		assert.Contains(t, buf.String(), "Successfully applied 1 statements, skipped 2")
	})

	t.Run("skip existing still fails on other errors", func(t *testing.T) {
		a, mock, _ := newMockApplier(t, Options{SkipExisting: true})

		mock.ExpectExec(createStatements[0]).WillReturnError(&pgconn.PgError{Code: "42601", Message: "syntax error"})

		err := a.Apply(context.Background(), createStatements, nil)
		assert.ErrorContains(t, err, "statement 1 failed")
	})

	t.Run("non-transactional statements fall back when allowed", func(t *testing.T) {
		a, mock, _ := newMockApplier(t, Options{Transaction: true, AllowNonTransactional: true})

		stmt := "CREATE INDEX CONCURRENTLY idx_users_id ON users (id);"
		mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, a.Apply(context.Background(), []string{stmt}, nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestApplyRefusesDestructiveWithoutUnsafe(t *testing.T) {
	a, mock, _ := newMockApplier(t, Options{Transaction: true})

	err := a.Apply(context.Background(), []string{"DROP TABLE IF EXISTS users CASCADE;"}, nil)
	assert.ErrorContains(t, err, "destructive")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyRequiresConnection(t *testing.T) {
	a := NewApplier(Options{Transaction: true})
	err := a.Apply(context.Background(), createStatements, nil)
	assert.ErrorContains(t, err, "not connected")
}

func TestIsAlreadyExists(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"duplicate object", &pgconn.PgError{Code: codeDuplicateObject}, true},
		{"duplicate table", &pgconn.PgError{Code: codeDuplicateTable}, true},
		{"wrapped", errors.Join(errors.New("exec"), &pgconn.PgError{Code: codeDuplicateTable}), true},
		{"other code", &pgconn.PgError{Code: "23505"}, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isAlreadyExists(tt.err))
		})
	}
}

func TestCloseWithoutConnect(t *testing.T) {
	a := NewApplier(Options{})
	assert.NoError(t, a.Close())
	assert.NoError(t, a.Close())
}

func TestPingErrorKeepsCause(t *testing.T) {
	pingErr := &pgconn.PgError{Code: "28P01", Message: "password authentication failed"}

	t.Run("close succeeded", func(t *testing.T) {
		err := pingError(pingErr, nil)

		var pgErr *pgconn.PgError
		require.True(t, errors.As(err, &pgErr))
		assert.Equal(t, "28P01", pgErr.Code)
	})

	t.Run("close failed too", func(t *testing.T) {
		closeErr := errors.New("close: broken pipe")
		err := pingError(pingErr, closeErr)

		var pgErr *pgconn.PgError
		require.True(t, errors.As(err, &pgErr))
		assert.Equal(t, "28P01", pgErr.Code)
		assert.NotErrorIs(t, err, closeErr)
		assert.Contains(t, err.Error(), "broken pipe")
	})
}
