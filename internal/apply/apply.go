// Package apply connects to a PostgreSQL database and executes generated
// schema statements. Runs are wrapped in a single transaction by default, so
// a failed statement leaves the database untouched.
package apply

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

// PostgreSQL SQLSTATE codes treated as "already exists" by SkipExisting.
const (
	codeDuplicateObject = "42710"
	codeDuplicateTable  = "42P07"
)

const defaultTruncateLen = 60

// PreflightResult contains a list of warnings, errors, and transactionality info about a run.
type PreflightResult struct {
	Warnings        []Warning
	Errors          []string
	IsTransactional bool
	NonTxReasons    []string
}

// HasDestructiveOperations reports whether any warning is at WarnDanger level.
func (p *PreflightResult) HasDestructiveOperations() bool {
	for _, w := range p.Warnings {
		if w.Level == WarnDanger {
			return true
		}
	}
	return false
}

// Warning contains a Level of a warning, message, and the statement it refers to.
type Warning struct {
	Level   WarningLevel
	Message string
	SQL     string
}

// WarningLevel grades how dangerous a statement is.
type WarningLevel string

const (
	WarnCaution WarningLevel = "CAUTION"
	WarnDanger  WarningLevel = "DANGER"
)

// Options contains all settings available for the apply command.
type Options struct {
	DSN                   string
	DryRun                bool
	Transaction           bool
	AllowNonTransactional bool
	// SkipExisting ignores "already exists" failures. It requires
	// Transaction to be false, since any failure aborts a transaction.
	SkipExisting bool
	Unsafe       bool
	Out          io.Writer
	Logger       *slog.Logger
}

// Validate rejects option combinations that can never succeed. It needs no
// connection.
func (o Options) Validate() error {
	if o.Transaction && o.SkipExisting {
		return errors.New("--skip-existing requires --no-transaction")
	}
	return nil
}

type jsonMigration struct {
	Format string   `json:"format"`
	SQL    []string `json:"sql,omitempty"`
}

// Applier executes statements against one database connection.
type Applier struct {
	db       *sql.DB
	options  Options
	analyzer *StatementAnalyzer
	out      io.Writer
	logger   *slog.Logger
}

// NewApplier returns an Applier for options. Connect must be called before
// Apply unless DryRun is set.
func NewApplier(options Options) *Applier {
	out := options.Out
	if out == nil {
		out = io.Discard
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Applier{
		options:  options,
		analyzer: NewStatementAnalyzer(),
		out:      out,
		logger:   logger,
	}
}

func (a *Applier) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}

func (a *Applier) println(args ...any) {
	_, _ = fmt.Fprintln(a.out, args...)
}

// Apply runs statements, or only reports them in dry-run mode. The
// preflight result decides whether a transaction can be used.
func (a *Applier) Apply(ctx context.Context, statements []string, preflight *PreflightResult) error {
	if preflight == nil {
		preflight = a.PreflightChecks(statements, a.options.Unsafe)
	}

	if a.options.DryRun {
		return a.dryRun(statements, preflight)
	}

	if err := a.validatePreflight(preflight); err != nil {
		return err
	}
	if a.db == nil {
		return errors.New("not connected: call Connect before Apply")
	}

	if a.options.Transaction && preflight.IsTransactional {
		return a.applyWithTransaction(ctx, statements)
	}
	return a.applyWithoutTransaction(ctx, statements)
}

func (a *Applier) validatePreflight(preflight *PreflightResult) error {
	if preflight.HasDestructiveOperations() && !a.options.Unsafe {
		return errors.New("preflight checks failed: destructive operations detected without --unsafe flag")
	}
	if a.options.Transaction && !preflight.IsTransactional && !a.options.AllowNonTransactional {
		return errors.New("statements cannot run inside a transaction; use --allow-non-transactional or --no-transaction to proceed")
	}
	return a.options.Validate()
}

// Connect opens the pgx connection pool and pings the server.
func (a *Applier) Connect(ctx context.Context) error {
	db, err := sql.Open("pgx", a.options.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if pingErr := db.PingContext(ctx); pingErr != nil {
		return pingError(pingErr, db.Close())
	}

	a.db = db
	return nil
}

// pingError keeps pingErr as the wrapped cause; a failed close is only
// reported in the message.
func pingError(pingErr, closeErr error) error {
	if closeErr != nil {
		return fmt.Errorf("failed to ping database: %w (additionally failed to close connection: %v)", pingErr, closeErr)
	}
	return fmt.Errorf("failed to ping database: %w", pingErr)
}

// Close closes the connection. It is safe to call without Connect and more
// than once.
func (a *Applier) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// ParseStatements extracts statements from a JSON conversion result or from
// a SQL script.
func ParseStatements(content string) []string {
	content = strings.TrimSpace(content)

	var migration jsonMigration
	if err := json.Unmarshal([]byte(content), &migration); err == nil && migration.Format == "json" {
		return extractJSONStatements(&migration)
	}

	return splitStatementsBySemicolon(content)
}

// PreflightChecks detects destructive, blocking, and non-transactional
// statements.
func (a *Applier) PreflightChecks(statements []string, unsafe bool) *PreflightResult {
	return a.analyzer.AnalyzeStatements(statements, unsafe)
}

func extractJSONStatements(migration *jsonMigration) []string {
	statements := []string{}
	for _, stmt := range migration.SQL {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}

// splitStatementsBySemicolon splits a script at lines ending in ";". Comment
// lines and blank lines are dropped.
func splitStatementsBySemicolon(content string) []string {
	statements := []string{}
	var current strings.Builder

	for line := range strings.SplitSeq(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "--") || trimmed == "" {
			continue
		}

		current.WriteString(strings.TrimRight(line, "\r"))
		current.WriteString("\n")

		if strings.HasSuffix(trimmed, ";") {
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
		}
	}

	if remaining := strings.TrimSpace(current.String()); remaining != "" {
		statements = append(statements, remaining)
	}
	return statements
}

// truncateSQL shortens stmt to at most maxLen runes on a single line. A
// non-positive maxLen selects the default.
func truncateSQL(stmt string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = defaultTruncateLen
	}
	stmt = strings.Join(strings.Fields(stmt), " ")
	if utf8.RuneCountInString(stmt) <= maxLen {
		return stmt
	}
	runes := []rune(stmt)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// isAlreadyExists reports whether err is a PostgreSQL duplicate object or
// duplicate table error.
func isAlreadyExists(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeDuplicateObject || pgErr.Code == codeDuplicateTable
}

func (a *Applier) dryRun(statements []string, preflight *PreflightResult) error {
	a.println("=== DRY RUN MODE ===")

	a.println("--- Preflight Checks ---")
	if len(preflight.Warnings) == 0 {
		a.println("No warnings")
	} else {
		for _, w := range preflight.Warnings {
			a.printf("[%s] %s\n", w.Level, w.Message)
			if w.SQL != "" {
				a.printf("    SQL: %s\n", truncateSQL(w.SQL, 0))
			}
		}
	}

	a.println("--- Transaction Safety ---")
	if preflight.IsTransactional {
		a.println("All statements are transaction-safe")
	} else {
		a.println("Statements are NOT transaction-safe")
		for _, reason := range preflight.NonTxReasons {
			a.printf("  - %s\n", reason)
		}
	}

	a.println("--- Statements to Execute ---")
	for i, stmt := range statements {
		a.printf("%d. %s\n\n", i+1, stmt)
	}

	if err := a.validatePreflight(preflight); err != nil {
		return err
	}

	a.println("=== DRY RUN COMPLETE ===")
	a.println("All preflight checks passed. Run without --dry-run to apply.")
	return nil
}

func (a *Applier) applyWithTransaction(ctx context.Context, statements []string) error {
	start := time.Now()
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for i, stmt := range statements {
		a.printf("Executing statement %d/%d: %s ", i+1, len(statements), truncateSQL(stmt, 0))
		stmtStart := time.Now()
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			a.println("FAILED")
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("statement %d failed: %w; rollback also failed: %v", i+1, err, rbErr)
			}
			return fmt.Errorf("statement %d failed (rolled back): %w\n  Statement: %s", i+1, err, truncateSQL(stmt, 0))
		}
		a.printf("OK (%.2fs)\n", time.Since(stmtStart).Seconds())
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	a.printf("Successfully applied %d statements in one transaction (%.2fs)\n", len(statements), time.Since(start).Seconds())
	a.logger.Info("applied statements", "count", len(statements), "transaction", true)
	return nil
}

func (a *Applier) applyWithoutTransaction(ctx context.Context, statements []string) error {
	a.println("Applying statements without a transaction wrapper")
	start := time.Now()

	applied, skipped := 0, 0
	for i, stmt := range statements {
		a.printf("Executing statement %d/%d: %s ", i+1, len(statements), truncateSQL(stmt, 0))
		stmtStart := time.Now()
		if _, err := a.db.ExecContext(ctx, stmt); err != nil {
			if a.options.SkipExisting && isAlreadyExists(err) {
				a.println("SKIPPED (already exists)")
				a.logger.Warn("skipped existing object", "statement", i+1, "error", err)
				skipped++
				continue
			}
			a.println("FAILED")
			return fmt.Errorf("statement %d failed: %w\n  Statement: %s\n  %d statements were already applied and cannot be automatically rolled back",
				i+1, err, truncateSQL(stmt, 0), applied)
		}
		applied++
		a.printf("OK (%.2fs)\n", time.Since(stmtStart).Seconds())
	}

	a.printf("Successfully applied %d statements, skipped %d (%.2fs)\n", applied, skipped, time.Since(start).Seconds())
	a.logger.Info("applied statements", "count", applied, "skipped", skipped, "transaction", false)
	return nil
}
