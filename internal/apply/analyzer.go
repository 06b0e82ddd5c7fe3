package apply

import (
	"fmt"
	"strings"
)

// statementRule classifies statements that start with prefix. Rules are
// matched in order; the first match wins.
type statementRule struct {
	prefix            string
	destructiveReason string
	blockingReason    string
	txUnsafeReason    string
}

var statementRules = []statementRule{
	{
		prefix:         "CREATE INDEX CONCURRENTLY",
		txUnsafeReason: "CREATE INDEX CONCURRENTLY cannot run inside a transaction block",
	},
	{
		prefix:         "CREATE UNIQUE INDEX CONCURRENTLY",
		txUnsafeReason: "CREATE INDEX CONCURRENTLY cannot run inside a transaction block",
	},
	{
		prefix:         "DROP INDEX CONCURRENTLY",
		txUnsafeReason: "DROP INDEX CONCURRENTLY cannot run inside a transaction block",
	},
	{
		prefix:         "CREATE INDEX",
		blockingReason: "CREATE INDEX blocks writes to the table until the index is built",
	},
	{
		prefix:         "CREATE UNIQUE INDEX",
		blockingReason: "CREATE INDEX blocks writes to the table until the index is built",
	},
	{
		prefix:         "CREATE DATABASE",
		txUnsafeReason: "CREATE DATABASE cannot run inside a transaction block",
	},
	{
		prefix:            "DROP DATABASE",
		destructiveReason: "DROP DATABASE will permanently delete the entire database",
		txUnsafeReason:    "DROP DATABASE cannot run inside a transaction block",
	},
	{
		prefix:         "VACUUM",
		txUnsafeReason: "VACUUM cannot run inside a transaction block",
	},
	{
		prefix:            "DROP TABLE",
		destructiveReason: "DROP TABLE will permanently delete the table and all its data",
	},
	{
		prefix:            "DROP TYPE",
		destructiveReason: "DROP TYPE removes the type and fails or cascades if columns still use it",
	},
	{
		prefix:            "DROP SCHEMA",
		destructiveReason: "DROP SCHEMA will permanently delete the schema and its objects",
	},
	{
		prefix:            "DROP EXTENSION",
		destructiveReason: "DROP EXTENSION removes every object the extension provides",
	},
	{
		prefix:         "DROP INDEX",
		blockingReason: "DROP INDEX takes an exclusive lock on the table",
	},
	{
		prefix:            "TRUNCATE",
		destructiveReason: "TRUNCATE will delete all rows from the table",
		blockingReason:    "TRUNCATE takes an exclusive lock on the table",
	},
	{
		prefix:            "DELETE",
		destructiveReason: "DELETE will remove rows from the table",
	},
}

// StatementAnalysis contains the results of analyzing a SQL statement.
type StatementAnalysis struct {
	IsBlocking        bool
	BlockingReasons   []string
	IsDestructive     bool
	DestructiveReason string
	IsTransactionSafe bool
	TxUnsafeReason    string
	StatementType     string
}

// StatementAnalyzer classifies PostgreSQL statements by their leading
// keywords. It never executes or fully parses them.
type StatementAnalyzer struct {
	rules []statementRule
}

// NewStatementAnalyzer creates an analyzer with the built-in rules.
func NewStatementAnalyzer() *StatementAnalyzer {
	return &StatementAnalyzer{rules: statementRules}
}

// AnalyzeStatement classifies a single SQL statement.
func (a *StatementAnalyzer) AnalyzeStatement(sql string) *StatementAnalysis {
	normalized := normalizeStatement(sql)
	analysis := &StatementAnalysis{
		IsTransactionSafe: true,
		StatementType:     statementType(normalized),
	}
	if normalized == "" {
		return analysis
	}

	for _, rule := range a.rules {
		if !hasKeywordPrefix(normalized, rule.prefix) {
			continue
		}
		analysis.StatementType = rule.prefix
		applyRule(analysis, rule)
		return analysis
	}

	if hasKeywordPrefix(normalized, "ALTER TABLE") {
		analysis.StatementType = "ALTER TABLE"
		a.analyzeAlterTable(normalized, analysis)
	}
	return analysis
}

func applyRule(analysis *StatementAnalysis, rule statementRule) {
	if rule.destructiveReason != "" {
		analysis.IsDestructive = true
		analysis.DestructiveReason = rule.destructiveReason
	}
	if rule.blockingReason != "" {
		analysis.IsBlocking = true
		analysis.BlockingReasons = append(analysis.BlockingReasons, rule.blockingReason)
	}
	if rule.txUnsafeReason != "" {
		analysis.IsTransactionSafe = false
		analysis.TxUnsafeReason = rule.txUnsafeReason
	}
}

func (a *StatementAnalyzer) analyzeAlterTable(normalized string, analysis *StatementAnalysis) {
	if strings.Contains(normalized, " DROP COLUMN ") {
		analysis.IsDestructive = true
		analysis.DestructiveReason = "DROP COLUMN will permanently delete the column and its data"
	}
	if strings.Contains(normalized, " FOREIGN KEY ") && !strings.Contains(normalized, " NOT VALID") {
		analysis.IsBlocking = true
		analysis.BlockingReasons = append(analysis.BlockingReasons,
			"ADD FOREIGN KEY validates existing rows while locking both tables against writes")
	}
	if strings.Contains(normalized, " ALTER COLUMN ") && strings.Contains(normalized, " TYPE ") {
		analysis.IsBlocking = true
		analysis.BlockingReasons = append(analysis.BlockingReasons,
			"ALTER COLUMN TYPE may rewrite the table under an exclusive lock")
	}
}

// AnalyzeStatements analyzes multiple SQL statements and returns a PreflightResult.
func (a *StatementAnalyzer) AnalyzeStatements(statements []string, unsafeAllowed bool) *PreflightResult {
	result := &PreflightResult{
		IsTransactional: true,
	}

	for _, stmt := range statements {
		analysis := a.AnalyzeStatement(stmt)
		a.addBlockingWarnings(result, analysis, stmt)
		a.addDestructiveWarning(result, analysis, stmt, unsafeAllowed)
		a.addTransactionSafety(result, analysis, stmt)
	}

	return result
}

func (a *StatementAnalyzer) addBlockingWarnings(result *PreflightResult, analysis *StatementAnalysis, stmt string) {
	if !analysis.IsBlocking {
		return
	}
	for _, reason := range analysis.BlockingReasons {
		result.Warnings = append(result.Warnings, Warning{
			Level:   WarnCaution,
			Message: fmt.Sprintf("Potentially blocking DDL: %s", reason),
			SQL:     stmt,
		})
	}
}

func (a *StatementAnalyzer) addDestructiveWarning(result *PreflightResult, analysis *StatementAnalysis, stmt string, unsafeAllowed bool) {
	if !analysis.IsDestructive {
		return
	}
	msg := analysis.DestructiveReason
	if !unsafeAllowed {
		msg = fmt.Sprintf("%s (requires --unsafe flag)", msg)
	}
	result.Warnings = append(result.Warnings, Warning{
		Level:   WarnDanger,
		Message: msg,
		SQL:     stmt,
	})
}

func (a *StatementAnalyzer) addTransactionSafety(result *PreflightResult, analysis *StatementAnalysis, stmt string) {
	if analysis.IsTransactionSafe {
		return
	}
	result.IsTransactional = false
	result.NonTxReasons = append(result.NonTxReasons, fmt.Sprintf("%s: %s", analysis.TxUnsafeReason, truncateSQL(stmt, 0)))
}

// normalizeStatement upper-cases stmt, drops line comments, and collapses
// whitespace so rules can match on keyword sequences.
func normalizeStatement(stmt string) string {
	var words []string
	for line := range strings.SplitSeq(stmt, "\n") {
		if i := strings.Index(line, "--"); i >= 0 {
			line = line[:i]
		}
		words = append(words, strings.Fields(line)...)
	}
	return strings.ToUpper(strings.Join(words, " "))
}

func hasKeywordPrefix(normalized, prefix string) bool {
	if !strings.HasPrefix(normalized, prefix) {
		return false
	}
	rest := normalized[len(prefix):]
	return rest == "" || rest[0] == ' ' || rest[0] == ';' || rest[0] == '('
}

func statementType(normalized string) string {
	if normalized == "" {
		return ""
	}
	word, _, _ := strings.Cut(normalized, " ")
	return strings.TrimRight(word, ";")
}
