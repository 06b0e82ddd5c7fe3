package output

import (
	"encoding/json"
	"time"

	"schemaport/internal/core"
	"schemaport/internal/migration"
)

type jsonFormatter struct{}

type schemaPayload struct {
	Format  string         `json:"format"`
	Summary Stats          `json:"summary"`
	Schema  *core.Database `json:"schema,omitempty"`
}

type migrationPayload struct {
	Format      string   `json:"format"`
	Title       string   `json:"title,omitempty"`
	Source      string   `json:"source,omitempty"`
	GeneratedAt string   `json:"generatedAt,omitempty"`
	Summary     Stats    `json:"summary"`
	SQL         []string `json:"sql"`
	Rollback    []string `json:"rollback"`
	Notes       []string `json:"notes,omitempty"`
}

type Payload interface {
	schemaPayload | migrationPayload
}

func (jsonFormatter) FormatSchema(db *core.Database) (string, error) {
	return marshalJSON(schemaPayload{
		Format:  string(FormatJSON),
		Summary: schemaStats(db),
		Schema:  db,
	})
}

func (jsonFormatter) FormatMigration(m *migration.Migration) (string, error) {
	payload := migrationPayload{Format: string(FormatJSON), SQL: []string{}, Rollback: []string{}}
	if m != nil {
		payload.Title = m.Title
		payload.Source = m.Source
		if !m.GeneratedAt.IsZero() {
			payload.GeneratedAt = m.GeneratedAt.Format(time.RFC3339)
		}
		payload.Summary = migrationStats(m)
		payload.SQL = normalizeStatements(m.SQLStatements())
		payload.Rollback = normalizeStatements(m.RollbackStatements())
		payload.Notes = m.Notes()
	}
	return marshalJSON(payload)
}

func marshalJSON[T Payload](payload T) (string, error) {
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
