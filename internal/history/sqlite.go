// Package history persists finished diagnoses to a local SQLite database so
// past examinations survive process restarts.
package history

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/terrapulse/vitals-cli/internal/model"
)

// Entry is one persisted diagnosis row.
type Entry struct {
	ID         string           `json:"id"`
	Organ      model.Organ      `json:"organ"`
	Locator    string           `json:"locator"`
	Diagnosis  string           `json:"diagnosis"`
	Status     model.Status     `json:"status"`
	Severity   model.Severity   `json:"severity,omitempty"`
	Provenance model.Provenance `json:"provenance"`
	Source     string           `json:"source"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Store implements the orchestrator's Recorder against modernc.org/sqlite.
type Store struct {
	db *sql.DB
}

// New opens a SQLite database at the given path and configures WAL mode.
func New(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "history: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "history: exec %s", pragma)
		}
	}
	return &Store{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS diagnoses (
	id         TEXT PRIMARY KEY,
	organ      TEXT NOT NULL,
	locator    TEXT NOT NULL,
	diagnosis  TEXT NOT NULL,
	status     TEXT NOT NULL,
	severity   TEXT,
	provenance TEXT NOT NULL,
	source     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_diagnoses_organ ON diagnoses(organ);
CREATE INDEX IF NOT EXISTS idx_diagnoses_locator ON diagnoses(locator);
CREATE INDEX IF NOT EXISTS idx_diagnoses_created_at ON diagnoses(created_at);
`

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "history: migrate")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one finished diagnosis. The result's own ID and timestamp
// are preserved so the row matches what the caller saw.
func (s *Store) Record(ctx context.Context, locator, snapshotSource string, result model.DiagnosisResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO diagnoses (id, organ, locator, diagnosis, status, severity, provenance, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID, string(result.Organ), locator, result.Diagnosis,
		string(result.Status), string(result.Severity), string(result.Provenance),
		snapshotSource, result.GeneratedAt.UTC(),
	)
	return eris.Wrapf(err, "history: insert diagnosis %s", result.ID)
}

// Filter narrows Recent. Zero values match everything.
type Filter struct {
	Organ   model.Organ
	Locator string
	Limit   int
}

// Recent returns stored diagnoses, newest first.
func (s *Store) Recent(ctx context.Context, filter Filter) ([]Entry, error) {
	query := `SELECT id, organ, locator, diagnosis, status, severity, provenance, source, created_at
	          FROM diagnoses WHERE 1=1`
	var args []any

	if filter.Organ != "" {
		query += ` AND organ = ?`
		args = append(args, string(filter.Organ))
	}
	if filter.Locator != "" {
		query += ` AND locator = ?`
		args = append(args, filter.Locator)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "history: list diagnoses")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var organ, status, severity, provenance string
		if err := rows.Scan(&e.ID, &organ, &e.Locator, &e.Diagnosis, &status, &severity, &provenance, &e.Source, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "history: scan diagnosis")
		}
		e.Organ = model.Organ(organ)
		e.Status = model.Status(status)
		e.Severity = model.Severity(severity)
		e.Provenance = model.Provenance(provenance)
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "history: list diagnoses iterate")
}
