// Package journal persists load settlements to a SQLite database so the CLI
// can report on past runs. The journal is diagnostics only — nothing in the
// scheduler reads it back.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one settled load, successful or not.
type Record struct {
	URL      string
	Type     string
	Outcome  string // "loaded" or "failed"
	Detail   string // failure message, empty on success
	Attempts int
	Duration time.Duration
	At       time.Time
}

// Journal is an append-only settlement log backed by SQLite.
type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("journal: cannot open database: %w", err)
	}
	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS loads (
            id          INTEGER PRIMARY KEY AUTOINCREMENT,
            url         TEXT NOT NULL,
            type        TEXT NOT NULL,
            outcome     TEXT NOT NULL,
            detail      TEXT NOT NULL DEFAULT '',
            attempts    INTEGER NOT NULL,
            duration_ms INTEGER NOT NULL,
            at_unix_ms  INTEGER NOT NULL
        )
    `)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: cannot create loads table: %w", err)
	}
	return &Journal{db: db}, nil
}

// Append writes one record.
func (j *Journal) Append(r Record) error {
	at := r.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := j.db.Exec(`
        INSERT INTO loads (url, type, outcome, detail, attempts, duration_ms, at_unix_ms)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `, r.URL, r.Type, r.Outcome, r.Detail, r.Attempts, r.Duration.Milliseconds(), at.UnixMilli())
	if err != nil {
		return fmt.Errorf("journal: failed to append record: %w", err)
	}
	return nil
}

// Recent returns up to n most recent records, newest first.
func (j *Journal) Recent(n int) ([]Record, error) {
	rows, err := j.db.Query(`
        SELECT url, type, outcome, detail, attempts, duration_ms, at_unix_ms
        FROM loads
        ORDER BY id DESC
        LIMIT ?
    `, n)
	if err != nil {
		return nil, fmt.Errorf("journal: failed to query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r          Record
			durationMS int64
			atUnixMS   int64
		)
		if err := rows.Scan(&r.URL, &r.Type, &r.Outcome, &r.Detail, &r.Attempts, &durationMS, &atUnixMS); err != nil {
			return nil, fmt.Errorf("journal: failed to scan record row: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.At = time.UnixMilli(atUnixMS)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
