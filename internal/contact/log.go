package contact

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

type Status string

const (
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

type Entry struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Log is the submissions table.
type Log struct {
	db *sql.DB
}

// OpenLog opens (creating if needed) the SQLite database at path. Use
// ":memory:" for a throwaway log.
func OpenLog(path string) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open contact log: %w", err)
	}
	// one connection keeps :memory: databases alive and writes serialised
	db.SetMaxOpenConns(1)

	createTable := `
	CREATE TABLE IF NOT EXISTS submissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		subject TEXT NOT NULL,
		message TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create submissions table: %w", err)
	}
	return &Log{db: db}, nil
}

func (l *Log) Close() error { return l.db.Close() }

func (l *Log) Record(ctx context.Context, s Submission, status Status, sendErr error) error {
	var errText sql.NullString
	if sendErr != nil {
		errText = sql.NullString{String: sendErr.Error(), Valid: true}
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO submissions (name, email, subject, message, status, error, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.Name, s.Email, s.Subject, s.Message, string(status), errText, time.Now().UTC())
	return err
}

// Recent returns the newest n entries, newest first.
func (l *Log) Recent(ctx context.Context, n int) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, name, email, subject, message, status, error, timestamp
		FROM submissions ORDER BY id DESC LIMIT ?
	`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]Entry, 0, n)
	for rows.Next() {
		var e Entry
		var status string
		var errText sql.NullString
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Subject, &e.Message, &status, &errText, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Status = Status(status)
		e.Error = errText.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Counts returns how many submissions were sent and how many failed.
func (l *Log) Counts(ctx context.Context) (sent, failed int, err error) {
	err = l.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'sent' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0)
		FROM submissions
	`).Scan(&sent, &failed)
	return sent, failed, err
}
