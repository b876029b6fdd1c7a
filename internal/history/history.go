// Package history records emulation runs in a local SQLite database so an
// analyst can line executions up against the detections they produced.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	appErrors "mitremenu/internal/errors"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS executions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	test_id     TEXT    NOT NULL,
	title       TEXT    NOT NULL,
	command     TEXT    NOT NULL,
	exit_code   INTEGER NOT NULL,
	error       TEXT    NOT NULL DEFAULT '',
	started_at  INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS executions_started_at ON executions (started_at);
`

// Entry is one recorded execution.
type Entry struct {
	ID        int64
	TestID    string
	Title     string
	Command   string
	ExitCode  int
	Error     string
	StartedAt time.Time
	Duration  time.Duration
}

// Succeeded reports whether the run exited zero without error.
func (e Entry) Succeeded() bool {
	return e.ExitCode == 0 && e.Error == ""
}

// Store is an execution history database.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates (if needed) and opens the history database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, appErrors.New(appErrors.CodeHistoryFailed, "history path is empty", nil)
	}
	//nolint:gosec // G301: User config directory needs standard permissions
	if err := os.MkdirAll(filepath.Dir(trimmed), 0755); err != nil {
		return nil, appErrors.New(appErrors.CodeHistoryFailed, fmt.Sprintf("create history directory: %v", err), err)
	}

	db, err := sql.Open("sqlite", buildDSN(trimmed))
	if err != nil {
		return nil, appErrors.New(appErrors.CodeHistoryFailed, fmt.Sprintf("open history db: %v", err), err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, appErrors.New(appErrors.CodeHistoryFailed, fmt.Sprintf("ping history db: %v", err), err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, appErrors.New(appErrors.CodeHistoryFailed, fmt.Sprintf("migrate history db: %v", err), err)
	}
	return &Store{db: db, path: trimmed}, nil
}

// buildDSN creates a WAL-mode DSN for the given path.
func buildDSN(dbPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(dbPath),
	}
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "busy_timeout(3000)")
	u.RawQuery = q.Encode()
	return u.String()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Record appends an execution and returns its row id.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	if e.StartedAt.IsZero() {
		e.StartedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO executions (test_id, title, command, exit_code, error, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.TestID, e.Title, e.Command, e.ExitCode, e.Error, e.StartedAt.UnixMilli(), e.Duration.Milliseconds())
	if err != nil {
		return 0, appErrors.New(appErrors.CodeHistoryFailed, fmt.Sprintf("record execution of %s: %v", e.TestID, err), err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, appErrors.New(appErrors.CodeHistoryFailed, fmt.Sprintf("read execution id: %v", err), err)
	}
	return id, nil
}

// Recent returns up to limit executions, newest first. A limit <= 0 returns all.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, test_id, title, command, exit_code, error, started_at, duration_ms
		FROM executions
		ORDER BY started_at DESC, id DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, appErrors.New(appErrors.CodeHistoryFailed, fmt.Sprintf("query executions: %v", err), err)
	}
	defer func() {
		_ = rows.Close()
	}()

	entries := []Entry{}
	for rows.Next() {
		var (
			e          Entry
			startedMS  int64
			durationMS int64
		)
		if err := rows.Scan(&e.ID, &e.TestID, &e.Title, &e.Command, &e.ExitCode, &e.Error, &startedMS, &durationMS); err != nil {
			return nil, appErrors.New(appErrors.CodeHistoryFailed, fmt.Sprintf("scan execution: %v", err), err)
		}
		e.StartedAt = time.UnixMilli(startedMS)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.New(appErrors.CodeHistoryFailed, fmt.Sprintf("iterate executions: %v", err), err)
	}
	return entries, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
