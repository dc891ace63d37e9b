// Package journal stores dispatched exchanges in a SQLite database.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"dqx0.com/go/rawclient/rawhttp"
)

// Entry is one recorded exchange.
type Entry struct {
	ID         string
	Mode       string
	Host       string
	Endpoint   string
	Proxy      string
	StatusCode int
	Request    []byte
	Response   []byte
	Error      string
	StartedAt  time.Time
	Duration   time.Duration
}

// Journal implements rawhttp.Recorder.
type Journal struct {
	db *sql.DB
}

var _ rawhttp.Recorder = (*Journal)(nil)

var errClosed = errors.New("journal: closed")

// Open opens or creates the database at path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite serializes writers anyway; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	j := &Journal{db: db}
	if err := j.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return j, nil
}

func (j *Journal) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS exchanges (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			host TEXT NOT NULL,
			endpoint TEXT NOT NULL,
			proxy TEXT,
			status_code INTEGER,
			request BLOB,
			response BLOB,
			error_message TEXT,
			started_at INTEGER NOT NULL,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS exchanges_started_at ON exchanges(started_at)`,
	}
	for _, q := range queries {
		if _, err := j.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// Record stores ex. Exchanges without an ID get a fresh one.
func (j *Journal) Record(ctx context.Context, ex rawhttp.Exchange) error {
	if j == nil || j.db == nil {
		return errClosed
	}
	id := ex.ID
	if id == "" {
		id = uuid.NewString()
	}
	var errMsg sql.NullString
	if ex.Err != nil {
		errMsg = sql.NullString{String: ex.Err.Error(), Valid: true}
	}
	var endpoint string
	if ex.Endpoint.IsValid() {
		endpoint = ex.Endpoint.String()
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO exchanges (id, mode, host, endpoint, proxy, status_code,
			request, response, error_message, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, string(ex.Mode), ex.Host, endpoint, ex.Proxy, int(ex.StatusCode),
		ex.Request, ex.Response, errMsg, ex.Started.UnixNano(), ex.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to record exchange %s: %w", id, err)
	}
	return nil
}

// List returns the most recent exchanges first. limit <= 0 returns all.
func (j *Journal) List(ctx context.Context, limit int) ([]Entry, error) {
	if j == nil || j.db == nil {
		return nil, errClosed
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, mode, host, endpoint, proxy, status_code, request, response,
			error_message, started_at, duration_ms
		FROM exchanges
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchanges: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			proxy   sql.NullString
			errMsg  sql.NullString
			started int64
			ms      int64
		)
		if err := rows.Scan(&e.ID, &e.Mode, &e.Host, &e.Endpoint, &proxy, &e.StatusCode,
			&e.Request, &e.Response, &errMsg, &started, &ms); err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		e.Proxy = proxy.String
		e.Error = errMsg.String
		e.StartedAt = time.Unix(0, started)
		e.Duration = time.Duration(ms) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns the exchange with the given ID, or sql.ErrNoRows.
func (j *Journal) Get(ctx context.Context, id string) (*Entry, error) {
	if j == nil || j.db == nil {
		return nil, errClosed
	}
	var (
		e       Entry
		proxy   sql.NullString
		errMsg  sql.NullString
		started int64
		ms      int64
	)
	err := j.db.QueryRowContext(ctx, `
		SELECT id, mode, host, endpoint, proxy, status_code, request, response,
			error_message, started_at, duration_ms
		FROM exchanges WHERE id = ?
	`, id).Scan(&e.ID, &e.Mode, &e.Host, &e.Endpoint, &proxy, &e.StatusCode,
		&e.Request, &e.Response, &errMsg, &started, &ms)
	if err != nil {
		return nil, err
	}
	e.Proxy = proxy.String
	e.Error = errMsg.String
	e.StartedAt = time.Unix(0, started)
	e.Duration = time.Duration(ms) * time.Millisecond
	return &e, nil
}

// Close releases the database. Calling it twice is harmless.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}
