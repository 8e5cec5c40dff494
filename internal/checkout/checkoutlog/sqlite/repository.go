// Package sqlite provides a SQLite-backed implementation of
// checkoutlog.Repository.
//
// WAL mode is enabled on Open so that readers never block writers and vice
// versa. The checkout goroutine writes while an HTTP handler may be reading
// (e.g. for an order-status endpoint).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/suhanarda/greengrocer/internal/checkout/checkoutlog"

	// Register the pure-Go SQLite driver. modernc.org/sqlite avoids CGO,
	// which keeps builds trivial in Docker (Alpine).
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup. The table is append-only: each
// row is an immutable event in a checkout's lifecycle. Querying
// MAX(updated_at) per checkout_id gives the current state.
const schema = `
CREATE TABLE IF NOT EXISTS checkout_logs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Business identifier: the order ID once one exists.
    -- Not UNIQUE because multiple rows exist per checkout (one per transition).
    checkout_id     TEXT        NOT NULL,

    status          TEXT        NOT NULL,

    -- Name of the step that just executed (e.g. "reserve_stock").
    current_step    TEXT        NOT NULL DEFAULT '',

    -- JSON payload that started the checkout. Written once on STARTED, NULL after.
    payload         TEXT,

    -- JSON array of error strings accumulated during failure/compensation.
    error_messages  TEXT        NOT NULL DEFAULT '[]',

    -- W3C trace_id / span_id of the active span, for jumping to the trace.
    trace_id        TEXT        NOT NULL DEFAULT '',
    span_id         TEXT        NOT NULL DEFAULT '',

    -- Wall-clock timestamp (RFC3339 stored as TEXT, SQLite idiom).
    updated_at      TEXT        NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_checkout_logs_checkout_id ON checkout_logs(checkout_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_checkout_logs_trace_id ON checkout_logs(trace_id);
`

// Repository is the SQLite implementation of checkoutlog.Repository.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at the given path and applies
// the schema.
//
//	repo, err := sqlite.Open("./data/checkout.db")
func Open(path string) (*Repository, error) {
	// The pure-Go driver configures connection state through _pragma query
	// parameters. WAL enables concurrent readers; busy_timeout waits for
	// locks instead of failing immediately.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply checkout log schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save inserts a new checkout log entry. Safe to call concurrently.
func (r *Repository) Save(ctx context.Context, entry *checkoutlog.Entry) error {
	const q = `
		INSERT INTO checkout_logs
			(checkout_id, status, current_step, payload, error_messages, trace_id, span_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.CheckoutID,
		string(entry.Status),
		entry.CurrentStep,
		nullableString(entry.Payload),
		entry.ErrorMessages,
		entry.TraceID,
		entry.SpanID,
		entry.UpdatedAt.UTC().Format("2006-01-02T15:04:05.999999999Z"),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save checkout log for %q: %w", entry.CheckoutID, err)
	}
	return nil
}

// GetLatest returns the most recent log entry for a checkout. Useful for a
// status endpoint and for the transition tests.
func (r *Repository) GetLatest(ctx context.Context, checkoutID string) (*checkoutlog.Entry, error) {
	const q = `
		SELECT checkout_id, status, current_step, COALESCE(payload,''), error_messages,
		       trace_id, span_id, updated_at
		FROM   checkout_logs
		WHERE  checkout_id = ?
		ORDER  BY updated_at DESC, id DESC
		LIMIT  1`

	row := r.db.QueryRowContext(ctx, q, checkoutID)

	var entry checkoutlog.Entry
	var updatedAt string
	err := row.Scan(
		&entry.CheckoutID,
		&entry.Status,
		&entry.CurrentStep,
		&entry.Payload,
		&entry.ErrorMessages,
		&entry.TraceID,
		&entry.SpanID,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sqlite: checkout %q not found", checkoutID)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get latest for %q: %w", checkoutID, err)
	}

	entry.UpdatedAt, err = parseRFC3339(updatedAt)
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// nullableString returns nil for empty strings so SQLite stores NULL instead
// of empty TEXT, keeping the payload column clean on non-STARTED rows.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
