package checkoutlog

import "context"

// Repository is the port for persisting checkout log entries. The
// orchestrator depends on this abstraction, not on SQLite directly, so the
// implementation can be swapped for Postgres, in-memory (tests), etc.
type Repository interface {
	// Save appends a new log entry. The table is an append-only audit log,
	// not an upsert.
	Save(ctx context.Context, entry *Entry) error
}
