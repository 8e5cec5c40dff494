// Package checkoutlog defines the durable audit trail of checkout runs.
//
// Every state transition of a checkout (started, step done, compensating,
// completed, failed) is appended as an immutable row. The log serves two
// purposes:
//
//  1. Observability: you can query the DB to see exactly where a checkout
//     is (or was) and correlate it with a distributed trace via trace_id.
//
//  2. Forensics: when a checkout was rolled back, the log records which step
//     failed and what the compensation did, joined to the order by ID.
package checkoutlog

import "time"

// Status represents the lifecycle state of a checkout run.
type Status string

const (
	StatusStarted      Status = "STARTED"
	StatusStepDone     Status = "STEP_DONE"
	StatusCompleted    Status = "COMPLETED"
	StatusCompensating Status = "COMPENSATING"
	StatusFailed       Status = "FAILED"
)

// Entry is a single row in the checkout_logs table: a point-in-time snapshot
// of one checkout run.
type Entry struct {
	// CheckoutID identifies the run. It is the order ID once the order row
	// exists, so log rows can be joined with business data.
	CheckoutID string

	// Status is the lifecycle state at the time the row was written.
	Status Status

	// CurrentStep is the step that was just executed or failed.
	CurrentStep string

	// Payload is the JSON-serialised checkout request, stored once on the
	// STARTED row.
	Payload string

	// ErrorMessages accumulates failure details as a JSON array, one entry
	// per failed step or compensation.
	ErrorMessages string

	// TraceID is the W3C trace ID of the span active when the row was
	// written, so a log row can be jumped to the full trace.
	TraceID string

	// SpanID pinpoints the exact span within the trace.
	SpanID string

	// UpdatedAt is the wall-clock time of this entry.
	UpdatedAt time.Time
}
