package checkoutlog

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// TraceInfo holds the OTel identifiers extracted from a context.
type TraceInfo struct {
	// TraceID is the W3C trace ID (32 lowercase hex chars). Empty when no
	// span is active in the context.
	TraceID string

	// SpanID is the W3C span ID (16 lowercase hex chars).
	SpanID string
}

// ExtractTraceInfo reads the active OpenTelemetry span from ctx and returns
// its trace_id and span_id as hex strings. The otelhttp middleware on the
// router creates the server-side span; SpanFromContext retrieves it here.
// In unit tests with no active span, both fields come back empty and the
// caller should handle that gracefully.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	span := trace.SpanFromContext(ctx)
	sc := span.SpanContext()

	if !sc.IsValid() {
		return TraceInfo{}
	}

	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// NewEntry builds a log entry with the trace info extracted from ctx.
//
// Usage in the orchestrator:
//
//	entry := checkoutlog.NewEntry(ctx, orderID, checkoutlog.StatusStepDone, "reserve_stock", "", nil)
//	_ = repo.Save(ctx, entry)
func NewEntry(
	ctx context.Context,
	checkoutID string,
	status Status,
	currentStep string,
	payload string,
	errs []string,
) *Entry {
	ti := ExtractTraceInfo(ctx)

	errJSON := "[]"
	if len(errs) > 0 {
		if b, err := json.Marshal(errs); err == nil {
			errJSON = string(b)
		}
	}

	return &Entry{
		CheckoutID:    checkoutID,
		Status:        status,
		CurrentStep:   currentStep,
		Payload:       payload,
		ErrorMessages: errJSON,
		TraceID:       ti.TraceID,
		SpanID:        ti.SpanID,
		UpdatedAt:     time.Now().UTC(),
	}
}
