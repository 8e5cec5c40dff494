package checkout

import (
	"context"
	"log/slog"

	"github.com/suhanarda/greengrocer/internal/checkout/checkoutlog"
)

// Step represents a single unit of work in the checkout sequence. Each step
// must have a compensating action to undo its effects.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// Orchestrator runs the checkout steps sequentially and journals every
// transition to the checkout log.
type Orchestrator struct {
	checkoutID string
	steps      []Step
	journal    checkoutlog.Repository // nil-safe: journaling skipped if nil
	payload    string
}

// NewOrchestrator builds an orchestrator for one checkout run. checkoutID is
// the order ID so log rows can be joined with business data; payload is the
// JSON request stored on the STARTED row.
func NewOrchestrator(checkoutID string, steps []Step, journal checkoutlog.Repository, payload string) *Orchestrator {
	return &Orchestrator{
		checkoutID: checkoutID,
		steps:      steps,
		journal:    journal,
		payload:    payload,
	}
}

// Start runs the steps in order. If a step fails, every previously
// successful step is compensated in LIFO order and the step's error is
// returned.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.log(ctx, checkoutlog.StatusStarted, "", o.payload, nil)

	var successful []Step
	for _, step := range o.steps {
		slog.DebugContext(ctx, "executing checkout step", "checkout_id", o.checkoutID, "step", step.Name())
		if err := step.Execute(ctx); err != nil {
			slog.WarnContext(ctx, "checkout step failed, rolling back",
				"checkout_id", o.checkoutID, "step", step.Name(), "error", err)

			errs := []string{step.Name() + ": " + err.Error()}
			o.log(ctx, checkoutlog.StatusCompensating, step.Name(), "", errs)

			errs = append(errs, o.rollback(ctx, successful)...)
			o.log(ctx, checkoutlog.StatusFailed, step.Name(), "", errs)
			return err
		}
		o.log(ctx, checkoutlog.StatusStepDone, step.Name(), "", nil)
		successful = append(successful, step)
	}

	o.log(ctx, checkoutlog.StatusCompleted, "", "", nil)
	return nil
}

// rollback compensates the given steps in reverse order. Compensation
// failures are collected rather than propagated: the rollback keeps going so
// one broken compensation cannot strand the rest.
func (o *Orchestrator) rollback(ctx context.Context, steps []Step) []string {
	var errs []string
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		slog.InfoContext(ctx, "compensating checkout step", "checkout_id", o.checkoutID, "step", step.Name())
		if err := step.Compensate(ctx); err != nil {
			slog.ErrorContext(ctx, "CRITICAL: failed to compensate checkout step",
				"checkout_id", o.checkoutID, "step", step.Name(), "error", err)
			errs = append(errs, "compensation of "+step.Name()+": "+err.Error())
		}
	}
	return errs
}

func (o *Orchestrator) log(ctx context.Context, status checkoutlog.Status, step, payload string, errs []string) {
	if o.journal == nil {
		return
	}
	entry := checkoutlog.NewEntry(ctx, o.checkoutID, status, step, payload, errs)
	if err := o.journal.Save(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to write checkout log", "checkout_id", o.checkoutID, "error", err)
	}
}
