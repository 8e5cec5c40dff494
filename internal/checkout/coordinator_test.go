package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suhanarda/greengrocer/internal/checkout/checkoutlog"
)

type recordedStep struct {
	name    string
	execErr error
	compErr error
	trail   *[]string
}

func (s *recordedStep) Name() string { return s.name }

func (s *recordedStep) Execute(context.Context) error {
	*s.trail = append(*s.trail, "exec:"+s.name)
	return s.execErr
}

func (s *recordedStep) Compensate(context.Context) error {
	*s.trail = append(*s.trail, "comp:"+s.name)
	return s.compErr
}

func TestOrchestratorRunsStepsInOrder(t *testing.T) {
	var trail []string
	journal := &memoryJournal{}
	steps := []Step{
		&recordedStep{name: "first", trail: &trail},
		&recordedStep{name: "second", trail: &trail},
		&recordedStep{name: "third", trail: &trail},
	}

	err := NewOrchestrator("42", steps, journal, `{"demo":true}`).Start(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"exec:first", "exec:second", "exec:third"}, trail)
	assert.Equal(t, []checkoutlog.Status{
		checkoutlog.StatusStarted,
		checkoutlog.StatusStepDone,
		checkoutlog.StatusStepDone,
		checkoutlog.StatusStepDone,
		checkoutlog.StatusCompleted,
	}, journal.statuses())
	assert.Equal(t, `{"demo":true}`, journal.entries[0].Payload)
}

func TestOrchestratorCompensatesInReverse(t *testing.T) {
	var trail []string
	boom := errors.New("stock gone")
	journal := &memoryJournal{}
	steps := []Step{
		&recordedStep{name: "first", trail: &trail},
		&recordedStep{name: "second", trail: &trail},
		&recordedStep{name: "third", trail: &trail, execErr: boom},
	}

	err := NewOrchestrator("42", steps, journal, "").Start(context.Background())
	require.ErrorIs(t, err, boom)

	// The failed step is never compensated; the earlier ones unwind LIFO.
	assert.Equal(t, []string{
		"exec:first", "exec:second", "exec:third",
		"comp:second", "comp:first",
	}, trail)

	statuses := journal.statuses()
	assert.Equal(t, checkoutlog.StatusCompensating, statuses[len(statuses)-2])
	assert.Equal(t, checkoutlog.StatusFailed, statuses[len(statuses)-1])

	last := journal.entries[len(journal.entries)-1]
	assert.Equal(t, "third", last.CurrentStep)

	var msgs []string
	require.NoError(t, json.Unmarshal([]byte(last.ErrorMessages), &msgs))
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "stock gone")
}

func TestOrchestratorCollectsCompensationFailures(t *testing.T) {
	var trail []string
	journal := &memoryJournal{}
	steps := []Step{
		&recordedStep{name: "first", trail: &trail, compErr: errors.New("restore failed")},
		&recordedStep{name: "second", trail: &trail, execErr: errors.New("nope")},
	}

	err := NewOrchestrator("42", steps, journal, "").Start(context.Background())
	require.Error(t, err)

	// A broken compensation does not stop the rollback, and its error lands
	// on the FAILED row.
	assert.Contains(t, trail, "comp:first")
	last := journal.entries[len(journal.entries)-1]

	var msgs []string
	require.NoError(t, json.Unmarshal([]byte(last.ErrorMessages), &msgs))
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[1], "restore failed")
}

func TestOrchestratorWithoutJournal(t *testing.T) {
	var trail []string
	steps := []Step{&recordedStep{name: "only", trail: &trail}}

	err := NewOrchestrator("42", steps, nil, "").Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"exec:only"}, trail)
}
