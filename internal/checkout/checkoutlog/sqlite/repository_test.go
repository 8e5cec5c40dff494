package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suhanarda/greengrocer/internal/checkout/checkoutlog"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSaveAndGetLatest(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	entries := []*checkoutlog.Entry{
		{
			CheckoutID:    "42",
			Status:        checkoutlog.StatusStarted,
			Payload:       `{"customer_id":1}`,
			ErrorMessages: "[]",
			UpdatedAt:     time.Now().Add(-2 * time.Second),
		},
		{
			CheckoutID:    "42",
			Status:        checkoutlog.StatusStepDone,
			CurrentStep:   "reserve_stock",
			ErrorMessages: "[]",
			UpdatedAt:     time.Now().Add(-time.Second),
		},
		{
			CheckoutID:    "42",
			Status:        checkoutlog.StatusFailed,
			CurrentStep:   "redeem_coupon",
			ErrorMessages: `["redeem_coupon: usage cap reached"]`,
			TraceID:       "0af7651916cd43dd8448eb211c80319c",
			SpanID:        "b7ad6b7169203331",
			UpdatedAt:     time.Now(),
		},
	}
	for _, e := range entries {
		require.NoError(t, repo.Save(ctx, e))
	}

	latest, err := repo.GetLatest(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, checkoutlog.StatusFailed, latest.Status)
	assert.Equal(t, "redeem_coupon", latest.CurrentStep)
	assert.Contains(t, latest.ErrorMessages, "usage cap reached")
	assert.Equal(t, "0af7651916cd43dd8448eb211c80319c", latest.TraceID)
	assert.WithinDuration(t, time.Now(), latest.UpdatedAt, 5*time.Second)

	// The payload stays on the STARTED row only.
	assert.Empty(t, latest.Payload)
}

func TestGetLatestUnknownCheckout(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetLatest(context.Background(), "nope")
	assert.Error(t, err)
}

func TestEntriesAreScopedByCheckout(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &checkoutlog.Entry{
		CheckoutID: "1", Status: checkoutlog.StatusCompleted,
		ErrorMessages: "[]", UpdatedAt: time.Now(),
	}))
	require.NoError(t, repo.Save(ctx, &checkoutlog.Entry{
		CheckoutID: "2", Status: checkoutlog.StatusStarted,
		ErrorMessages: "[]", UpdatedAt: time.Now(),
	}))

	first, err := repo.GetLatest(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, checkoutlog.StatusCompleted, first.Status)

	second, err := repo.GetLatest(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, checkoutlog.StatusStarted, second.Status)
}
