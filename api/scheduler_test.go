package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/apr-engine/factory"
	"github.com/warp/apr-engine/regz"
)

func saveDoc(t *testing.T, h *Handler, id, doc string) {
	t.Helper()
	var config factory.LoanJSON
	require.NoError(t, json.Unmarshal([]byte(doc), &config))
	_, err := h.saveLoan(context.Background(), id, config)
	require.NoError(t, err)
}

func TestRecalcScheduler_RunNow(t *testing.T) {
	// GIVEN: Two solvable loans and one that fails the 60-day guard
	// WHEN: Running the scheduler twice
	// THEN: The first run records two calculations and the failure; the second has nothing to do

	h := setupTestHandler(t)
	ctx := context.Background()
	saveDoc(t, h, "car", factory.SingleAdvanceJSON("Car", "1000.00", "2015-06-01", "90.26", 12, 12, "2015-07-01"))
	saveDoc(t, h, "odd", factory.SingleAdvanceJSON("Odd", "5000.00", "2015-01-15", "230.00", 24, 12, "2015-03-01"))
	saveDoc(t, h, "late", factory.SingleAdvanceJSON("Late", "1000.00", "2015-10-01", "90.00", 12, 12, "2015-07-01"))

	rs := NewRecalcScheduler(h.Store, h)

	processed, failed := rs.RunNow(ctx)
	assert.Equal(t, 2, processed)
	assert.Equal(t, 1, failed)

	processed, failed = rs.RunNow(ctx)
	assert.Equal(t, 0, processed)
	assert.Equal(t, 0, failed)

	history, err := h.Store.ListCalculations(ctx, "odd")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "9.25", history[0].Rounded.StringFixed(2))
}

func TestRecalcScheduler_EditedLoanRecalculated(t *testing.T) {
	h := setupTestHandler(t)
	ctx := context.Background()
	rs := NewRecalcScheduler(h.Store, h)

	saveDoc(t, h, "car", factory.SingleAdvanceJSON("Car", "1000.00", "2015-06-01", "90.26", 12, 12, "2015-07-01"))
	rs.RunNow(ctx)
	saveDoc(t, h, "car", factory.SingleAdvanceJSON("Car", "1000.00", "2015-06-01", "95.00", 12, 12, "2015-07-01"))

	processed, _ := rs.RunNow(ctx)

	assert.Equal(t, 1, processed)
	history, err := h.Store.ListCalculations(ctx, "car")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 2, history[0].ConfigVersion)
}

func TestRecalcScheduler_RejectedVersionSkippedUntilEdited(t *testing.T) {
	// GIVEN: A saved loan with 7 payments a year, which the engine rejects
	// WHEN: Running the scheduler, then fixing the frequency
	// THEN: The bad version is tried once; the edited version is calculated

	h := setupTestHandler(t)
	ctx := context.Background()
	rs := NewRecalcScheduler(h.Store, h)
	saveDoc(t, h, "odd-freq", factory.SingleAdvanceJSON("Odd", "1000.00", "2015-06-01", "90.26", 12, 7, "2015-07-01"))

	processed, failed := rs.RunNow(ctx)
	assert.Equal(t, 0, processed)
	assert.Equal(t, 1, failed)

	pending, err := h.Store.ListUncalculatedLoans(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	saveDoc(t, h, "odd-freq", factory.SingleAdvanceJSON("Odd", "1000.00", "2015-06-01", "90.26", 12, 12, "2015-07-01"))

	processed, failed = rs.RunNow(ctx)
	assert.Equal(t, 1, processed)
	assert.Equal(t, 0, failed)

	history, err := h.Store.ListCalculations(ctx, "odd-freq")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 2, history[0].ConfigVersion)
}

func TestPermanent(t *testing.T) {
	assert.True(t, permanent(&regz.LoopBoundError{}))
	assert.True(t, permanent(&regz.FrequencyError{Frequency: 7}))
	assert.True(t, permanent(fmt.Errorf("loan x: %w", regz.ErrNoConvergence)))
	assert.False(t, permanent(errors.New("database is locked")))
}

func TestRecalcScheduler_StartStop(t *testing.T) {
	h := setupTestHandler(t)
	saveDoc(t, h, "car", factory.SingleAdvanceJSON("Car", "1000.00", "2015-06-01", "90.26", 12, 12, "2015-07-01"))

	rs := NewRecalcScheduler(h.Store, h)
	rs.CheckInterval = time.Hour
	rs.Start()

	assert.Eventually(t, func() bool {
		history, err := h.Store.ListCalculations(context.Background(), "car")
		return err == nil && len(history) == 1
	}, 2*time.Second, 10*time.Millisecond)

	rs.Stop()
	rs.Stop()
}

func TestRecalcScheduler_Disabled(t *testing.T) {
	h := setupTestHandler(t)
	saveDoc(t, h, "car", factory.SingleAdvanceJSON("Car", "1000.00", "2015-06-01", "90.26", 12, 12, "2015-07-01"))

	rs := NewRecalcScheduler(h.Store, h)
	rs.Enabled = false
	rs.Start()
	rs.Stop()

	history, err := h.Store.ListCalculations(context.Background(), "car")
	require.NoError(t, err)
	assert.Empty(t, history)
}
