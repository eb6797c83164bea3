package nutrition

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epavlova/macroledger/internal/api"
	"github.com/epavlova/macroledger/internal/common"
	"github.com/epavlova/macroledger/internal/models"
)

func TestSync_DirtyThenCleanCycle(t *testing.T) {
	fx := newFixture(t)
	fx.login()
	ctx := context.Background()
	const date = "2025-01-10"

	_, err := fx.store.AddEntry(ctx, date, appleInput())
	require.NoError(t, err)
	assert.False(t, fx.store.Day(date).Synced, "mutation leaves the day dirty")

	require.NoError(t, fx.store.SyncNow(ctx))

	assert.True(t, fx.store.Day(date).Synced, "successful push marks the day clean")
	assert.Equal(t, 1, fx.api.syncCallCount())
}

func TestSync_NoSessionIsGuardedNoop(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.store.AddEntry(ctx, "2025-01-10", appleInput())
	require.NoError(t, err)

	require.NoError(t, fx.store.SyncNow(ctx))

	assert.Zero(t, fx.api.syncCallCount(), "no push without a session")
	assert.False(t, fx.store.Day("2025-01-10").Synced, "day stays dirty for a later session")
}

func TestSync_FailureLeavesDayDirtyForRetry(t *testing.T) {
	fx := newFixture(t)
	fx.login()
	ctx := context.Background()
	const date = "2025-01-10"

	fx.api.syncErr = common.ErrUnavailable
	_, err := fx.store.AddEntry(ctx, date, appleInput())
	require.NoError(t, err)

	require.NoError(t, fx.store.SyncNow(ctx))
	assert.False(t, fx.store.Day(date).Synced)

	// Next trigger retries and succeeds.
	fx.api.mu.Lock()
	fx.api.syncErr = nil
	fx.api.mu.Unlock()

	require.NoError(t, fx.store.SyncNow(ctx))
	assert.True(t, fx.store.Day(date).Synced)
	assert.GreaterOrEqual(t, fx.api.syncCallCount(), 2)
}

func TestSync_AtMostOneInflightPushPerDate(t *testing.T) {
	fx := newFixture(t)
	fx.login()
	ctx := context.Background()
	const date = "2025-01-10"

	started := make(chan struct{})
	block := make(chan struct{})
	fx.api.mu.Lock()
	fx.api.started = started
	fx.api.block = block
	fx.api.mu.Unlock()

	// The debounced sweep fires and parks inside the fake SyncDay call.
	_, err := fx.store.AddEntry(ctx, date, appleInput())
	require.NoError(t, err)
	<-started

	// A second sweep while the first is mid-flight is refused outright.
	assert.ErrorIs(t, fx.store.SyncNow(ctx), common.ErrSyncInProgress)
	assert.True(t, fx.store.IsSyncing())
	assert.Equal(t, 1, fx.api.syncCallCount(), "one network call for the date while in flight")

	close(block)
	require.Eventually(t, func() bool {
		return !fx.store.IsSyncing() && fx.store.Day(date).Synced
	}, time.Second, 5*time.Millisecond)
}

func TestSync_MidflightMutationSurvivesAdoption(t *testing.T) {
	fx := newFixture(t)
	fx.login()
	ctx := context.Background()
	const date = "2025-01-10"

	started := make(chan struct{})
	block := make(chan struct{})
	fx.api.mu.Lock()
	fx.api.started = started
	fx.api.block = block
	fx.api.echoEntries = true
	fx.api.mu.Unlock()

	// The debounced sweep parks inside the fake holding the one-entry
	// snapshot.
	apple, err := fx.store.AddEntry(ctx, date, appleInput())
	require.NoError(t, err)
	<-started

	// This entry lands during the network round trip.
	_, err = fx.store.AddEntry(ctx, date, models.EntryInput{
		FoodName: "Oatmeal", Quantity: "1 cup", Calories: 300, Protein: 10, Carbs: 54, Fat: 5,
		AnalysisType: models.AnalysisTypeText,
	})
	require.NoError(t, err)

	// Park the follow-up push too, so the intermediate state is observable.
	started2 := make(chan struct{})
	block2 := make(chan struct{})
	fx.api.mu.Lock()
	fx.api.started = started2
	fx.api.block = block2
	fx.api.mu.Unlock()

	close(block)
	require.Eventually(t, func() bool { return !fx.store.IsSyncing() }, time.Second, 2*time.Millisecond)

	day := fx.store.Day(date)
	require.Len(t, day.Entries, 2, "entry added during the round trip must survive adoption")
	assert.False(t, day.Synced, "day stays dirty until the superset is pushed")
	assert.Equal(t, "srv-"+apple.LocalID, day.Entries[0].ServerID, "confirmed id folds into the live entry")
	requireInvariant(t, day)

	// The trailing trigger pushes both entries and the day comes clean.
	<-started2
	close(block2)
	require.Eventually(t, func() bool { return fx.store.Day(date).Synced }, time.Second, 2*time.Millisecond)

	fx.api.mu.Lock()
	last := fx.api.syncCalls[len(fx.api.syncCalls)-1]
	fx.api.mu.Unlock()
	assert.Len(t, last.Entries, 2, "the follow-up push carries the superset")
	requireInvariant(t, fx.store.Day(date))
}

func TestSync_AdoptsServerCanonicalEntries(t *testing.T) {
	fx := newFixture(t)
	fx.login()
	ctx := context.Background()
	const date = "2025-01-10"

	entry, err := fx.store.AddEntry(ctx, date, appleInput())
	require.NoError(t, err)

	serverTime := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	fx.api.mu.Lock()
	fx.api.syncResp = &api.SyncDayResponse{
		LastModified: serverTime,
		Entries: []models.FoodEntry{{
			ServerID: "srv-1", LocalID: entry.LocalID,
			FoodName: "Apple", Quantity: "1 medium",
			Macros: models.Macros{Calories: 95, Protein: 0.5, Carbs: 25, Fat: 0.3},
		}},
	}
	fx.api.mu.Unlock()

	require.NoError(t, fx.store.SyncNow(ctx))

	day := fx.store.Day(date)
	require.Len(t, day.Entries, 1)
	assert.Equal(t, "srv-1", day.Entries[0].ServerID)
	assert.Equal(t, entry.LocalID, day.Entries[0].LocalID, "local identity survives reconciliation")
	assert.True(t, serverTime.Equal(day.LastModified), "server timestamp becomes the truth")
	requireInvariant(t, day)
}

func TestDebouncedSync_CoalescesMutationBurst(t *testing.T) {
	fx := newFixture(t)
	fx.login()
	ctx := context.Background()
	const date = "2025-01-10"

	for i := 0; i < 5; i++ {
		_, err := fx.store.AddEntry(ctx, date, appleInput())
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		return fx.store.Day(date).Synced
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, fx.api.syncCallCount(), "burst coalesced into one push")
}

func TestRecalculateAndPersist_PushesImmediately(t *testing.T) {
	fx := newFixture(t)
	fx.login()
	ctx := context.Background()
	const date = "2025-01-10"

	_, err := fx.store.AddEntry(ctx, date, appleInput())
	require.NoError(t, err)

	require.NoError(t, fx.store.RecalculateAndPersist(ctx, date))

	// Pushed without waiting for the debounce window.
	assert.Equal(t, 1, fx.api.syncCallCount())
	day := fx.store.Day(date)
	assert.True(t, day.Synced)
	requireInvariant(t, day)
}

func TestRecalculateAndPersist_FailureResolvesToServerState(t *testing.T) {
	fx := newFixture(t)
	fx.login()
	ctx := context.Background()
	const date = "2025-01-10"

	_, err := fx.store.AddEntry(ctx, date, appleInput())
	require.NoError(t, err)

	serverDay := &api.DaySnapshot{
		Date:   date,
		Totals: models.Macros{Calories: 500, Protein: 20, Carbs: 60, Fat: 15},
		Entries: []models.FoodEntry{{
			ServerID: "srv-9", FoodName: "Server lunch",
			Macros: models.Macros{Calories: 500, Protein: 20, Carbs: 60, Fat: 15},
		}},
		LastModified: time.Date(2025, 1, 10, 13, 0, 0, 0, time.UTC),
	}
	fx.api.mu.Lock()
	fx.api.syncErr = common.ErrUnavailable
	fx.api.days = map[string]*api.DaySnapshot{date: serverDay}
	fx.api.mu.Unlock()

	require.NoError(t, fx.store.RecalculateAndPersist(ctx, date))

	day := fx.store.Day(date)
	assert.True(t, day.Synced, "server truth adopted after failed explicit push")
	assert.Equal(t, 500.0, day.Totals.Calories)
	require.Len(t, day.Entries, 1)
	assert.Equal(t, "srv-9", day.Entries[0].ServerID)
}

func TestFetchDay_NotFoundIsNoop(t *testing.T) {
	fx := newFixture(t)
	fx.login()
	ctx := context.Background()

	fx.api.mu.Lock()
	fx.api.dayErr = common.ErrNotFound
	fx.api.mu.Unlock()

	require.NoError(t, fx.store.FetchDay(ctx, "2025-01-10"))
	assert.Nil(t, fx.store.Day("2025-01-10"))
}

func TestFetchDay_TransportErrorPropagates(t *testing.T) {
	fx := newFixture(t)
	fx.login()
	ctx := context.Background()

	fx.api.mu.Lock()
	fx.api.dayErr = errors.New("connection reset")
	fx.api.mu.Unlock()

	assert.Error(t, fx.store.FetchDay(ctx, "2025-01-10"))
}
