package recipes

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epavlova/macroledger/internal/api"
	"github.com/epavlova/macroledger/internal/events"
	"github.com/epavlova/macroledger/internal/logging"
	"github.com/epavlova/macroledger/internal/models"
	"github.com/epavlova/macroledger/internal/session"
)

type fakeAPI struct {
	mu        sync.Mutex
	remote    []models.Recipe
	listErr   error
	listCalls int
	synced    [][]models.Recipe
	syncErr   error
	deleted   []string
	deleteErr error
}

var _ api.Client = (*fakeAPI)(nil)

func (f *fakeAPI) ListRecipes(ctx context.Context) ([]models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.remote, f.listErr
}

func (f *fakeAPI) SyncRecipes(ctx context.Context, rs []models.Recipe) ([]models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.syncErr != nil {
		return nil, f.syncErr
	}
	f.synced = append(f.synced, rs)
	out := make([]models.Recipe, len(rs))
	for i, r := range rs {
		r.ServerID = "srv-" + r.LocalID
		out[i] = r
		// The server's list reflects accepted recipes from now on.
		f.remote = append(f.remote, r)
	}
	return out, nil
}

func (f *fakeAPI) DeleteRecipe(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	kept := f.remote[:0]
	for _, r := range f.remote {
		if r.ServerID != id {
			kept = append(kept, r)
		}
	}
	f.remote = kept
	return nil
}

func (f *fakeAPI) GetDay(ctx context.Context, date string) (*api.DaySnapshot, error) {
	return nil, nil
}
func (f *fakeAPI) SyncDay(ctx context.Context, req api.SyncDayRequest) (*api.SyncDayResponse, error) {
	return nil, nil
}
func (f *fakeAPI) GetHistory(ctx context.Context, q api.HistoryQuery) ([]models.MealHistoryEntry, error) {
	return nil, nil
}
func (f *fakeAPI) GetAnalytics(ctx context.Context, days int) (*models.NutritionAnalytics, error) {
	return nil, nil
}

type fixture struct {
	store *Store
	api   *fakeAPI
	sess  *session.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	bus := events.NewBus()
	log := logging.NewDefault("error")
	sess := session.NewManager(bus, log)
	f := &fakeAPI{}

	store := NewStore(Deps{API: f, Session: sess, Bus: bus, Log: log},
		Config{DebounceWindow: 20 * time.Millisecond})
	t.Cleanup(store.Close)

	return &fixture{store: store, api: f, sess: sess}
}

func (fx *fixture) login() {
	fx.sess.SetUser(models.Profile{UserID: "u1"}, "tok")
	time.Sleep(10 * time.Millisecond)
}

func pancakes() Input {
	return Input{Name: "Pancakes", Servings: 4, Calories: 220, Protein: 6, Carbs: 28, Fat: 9}
}

func TestAdd_OptimisticAndDirty(t *testing.T) {
	fx := newFixture(t)

	r := fx.store.Add(context.Background(), pancakes())

	assert.NotEmpty(t, r.LocalID)
	assert.Empty(t, r.ServerID)
	assert.False(t, r.Synced)

	list, err := fx.store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Pancakes", list[0].Name)
	assert.Equal(t, 220.0, list[0].PerServing.Calories)
}

func TestDelete_UnknownIDIsNoop(t *testing.T) {
	fx := newFixture(t)
	fx.store.Add(context.Background(), pancakes())

	assert.False(t, fx.store.Delete(context.Background(), "missing"))

	list, _ := fx.store.List(context.Background())
	assert.Len(t, list, 1)
}

func TestSync_ConfirmsServerIdentity(t *testing.T) {
	fx := newFixture(t)
	fx.login()
	ctx := context.Background()

	r := fx.store.Add(ctx, pancakes())
	require.NoError(t, fx.store.SyncNow(ctx))

	list, err := fx.store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "srv-"+r.LocalID, list[0].ServerID)
	assert.Equal(t, r.LocalID, list[0].LocalID, "local identity survives confirmation")
	assert.True(t, list[0].Synced)
}

func TestSync_FailureKeepsRecipeDirty(t *testing.T) {
	fx := newFixture(t)
	fx.login()
	ctx := context.Background()

	fx.api.mu.Lock()
	fx.api.syncErr = errors.New("unavailable")
	fx.api.mu.Unlock()

	fx.store.Add(ctx, pancakes())
	require.NoError(t, fx.store.SyncNow(ctx))

	list, err := fx.store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Synced)

	fx.api.mu.Lock()
	fx.api.syncErr = nil
	fx.api.mu.Unlock()

	require.NoError(t, fx.store.SyncNow(ctx))
	list, _ = fx.store.List(ctx)
	assert.True(t, list[0].Synced)
}

func TestDelete_ServerKnownRecipePushesDeletion(t *testing.T) {
	fx := newFixture(t)
	fx.login()
	ctx := context.Background()

	r := fx.store.Add(ctx, pancakes())
	require.NoError(t, fx.store.SyncNow(ctx))

	assert.True(t, fx.store.Delete(ctx, "srv-"+r.LocalID))
	require.NoError(t, fx.store.SyncNow(ctx))

	fx.api.mu.Lock()
	deleted := append([]string(nil), fx.api.deleted...)
	fx.api.mu.Unlock()
	assert.Equal(t, []string{"srv-" + r.LocalID}, deleted)

	list, err := fx.store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestList_MergesRemoteWithLocalUnsynced(t *testing.T) {
	fx := newFixture(t)
	fx.login()
	ctx := context.Background()

	fx.api.mu.Lock()
	fx.api.remote = []models.Recipe{{ServerID: "srv-1", Name: "Soup"}}
	fx.api.mu.Unlock()

	fx.store.Add(ctx, pancakes())
	list, err := fx.store.List(ctx)
	require.NoError(t, err)

	require.Len(t, list, 2)
	assert.Equal(t, "Soup", list[0].Name)
	assert.True(t, list[0].Synced, "remote recipes come back clean")
	assert.Equal(t, "Pancakes", list[1].Name)
	assert.False(t, list[1].Synced)
}

func TestList_CachedWithinTTL(t *testing.T) {
	fx := newFixture(t)
	fx.login()
	ctx := context.Background()

	fx.api.mu.Lock()
	initial := fx.api.listCalls // onUserChanged warms the list once
	fx.api.mu.Unlock()

	_, err := fx.store.List(ctx)
	require.NoError(t, err)
	_, err = fx.store.List(ctx)
	require.NoError(t, err)

	fx.api.mu.Lock()
	calls := fx.api.listCalls
	fx.api.mu.Unlock()
	assert.LessOrEqual(t, calls-initial, 1, "repeat lists within the TTL hit the cache")
}

func TestList_FailureIsVisibleAndLocalDataSurvives(t *testing.T) {
	fx := newFixture(t)
	fx.login()
	ctx := context.Background()

	fx.store.Add(ctx, pancakes())

	fx.api.mu.Lock()
	fx.api.listErr = errors.New("gateway timeout")
	fx.api.mu.Unlock()

	list, err := fx.store.List(ctx)
	require.Error(t, err)
	assert.Equal(t, "gateway timeout", fx.store.ListError())
	assert.Len(t, list, 1, "local collection still readable on fetch failure")
}

func TestClear_ResetsCollection(t *testing.T) {
	fx := newFixture(t)
	fx.login()
	ctx := context.Background()

	fx.store.Add(ctx, pancakes())
	fx.sess.Clear()

	list, err := fx.store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, fx.store.ListError())
}
