// Package recipes implements the recipe ledger: a flat collection that
// follows the same optimistic local-first discipline as the daily
// nutrition ledger, with a simpler lifecycle (create and delete, no
// per-day bucketing).
package recipes

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/epavlova/macroledger/internal/api"
	"github.com/epavlova/macroledger/internal/cache"
	"github.com/epavlova/macroledger/internal/common"
	"github.com/epavlova/macroledger/internal/events"
	"github.com/epavlova/macroledger/internal/logging"
	"github.com/epavlova/macroledger/internal/models"
	"github.com/epavlova/macroledger/internal/schedule"
	"github.com/epavlova/macroledger/internal/session"
)

const nameRecipeList = "recipeList"

// Deps are the collaborators a Store needs.
type Deps struct {
	API     api.Client
	Session *session.Manager
	Bus     *events.Bus
	Log     logging.Logger
}

// Config tunes timing. Zero values fall back to 800ms debounce and a
// 5m list TTL.
type Config struct {
	DebounceWindow time.Duration
	ListTTL        time.Duration
}

func (c *Config) applyDefaults() {
	if c.DebounceWindow <= 0 {
		c.DebounceWindow = 800 * time.Millisecond
	}
	if c.ListTTL <= 0 {
		c.ListTTL = 5 * time.Minute
	}
}

// Input is the payload for creating a recipe. Numeric fields pass through
// the same coercion boundary as food entry input.
type Input struct {
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Servings       models.Amount `json:"servings"`
	Calories       models.Amount `json:"calories"`
	Protein        models.Amount `json:"protein"`
	Carbs          models.Amount `json:"carbs"`
	Fat            models.Amount `json:"fat"`
	SourceAnalysis []byte        `json:"sourceAnalysis,omitempty"`
}

// Store is the recipe state container. Safe for concurrent use.
type Store struct {
	deps Deps
	cfg  Config

	cache    *cache.Cache
	debounce *schedule.Debouncer

	mu      sync.Mutex
	recipes []models.Recipe
	deletes map[string]struct{} // server ids removed locally, pending push
	syncing bool
	listErr string
	loading bool
}

// NewStore builds a Store and registers its event subscriptions.
func NewStore(deps Deps, cfg Config) *Store {
	cfg.applyDefaults()

	s := &Store{
		deps:    deps,
		cfg:     cfg,
		cache:   cache.New(),
		deletes: make(map[string]struct{}),
	}
	s.debounce = schedule.NewDebouncer(cfg.DebounceWindow, func() {
		if err := s.syncPass(context.Background()); err != nil {
			s.deps.Log.Debug(context.Background(), "debounced recipe sync skipped", "reason", err)
		}
	})

	if deps.Bus != nil {
		deps.Bus.Subscribe(events.UserCleared, s.Clear)
		deps.Bus.Subscribe(events.UserChanged, s.onUserChanged)
	}

	return s
}

// Close stops the sync scheduler.
func (s *Store) Close() {
	s.debounce.Stop()
}

// Add appends a recipe optimistically and schedules a sync push.
func (s *Store) Add(ctx context.Context, input Input) models.Recipe {
	r := models.Recipe{
		LocalID:     uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		Servings:    float64(input.Servings),
		PerServing: models.Macros{
			Calories: float64(input.Calories),
			Protein:  float64(input.Protein),
			Carbs:    float64(input.Carbs),
			Fat:      float64(input.Fat),
		},
		SourceAnalysis: input.SourceAnalysis,
		CreatedAt:      time.Now(),
	}

	s.mu.Lock()
	s.recipes = append(s.recipes, r)
	s.mu.Unlock()

	s.cache.Invalidate(nameRecipeList)
	s.scheduleSync()
	return r
}

// Delete removes the recipe with id under either identity. Server-known
// recipes are queued for remote deletion; unknown ids are a no-op.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	idx := -1
	for i, r := range s.recipes {
		if r.Matches(id) {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	removed := s.recipes[idx]
	s.recipes = append(s.recipes[:idx], s.recipes[idx+1:]...)
	if removed.ServerID != "" {
		s.deletes[removed.ServerID] = struct{}{}
	}
	s.mu.Unlock()

	s.cache.Invalidate(nameRecipeList)
	s.scheduleSync()
	return true
}

// List returns the recipe collection. With a session the server list is
// fetched through a TTL cache and merged with local unsynced recipes;
// without one only the local collection comes back.
func (s *Store) List(ctx context.Context) ([]models.Recipe, error) {
	if !s.hasSession() {
		return s.localSnapshot(), nil
	}

	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	deps := map[string]any{"user": s.deps.Session.UserID()}
	remote, err := cache.GetOrComputeTTL(s.cache, nameRecipeList, deps, s.cfg.ListTTL,
		func() ([]models.Recipe, error) {
			return s.deps.API.ListRecipes(ctx)
		})

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.listErr = err.Error()
	} else {
		s.listErr = ""
		s.adoptRemoteLocked(remote)
	}
	out := s.snapshotLocked()
	s.mu.Unlock()

	if err != nil {
		s.deps.Log.Warn(ctx, "recipe list fetch failed", "error", err)
		return out, err
	}
	return out, nil
}

// ListError returns the last list fetch failure, "" on success.
func (s *Store) ListError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listErr
}

// IsLoading reports whether a list fetch is underway.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// IsSyncing reports whether a sync pass is running.
func (s *Store) IsSyncing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncing
}

// Clear resets every recipe and pending deletion. Used on logout.
func (s *Store) Clear() {
	s.mu.Lock()
	s.recipes = nil
	s.deletes = make(map[string]struct{})
	s.listErr = ""
	s.mu.Unlock()

	s.cache.Invalidate()
}

// SyncNow runs a sync pass immediately.
func (s *Store) SyncNow(ctx context.Context) error {
	return s.syncPass(ctx)
}

func (s *Store) scheduleSync() {
	s.debounce.Trigger()
}

func (s *Store) onUserChanged() {
	s.Clear()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := s.List(ctx); err != nil {
			s.deps.Log.Warn(ctx, "initial recipe list fetch failed", "error", err)
		}
	}()
}

// syncPass pushes unsynced recipes and pending deletions. Without a
// session it is a quiet no-op; a concurrent pass returns
// common.ErrSyncInProgress.
func (s *Store) syncPass(ctx context.Context) error {
	if !s.hasSession() {
		return nil
	}

	s.mu.Lock()
	if s.syncing {
		s.mu.Unlock()
		return common.ErrSyncInProgress
	}
	s.syncing = true
	var dirty []models.Recipe
	for _, r := range s.recipes {
		if !r.Synced {
			dirty = append(dirty, r)
		}
	}
	pending := make([]string, 0, len(s.deletes))
	for id := range s.deletes {
		pending = append(pending, id)
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.syncing = false
		s.mu.Unlock()
	}()

	if len(dirty) > 0 {
		confirmed, err := s.deps.API.SyncRecipes(ctx, dirty)
		if err != nil {
			s.deps.Log.Warn(ctx, "recipe push failed, will retry", "error", err)
		} else {
			s.mu.Lock()
			s.confirmLocked(confirmed)
			s.mu.Unlock()
			s.cache.Invalidate(nameRecipeList)
		}
	}

	for _, id := range pending {
		if err := s.deps.API.DeleteRecipe(ctx, id); err != nil {
			s.deps.Log.Warn(ctx, "recipe deletion failed, will retry", "id", id, "error", err)
			continue
		}
		s.mu.Lock()
		delete(s.deletes, id)
		s.mu.Unlock()
	}

	return nil
}

// confirmLocked adopts server confirmations: each confirmed recipe is
// matched by local id and gains its server id and clean state.
func (s *Store) confirmLocked(confirmed []models.Recipe) {
	for _, c := range confirmed {
		for i := range s.recipes {
			if s.recipes[i].LocalID != c.LocalID {
				continue
			}
			if c.ServerID != "" {
				s.recipes[i].ServerID = c.ServerID
			}
			s.recipes[i].Synced = true
			break
		}
	}
}

// adoptRemoteLocked replaces the synced portion of the collection with the
// server's canonical list, keeping local unsynced recipes and dropping
// anything the user deleted locally but has not pushed yet.
func (s *Store) adoptRemoteLocked(remote []models.Recipe) {
	merged := make([]models.Recipe, 0, len(remote)+len(s.recipes))
	for _, r := range remote {
		if _, deleted := s.deletes[r.ServerID]; deleted {
			continue
		}
		if r.LocalID == "" {
			r.LocalID = r.ServerID
		}
		r.Synced = true
		merged = append(merged, r)
	}
	for _, r := range s.recipes {
		if !r.Synced {
			merged = append(merged, r)
		}
	}
	s.recipes = merged
}

func (s *Store) localSnapshot() []models.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() []models.Recipe {
	out := make([]models.Recipe, len(s.recipes))
	copy(out, s.recipes)
	return out
}

func (s *Store) hasSession() bool {
	_, err := s.deps.Session.Token()
	return err == nil
}
