// Package nutrition implements the client-side nutrition state container:
// an optimistic local ledger of per-day food entries with cached derived
// getters and a debounced, conflict-tolerant sync protocol against the
// remote API.
//
// # Overview
//
// The Store owns the daily ledger collection exclusively; callers read
// through getters and dispatch mutation calls, never touching entries
// directly. Mutations are synchronous and atomic; network sync always
// happens on a separate goroutine, scheduled through a coalescing
// debouncer. A per-date in-flight set plus a single syncing flag give
// at-most-one-active-push-per-date and at-least-one-eventual-push-per-
// dirty-day.
//
// # Error Handling
//
// Push failures leave the day dirty and are retried on the next trigger;
// read failures reset the exposed data and set a user-visible error string.
// An absent session turns every network operation into a guarded no-op;
// local mutations still apply.
package nutrition

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/epavlova/macroledger/internal/api"
	"github.com/epavlova/macroledger/internal/cache"
	"github.com/epavlova/macroledger/internal/common"
	"github.com/epavlova/macroledger/internal/events"
	"github.com/epavlova/macroledger/internal/logging"
	"github.com/epavlova/macroledger/internal/models"
	"github.com/epavlova/macroledger/internal/schedule"
	"github.com/epavlova/macroledger/internal/session"
	"github.com/epavlova/macroledger/internal/storage"
)

// Cache names for the derived getters and fetch caches. Each mutation's
// invalidation list below is part of its contract.
const (
	nameCurrentDay = "currentDayNutrition"
	nameGoals      = "userGoals"
	nameHistory    = "mealHistory"
	nameAnalytics  = "nutritionAnalytics"
)

func nameRemaining(date string) string { return "remainingMacros:" + date }
func nameProgress(date string) string  { return "progressPercentages:" + date }

// Deps are the collaborators a Store needs. Ledgers and Meta may be nil, in
// which case nothing is persisted locally.
type Deps struct {
	API     api.Client
	Session *session.Manager
	Bus     *events.Bus
	Ledgers storage.LedgerRepository
	Meta    storage.MetadataRepository
	Log     logging.Logger
}

// Config tunes the store's timing behavior. Zero values fall back to
// defaults: 800ms debounce, 2m history TTL, 5m analytics TTL.
type Config struct {
	DebounceWindow time.Duration
	HistoryTTL     time.Duration
	AnalyticsTTL   time.Duration
}

func (c *Config) applyDefaults() {
	if c.DebounceWindow <= 0 {
		c.DebounceWindow = 800 * time.Millisecond
	}
	if c.HistoryTTL <= 0 {
		c.HistoryTTL = 2 * time.Minute
	}
	if c.AnalyticsTTL <= 0 {
		c.AnalyticsTTL = 5 * time.Minute
	}
}

// Store is the nutrition state container. Safe for concurrent use.
type Store struct {
	deps Deps
	cfg  Config

	cache    *cache.Cache
	debounce *schedule.Debouncer

	mu          sync.Mutex
	days        map[string]*models.DailyLedger
	currentDate string
	inflight    map[string]struct{}
	syncing     bool

	history          []models.MealHistoryEntry
	historyErr       string
	loadingHistory   bool
	analytics        *models.NutritionAnalytics
	analyticsErr     string
	loadingAnalytics bool
}

// NewStore builds a Store and registers its event subscriptions on the bus.
func NewStore(deps Deps, cfg Config) *Store {
	cfg.applyDefaults()

	s := &Store{
		deps:        deps,
		cfg:         cfg,
		cache:       cache.New(),
		days:        make(map[string]*models.DailyLedger),
		inflight:    make(map[string]struct{}),
		currentDate: models.Today(),
	}
	s.debounce = schedule.NewDebouncer(cfg.DebounceWindow, func() {
		if err := s.syncPass(context.Background()); err != nil {
			s.deps.Log.Debug(context.Background(), "debounced sync pass skipped", "reason", err)
			// A refused pass re-arms so dirty days are not stranded behind
			// the one that was running.
			if errors.Is(err, common.ErrSyncInProgress) {
				s.scheduleSync()
			}
		}
	})

	if deps.Bus != nil {
		deps.Bus.Subscribe(events.UserCleared, s.Clear)
		deps.Bus.Subscribe(events.UserChanged, s.onUserChanged)
		deps.Bus.Subscribe(events.GoalsChanged, s.onGoalsChanged)
	}

	return s
}

// Close stops the sync scheduler. Pending pushes are abandoned; dirty days
// stay dirty in persisted state and are retried after the next start.
func (s *Store) Close() {
	s.debounce.Stop()
}

// CurrentDate returns the active ledger date.
func (s *Store) CurrentDate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentDate
}

// SetCurrentDate switches the active ledger date.
func (s *Store) SetCurrentDate(date string) error {
	if !models.ValidDate(date) {
		return errInvalidDate(date)
	}

	s.mu.Lock()
	s.currentDate = date
	s.mu.Unlock()

	s.cache.Invalidate(nameCurrentDay)
	s.persistCurrentDate(context.Background(), date)
	return nil
}

// Rehydrate merges persisted days and the persisted current date into the
// in-memory state. Days already present in memory win; a missing database
// is not an error.
func (s *Store) Rehydrate(ctx context.Context) error {
	if s.deps.Ledgers == nil {
		return nil
	}

	persisted, err := s.deps.Ledgers.LoadAll(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	for date, day := range persisted {
		if _, ok := s.days[date]; !ok {
			s.days[date] = day
		}
	}
	s.mu.Unlock()

	if s.deps.Meta != nil {
		if date, err := s.deps.Meta.Get(ctx, "current_date"); err == nil && models.ValidDate(date) {
			s.mu.Lock()
			s.currentDate = date
			s.mu.Unlock()
		}
	}

	s.cache.Invalidate()
	s.deps.Log.Info(ctx, "rehydrated ledger", "days", len(persisted))
	return nil
}

// Clear resets every ledger, cache, fetcher state and sync flag to the
// initial empty state, and wipes persisted days. Runs on UserCleared.
func (s *Store) Clear() {
	s.mu.Lock()
	s.days = make(map[string]*models.DailyLedger)
	s.inflight = make(map[string]struct{})
	s.syncing = false
	s.currentDate = models.Today()
	s.history = nil
	s.historyErr = ""
	s.loadingHistory = false
	s.analytics = nil
	s.analyticsErr = ""
	s.loadingAnalytics = false
	s.mu.Unlock()

	s.cache.Invalidate()

	ctx := context.Background()
	if s.deps.Ledgers != nil {
		if err := s.deps.Ledgers.DeleteAll(ctx); err != nil {
			s.deps.Log.Warn(ctx, "failed to wipe persisted days", "error", err)
		}
	}
	if s.deps.Meta != nil {
		_ = s.deps.Meta.Delete(ctx, "current_date")
	}
}

func (s *Store) onUserChanged() {
	s.Clear()
	// Warm the new session's active day in the background.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.FetchDay(ctx, s.CurrentDate()); err != nil {
			s.deps.Log.Warn(ctx, "initial day fetch failed", "error", err)
		}
	}()
}

func (s *Store) onGoalsChanged() {
	s.mu.Lock()
	names := []string{nameGoals}
	for date := range s.days {
		names = append(names, nameRemaining(date), nameProgress(date))
	}
	names = append(names, nameRemaining(s.currentDate), nameProgress(s.currentDate))
	s.mu.Unlock()

	s.cache.Invalidate(names...)
}

// ensureDay returns the ledger for date, creating it lazily. Caller holds
// the lock.
func (s *Store) ensureDay(date string) *models.DailyLedger {
	day, ok := s.days[date]
	if !ok {
		day = models.NewDailyLedger(date)
		s.days[date] = day
	}
	return day
}

func (s *Store) invalidateDerived(date string) {
	s.cache.Invalidate(nameCurrentDay, nameRemaining(date), nameProgress(date))
}

// persistDay saves a snapshot of one day, best-effort: persistence failures
// are logged, never propagated into mutation paths.
func (s *Store) persistDay(ctx context.Context, day *models.DailyLedger) {
	if s.deps.Ledgers == nil || day == nil {
		return
	}
	if err := s.deps.Ledgers.SaveDay(ctx, day); err != nil {
		s.deps.Log.Warn(ctx, "failed to persist day", "date", day.Date, "error", err)
	}
}

func (s *Store) persistCurrentDate(ctx context.Context, date string) {
	if s.deps.Meta == nil {
		return
	}
	if err := s.deps.Meta.Set(ctx, "current_date", date); err != nil {
		s.deps.Log.Warn(ctx, "failed to persist current date", "error", err)
	}
}
