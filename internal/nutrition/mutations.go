package nutrition

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/epavlova/macroledger/internal/common"
	"github.com/epavlova/macroledger/internal/models"
)

func errInvalidDate(date string) error {
	return fmt.Errorf("%w: %q", common.ErrInvalidDate, date)
}

// AddEntry records a new consumption event on date, creating the ledger
// lazily. The entry gets a stable local id and the current timestamp; the
// day's totals grow by the entry's coerced macro values; the day turns
// dirty and a debounced sync is scheduled.
func (s *Store) AddEntry(ctx context.Context, date string, input models.EntryInput) (models.FoodEntry, error) {
	if !models.ValidDate(date) {
		return models.FoodEntry{}, errInvalidDate(date)
	}

	entry := models.FoodEntry{
		LocalID:      uuid.NewString(),
		FoodName:     input.FoodName,
		Quantity:     input.Quantity,
		Macros:       input.Macros(),
		AnalysisType: input.AnalysisType,
		ImageURL:     input.ImageURL,
		AnalysisData: input.AnalysisData,
		CreatedAt:    time.Now(),
	}

	s.mu.Lock()
	day := s.ensureDay(date)
	day.Entries = append(day.Entries, entry)
	day.Totals = day.Totals.Add(entry.Macros)
	day.Synced = false
	day.LastModified = time.Now()
	snapshot := day.Clone()
	s.mu.Unlock()

	s.invalidateDerived(date)
	s.persistDay(ctx, snapshot)
	s.scheduleSync()

	return entry, nil
}

// RemoveEntry deletes the entry matching entryID (local or server identity)
// from date's ledger, decrementing the totals by the removed entry's
// values. A no-op returning false when the ledger or entry is absent.
func (s *Store) RemoveEntry(ctx context.Context, date, entryID string) bool {
	s.mu.Lock()
	day, ok := s.days[date]
	if !ok {
		s.mu.Unlock()
		return false
	}
	idx := day.EntryIndex(entryID)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}

	removed := day.Entries[idx]
	day.Entries = append(day.Entries[:idx], day.Entries[idx+1:]...)
	day.Totals = day.Totals.Sub(removed.Macros).ClampNonNegative()
	day.Synced = false
	day.LastModified = time.Now()
	snapshot := day.Clone()
	s.mu.Unlock()

	s.invalidateDerived(date)
	s.persistDay(ctx, snapshot)
	s.scheduleSync()

	return true
}

// UpdateEntry overlays patch onto the entry matching entryID and adjusts
// the totals by the delta between the entry's pre-update and post-update
// values. No rescan of the whole ledger happens here; the entry itself is
// the basis. A no-op returning false when absent.
func (s *Store) UpdateEntry(ctx context.Context, date, entryID string, patch models.EntryPatch) bool {
	s.mu.Lock()
	day, ok := s.days[date]
	if !ok {
		s.mu.Unlock()
		return false
	}
	idx := day.EntryIndex(entryID)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}

	before := day.Entries[idx]
	after := patch.Apply(before)
	day.Entries[idx] = after
	day.Totals = day.Totals.Sub(before.Macros).Add(after.Macros).ClampNonNegative()
	day.Synced = false
	day.LastModified = time.Now()
	snapshot := day.Clone()
	s.mu.Unlock()

	s.invalidateDerived(date)
	s.persistDay(ctx, snapshot)
	s.scheduleSync()

	return true
}

// RecalculateAndPersist recomputes date's totals from scratch (self-healing
// any drift from the incremental updates) and immediately pushes the day,
// bypassing the debounce. On push failure the day is re-fetched from the
// server so local state resolves to server truth instead of retry-looping;
// the most recent local delta may be lost, which is the accepted trade.
func (s *Store) RecalculateAndPersist(ctx context.Context, date string) error {
	s.mu.Lock()
	day, ok := s.days[date]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	day.Recalculate()
	day.Synced = false
	day.LastModified = time.Now()
	snapshot := day.Clone()
	s.mu.Unlock()

	s.invalidateDerived(date)
	s.persistDay(ctx, snapshot)

	pushSnapshot, ok := s.beginPush(date)
	if !ok {
		// Another push for this date is mid-flight; it carries the state.
		return nil
	}
	err := s.pushDay(ctx, pushSnapshot)
	s.endPush(date)

	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrNoSession) || errors.Is(err, common.ErrTokenExpired) {
		return nil
	}

	s.deps.Log.Warn(ctx, "explicit day push failed, resolving to server state",
		"date", date, "error", err)
	if fetchErr := s.FetchDay(ctx, date); fetchErr != nil {
		return err
	}
	return nil
}
