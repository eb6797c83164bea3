package nutrition

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/epavlova/macroledger/internal/api"
	"github.com/epavlova/macroledger/internal/common"
	"github.com/epavlova/macroledger/internal/models"
)

// scheduleSync arms the debounced trigger. Rapid successive mutations
// collapse into a single trailing sync pass.
func (s *Store) scheduleSync() {
	s.debounce.Trigger()
}

// SyncNow runs a sync pass immediately, bypassing the debounce window.
// Returns common.ErrSyncInProgress when a pass is already running.
func (s *Store) SyncNow(ctx context.Context) error {
	return s.syncPass(ctx)
}

// IsSyncing reports whether a sync pass is currently running.
func (s *Store) IsSyncing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncing
}

// syncPass pushes every dirty day that is not already mid-flight. A single
// syncing flag prevents overlapping sweeps; the per-date in-flight set
// additionally guards the date-level race between a sweep and an explicit
// single-day push.
func (s *Store) syncPass(ctx context.Context) error {
	if _, err := s.deps.Session.Token(); err != nil {
		// Unauthenticated state is expected, not an error.
		return nil
	}

	s.mu.Lock()
	if s.syncing {
		s.mu.Unlock()
		return common.ErrSyncInProgress
	}
	s.syncing = true
	candidates := make([]string, 0, len(s.days))
	for date, day := range s.days {
		if !day.Synced {
			candidates = append(candidates, date)
		}
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.syncing = false
		s.mu.Unlock()
	}()

	for _, date := range candidates {
		snapshot, ok := s.beginPush(date)
		if !ok {
			continue
		}
		err := s.pushDay(ctx, snapshot)
		s.endPush(date)

		if err != nil {
			// The day stays dirty and retries on the next trigger.
			s.deps.Log.Warn(ctx, "day push failed, will retry", "date", date, "error", err)
		}
	}

	return nil
}

// beginPush claims date for pushing. It fails when the date is already
// mid-flight or no longer dirty, returning a snapshot otherwise.
func (s *Store) beginPush(date string) (*models.DailyLedger, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inflight[date]; busy {
		return nil, false
	}
	day, ok := s.days[date]
	if !ok || day.Synced {
		return nil, false
	}
	s.inflight[date] = struct{}{}
	return day.Clone(), true
}

func (s *Store) endPush(date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, date)
}

// pushDay sends one day's snapshot and adopts the server's response. The
// server is the tie-breaker of record once a push succeeds: its
// lastModified, and its canonical entries when present, overwrite local
// speculative values.
//
// Adoption is guarded against mutations that landed during the network
// round trip: when the live day no longer matches the pushed snapshot, only
// the confirmed server ids are folded in and the day stays dirty, so the
// next trigger pushes the superset instead of the stale response erasing it.
func (s *Store) pushDay(ctx context.Context, snapshot *models.DailyLedger) error {
	resp, err := s.deps.API.SyncDay(ctx, api.SyncDayRequest{
		Date:    snapshot.Date,
		Totals:  snapshot.Totals,
		Entries: snapshot.Entries,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	day, ok := s.days[snapshot.Date]
	if !ok {
		// Cleared mid-flight; drop the result.
		s.mu.Unlock()
		return nil
	}
	if !day.LastModified.Equal(snapshot.LastModified) {
		adoptServerIDs(day.Entries, resp.Entries)
		persisted := day.Clone()
		s.mu.Unlock()

		s.invalidateDerived(snapshot.Date)
		s.persistDay(ctx, persisted)
		return nil
	}
	day.Synced = true
	if !resp.LastModified.IsZero() {
		day.LastModified = resp.LastModified
	}
	if resp.Entries != nil {
		day.Entries = reconcileEntries(resp.Entries)
		day.Recalculate()
	}
	persisted := day.Clone()
	s.mu.Unlock()

	s.invalidateDerived(snapshot.Date)
	s.persistDay(ctx, persisted)
	return nil
}

// adoptServerIDs folds server-confirmed ids into the live entries by local
// identity, leaving everything else untouched.
func adoptServerIDs(live, confirmed []models.FoodEntry) {
	for _, c := range confirmed {
		if c.ServerID == "" || c.LocalID == "" {
			continue
		}
		for i := range live {
			if live[i].LocalID == c.LocalID {
				live[i].ServerID = c.ServerID
				break
			}
		}
	}
}

// FetchDay pulls date's server snapshot and adopts it wholesale, marking
// the day clean. A missing server record or an absent session is a no-op.
func (s *Store) FetchDay(ctx context.Context, date string) error {
	if !models.ValidDate(date) {
		return errInvalidDate(date)
	}

	snap, err := s.deps.API.GetDay(ctx, date)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) ||
			errors.Is(err, common.ErrNoSession) ||
			errors.Is(err, common.ErrTokenExpired) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	day := s.ensureDay(date)
	day.Totals = snap.Totals
	day.Entries = reconcileEntries(snap.Entries)
	day.Synced = true
	day.LastModified = snap.LastModified
	persisted := day.Clone()
	s.mu.Unlock()

	s.invalidateDerived(date)
	s.persistDay(ctx, persisted)
	return nil
}

// reconcileEntries makes server-canonical entries safe for local use: every
// entry keeps a stable local id even when the server only knows server ids.
func reconcileEntries(entries []models.FoodEntry) []models.FoodEntry {
	out := make([]models.FoodEntry, len(entries))
	copy(out, entries)
	for i := range out {
		if out[i].LocalID != "" {
			continue
		}
		if out[i].ServerID != "" {
			out[i].LocalID = out[i].ServerID
		} else {
			out[i].LocalID = uuid.NewString()
		}
	}
	return out
}
