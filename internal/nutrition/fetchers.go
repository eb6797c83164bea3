package nutrition

import (
	"context"
	"errors"

	"github.com/epavlova/macroledger/internal/api"
	"github.com/epavlova/macroledger/internal/cache"
	"github.com/epavlova/macroledger/internal/common"
	"github.com/epavlova/macroledger/internal/models"
)

// History returns the meal history for the query, read through a TTL cache
// keyed on the full parameter set. On failure the exposed data resets to
// empty and HistoryError is set: unlike write failures, a read failure has
// no local fallback of truth, so staleness is surfaced instead of hidden.
func (s *Store) History(ctx context.Context, q api.HistoryQuery) ([]models.MealHistoryEntry, error) {
	if !s.hasSession() {
		return nil, nil
	}

	s.mu.Lock()
	s.loadingHistory = true
	s.mu.Unlock()

	deps := map[string]any{
		"startDate": q.StartDate,
		"endDate":   q.EndDate,
		"limit":     q.Limit,
	}
	result, err := cache.GetOrComputeTTL(s.cache, nameHistory, deps, s.cfg.HistoryTTL,
		func() ([]models.MealHistoryEntry, error) {
			return s.deps.API.GetHistory(ctx, q)
		})

	s.mu.Lock()
	s.loadingHistory = false
	if err != nil {
		s.history = nil
		s.historyErr = err.Error()
	} else {
		s.history = result
		s.historyErr = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.deps.Log.Warn(ctx, "history fetch failed", "error", err)
		return nil, err
	}
	return result, nil
}

// Analytics returns the aggregate analytics over a trailing day window,
// read through a TTL cache. Failure semantics match History.
func (s *Store) Analytics(ctx context.Context, days int) (*models.NutritionAnalytics, error) {
	if !s.hasSession() {
		return nil, nil
	}

	s.mu.Lock()
	s.loadingAnalytics = true
	s.mu.Unlock()

	deps := map[string]any{"days": days}
	result, err := cache.GetOrComputeTTL(s.cache, nameAnalytics, deps, s.cfg.AnalyticsTTL,
		func() (*models.NutritionAnalytics, error) {
			return s.deps.API.GetAnalytics(ctx, days)
		})

	s.mu.Lock()
	s.loadingAnalytics = false
	if err != nil {
		s.analytics = nil
		s.analyticsErr = err.Error()
	} else {
		s.analytics = result
		s.analyticsErr = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.deps.Log.Warn(ctx, "analytics fetch failed", "error", err)
		return nil, err
	}
	return result, nil
}

// HistoryError returns the last history fetch failure, "" when the last
// fetch succeeded.
func (s *Store) HistoryError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyErr
}

// AnalyticsError returns the last analytics fetch failure.
func (s *Store) AnalyticsError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyticsErr
}

// IsLoadingHistory reports whether a history fetch is underway.
func (s *Store) IsLoadingHistory() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadingHistory
}

// IsLoadingAnalytics reports whether an analytics fetch is underway.
func (s *Store) IsLoadingAnalytics() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadingAnalytics
}

func (s *Store) hasSession() bool {
	_, err := s.deps.Session.Token()
	return !errors.Is(err, common.ErrNoSession) && !errors.Is(err, common.ErrTokenExpired)
}
