package nutrition

import (
	"math"

	"github.com/epavlova/macroledger/internal/cache"
	"github.com/epavlova/macroledger/internal/models"
)

// CurrentDayNutrition returns the ledger for the active date, or a zeroed
// placeholder when none exists yet. The result is a cache-backed snapshot:
// callers must treat it as read-only, and repeat calls with unchanged state
// return the identical value.
func (s *Store) CurrentDayNutrition() *models.DailyLedger {
	s.mu.Lock()
	date := s.currentDate
	day, has := s.days[date]
	var modified int64
	if has {
		modified = day.LastModified.UnixNano()
	}
	s.mu.Unlock()

	deps := map[string]any{
		"currentDate":  date,
		"hasData":      has,
		"lastModified": modified,
	}
	return cache.GetOrCompute(s.cache, nameCurrentDay, deps, func() *models.DailyLedger {
		s.mu.Lock()
		defer s.mu.Unlock()
		if day, ok := s.days[date]; ok {
			return day.Clone()
		}
		placeholder := models.NewDailyLedger(date)
		placeholder.Synced = true
		return placeholder
	})
}

// Day returns a read-only snapshot of date's ledger, nil when none exists.
// Uncached; UI reads go through CurrentDayNutrition.
func (s *Store) Day(date string) *models.DailyLedger {
	s.mu.Lock()
	defer s.mu.Unlock()
	if day, ok := s.days[date]; ok {
		return day.Clone()
	}
	return nil
}

// Goals returns the profile's macro targets, or the default goals constant
// when the profile carries none.
func (s *Store) Goals() models.Goals {
	var profileGoals *models.Goals
	if p := s.deps.Session.Profile(); p != nil {
		profileGoals = p.Goals
	}

	deps := map[string]any{"profileGoals": profileGoals}
	if profileGoals != nil {
		deps["profileGoals"] = *profileGoals
	}
	return cache.GetOrCompute(s.cache, nameGoals, deps, func() models.Goals {
		if profileGoals != nil {
			return *profileGoals
		}
		return models.DefaultGoals()
	})
}

// RemainingMacros returns max(0, goal − consumed) per macro for date (""
// means the active date). With no ledger for the date the goals come back
// unchanged.
func (s *Store) RemainingMacros(date string) *models.Macros {
	date, consumed := s.consumedFor(date)
	goals := s.Goals()

	deps := map[string]any{"consumed": consumed, "goals": goals}
	return cache.GetOrCompute(s.cache, nameRemaining(date), deps, func() *models.Macros {
		return &models.Macros{
			Calories: math.Max(0, goals.Calories-consumed.Calories),
			Protein:  math.Max(0, goals.Protein-consumed.Protein),
			Carbs:    math.Max(0, goals.Carbs-consumed.Carbs),
			Fat:      math.Max(0, goals.Fat-consumed.Fat),
		}
	})
}

// ProgressPercentages returns round(consumed/goal·100) per macro, clamped
// to [0,100], for date ("" means the active date). All zero with no ledger.
func (s *Store) ProgressPercentages(date string) *models.MacroProgress {
	date, consumed := s.consumedFor(date)
	goals := s.Goals()

	deps := map[string]any{"consumed": consumed, "goals": goals}
	return cache.GetOrCompute(s.cache, nameProgress(date), deps, func() *models.MacroProgress {
		return &models.MacroProgress{
			Calories: progressPct(consumed.Calories, goals.Calories),
			Protein:  progressPct(consumed.Protein, goals.Protein),
			Carbs:    progressPct(consumed.Carbs, goals.Carbs),
			Fat:      progressPct(consumed.Fat, goals.Fat),
		}
	})
}

func (s *Store) consumedFor(date string) (string, models.Macros) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if date == "" {
		date = s.currentDate
	}
	if day, ok := s.days[date]; ok {
		return date, day.Totals
	}
	return date, models.Macros{}
}

func progressPct(consumed, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	pct := math.Round(consumed / goal * 100)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
