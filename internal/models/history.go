package models

import "time"

// MealHistoryEntry is one day's read-only aggregate from the history
// endpoint. Never locally mutated.
type MealHistoryEntry struct {
	Date       string    `json:"date"`
	Totals     Macros    `json:"totalMacros"`
	EntryCount int       `json:"entryCount"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NutritionAnalytics is the aggregate the analytics endpoint computes over a
// trailing day window.
type NutritionAnalytics struct {
	Days          int     `json:"days"`
	DaysTracked   int     `json:"daysTracked"`
	TotalEntries  int     `json:"totalEntries"`
	AverageMacros Macros  `json:"averageMacros"`
	// GoalAdherence is the share of tracked days that landed within the
	// calorie goal, 0..100.
	GoalAdherence float64 `json:"goalAdherence"`
}
