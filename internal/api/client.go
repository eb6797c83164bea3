// Package api contains the client-side contract for the nutrition backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface): day
//     fetch, day sync, history/analytics range queries, and the sibling
//     recipe endpoints.
//  2. A concrete HTTP implementation (see HTTPClient) that attaches the
//     session bearer token to every request and maps HTTP status codes to
//     sentinel errors.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match
// with errors.Is: common.ErrUnavailable, common.ErrUnauthorized,
// common.ErrNotFound. Absent-session errors from the token provider pass
// through unchanged.
package api

import (
	"context"
	"time"

	"github.com/epavlova/macroledger/internal/models"
)

// DaySnapshot is the server's authoritative view of one ledger day.
type DaySnapshot struct {
	Date         string             `json:"date"`
	Totals       models.Macros      `json:"totalMacros"`
	Entries      []models.FoodEntry `json:"foodEntries"`
	LastModified time.Time          `json:"lastModified"`
}

// SyncDayRequest pushes one dirty day's full snapshot.
type SyncDayRequest struct {
	Date    string             `json:"date"`
	Totals  models.Macros      `json:"totalMacros"`
	Entries []models.FoodEntry `json:"foodEntries"`
}

// SyncDayResponse acknowledges a push. Entries, when present, is the
// server's canonical reconciled list and becomes the source of truth for
// ids.
type SyncDayResponse struct {
	LastModified time.Time          `json:"lastModified"`
	Entries      []models.FoodEntry `json:"foodEntries,omitempty"`
}

// HistoryQuery parameterizes the meal history endpoint.
type HistoryQuery struct {
	StartDate string
	EndDate   string
	Limit     int
}

// Client is the transport-agnostic contract with the nutrition backend.
type Client interface {
	GetDay(ctx context.Context, date string) (*DaySnapshot, error)
	SyncDay(ctx context.Context, req SyncDayRequest) (*SyncDayResponse, error)
	GetHistory(ctx context.Context, q HistoryQuery) ([]models.MealHistoryEntry, error)
	GetAnalytics(ctx context.Context, days int) (*models.NutritionAnalytics, error)

	ListRecipes(ctx context.Context) ([]models.Recipe, error)
	SyncRecipes(ctx context.Context, recipes []models.Recipe) ([]models.Recipe, error)
	DeleteRecipe(ctx context.Context, id string) error
}
