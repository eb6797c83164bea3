package models

import (
	"encoding/json"
	"time"
)

// Recipe is an item of the sibling recipe ledger: same two-phase identity
// and dirty tracking as FoodEntry, simpler lifecycle.
type Recipe struct {
	LocalID     string          `json:"localId"`
	ServerID    string          `json:"id,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Servings    float64         `json:"servings"`
	PerServing  Macros          `json:"perServing"`
	// SourceAnalysis carries the AI response of the food entry the recipe
	// was created from, when there was one.
	SourceAnalysis json.RawMessage `json:"sourceAnalysis,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	Synced         bool            `json:"synced"`
}

// ID returns the server id once confirmed, the local id before that.
func (r Recipe) ID() string {
	if r.ServerID != "" {
		return r.ServerID
	}
	return r.LocalID
}

// Matches reports whether id refers to this recipe under either identity.
func (r Recipe) Matches(id string) bool {
	return id != "" && (id == r.LocalID || id == r.ServerID)
}
