package models

import (
	"encoding/json"
	"time"
)

// AnalysisType classifies how an entry's macros were derived.
type AnalysisType string

const (
	AnalysisTypeImage AnalysisType = "image"
	AnalysisTypeText  AnalysisType = "text"
)

// FoodEntry is one recorded consumption event.
//
// Identity is two-phase: LocalID is assigned on creation and never changes;
// ServerID stays empty until a sync push is confirmed, at which point the
// server-assigned id is adopted. UI references held across an in-flight push
// therefore never point at a stale id.
type FoodEntry struct {
	LocalID      string          `json:"localId"`
	ServerID     string          `json:"id,omitempty"`
	FoodName     string          `json:"foodName"`
	Quantity     string          `json:"quantity"`
	Macros       Macros          `json:"macros"`
	AnalysisType AnalysisType    `json:"analysisType"`
	ImageURL     string          `json:"imageUrl,omitempty"`
	// AnalysisData retains the full AI response for later display or recipe
	// creation; the stores treat it as opaque.
	AnalysisData json.RawMessage `json:"analysisData,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// ID returns the server id once confirmed, the local id before that.
func (e FoodEntry) ID() string {
	if e.ServerID != "" {
		return e.ServerID
	}
	return e.LocalID
}

// Matches reports whether id refers to this entry under either identity.
func (e FoodEntry) Matches(id string) bool {
	return id != "" && (id == e.LocalID || id == e.ServerID)
}

// EntryInput carries the fields of a new entry as they arrive from upstream
// (AI analysis, forms). Macro fields use Amount so string-encoded numbers
// coerce instead of failing.
type EntryInput struct {
	FoodName     string          `json:"foodName"`
	Quantity     string          `json:"quantity"`
	Calories     Amount          `json:"calories"`
	Protein      Amount          `json:"protein"`
	Carbs        Amount          `json:"carbs"`
	Fat          Amount          `json:"fat"`
	AnalysisType AnalysisType    `json:"analysisType"`
	ImageURL     string          `json:"imageUrl,omitempty"`
	AnalysisData json.RawMessage `json:"analysisData,omitempty"`
}

// Macros returns the coerced, non-negative macro values of the input.
func (in EntryInput) Macros() Macros {
	return Macros{
		Calories: float64(in.Calories),
		Protein:  float64(in.Protein),
		Carbs:    float64(in.Carbs),
		Fat:      float64(in.Fat),
	}.ClampNonNegative()
}

// EntryPatch updates selected fields of an existing entry. Nil fields are
// left untouched.
type EntryPatch struct {
	FoodName *string `json:"foodName,omitempty"`
	Quantity *string `json:"quantity,omitempty"`
	Calories *Amount `json:"calories,omitempty"`
	Protein  *Amount `json:"protein,omitempty"`
	Carbs    *Amount `json:"carbs,omitempty"`
	Fat      *Amount `json:"fat,omitempty"`
}

// Apply overlays the patch onto e and returns the updated copy.
func (p EntryPatch) Apply(e FoodEntry) FoodEntry {
	if p.FoodName != nil {
		e.FoodName = *p.FoodName
	}
	if p.Quantity != nil {
		e.Quantity = *p.Quantity
	}
	if p.Calories != nil {
		e.Macros.Calories = float64(*p.Calories)
	}
	if p.Protein != nil {
		e.Macros.Protein = float64(*p.Protein)
	}
	if p.Carbs != nil {
		e.Macros.Carbs = float64(*p.Carbs)
	}
	if p.Fat != nil {
		e.Macros.Fat = float64(*p.Fat)
	}
	e.Macros = e.Macros.ClampNonNegative()
	return e
}
