package models

// Goals holds the daily target values the derived getters measure against.
type Goals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// DefaultGoals applies when the user's profile carries no explicit macros.
// Fat defaults to 80g.
func DefaultGoals() Goals {
	return Goals{Calories: 2000, Protein: 150, Carbs: 200, Fat: 80}
}

// Profile is the slice of the user profile the nutrition stores care about.
// Goals is nil when the user never set explicit targets.
type Profile struct {
	UserID string `json:"userId"`
	Goals  *Goals `json:"goals,omitempty"`
}

// MacroProgress is a per-macro percentage or remainder, produced by the
// derived getters.
type MacroProgress struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}
