// Package models defines the nutrition domain types shared by the stores,
// the API client, and local persistence.
package models

import (
	"bytes"
	"strconv"
	"strings"
)

// Macros holds calories plus the three macronutrients, per entry or per day.
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Add returns m with o added field-wise.
func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: m.Calories + o.Calories,
		Protein:  m.Protein + o.Protein,
		Carbs:    m.Carbs + o.Carbs,
		Fat:      m.Fat + o.Fat,
	}
}

// Sub returns m with o subtracted field-wise.
func (m Macros) Sub(o Macros) Macros {
	return Macros{
		Calories: m.Calories - o.Calories,
		Protein:  m.Protein - o.Protein,
		Carbs:    m.Carbs - o.Carbs,
		Fat:      m.Fat - o.Fat,
	}
}

// ClampNonNegative zeroes any field that went below zero. Totals must never
// be negative regardless of the mutation order that produced them.
func (m Macros) ClampNonNegative() Macros {
	clamp := func(v float64) float64 {
		if v < 0 {
			return 0
		}
		return v
	}
	return Macros{
		Calories: clamp(m.Calories),
		Protein:  clamp(m.Protein),
		Carbs:    clamp(m.Carbs),
		Fat:      clamp(m.Fat),
	}
}

// Amount is a macro quantity tolerant of sloppy upstream encodings: JSON
// numbers, numeric strings ("95", "0.5"), and anything non-numeric coerces
// to zero. The coercion happens here, at the unmarshalling boundary, so the
// totals invariant holds unconditionally further in.
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(b), `"`))
	if s == "" || s == "null" {
		*a = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		*a = 0
		return nil
	}
	*a = Amount(v)
	return nil
}

// ParseAmount coerces a free-form string to a non-negative number, returning
// zero for anything that does not parse.
func ParseAmount(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
