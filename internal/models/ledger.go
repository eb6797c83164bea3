package models

import "time"

// DateLayout is the calendar-date key format for ledger days.
const DateLayout = "2006-01-02"

// Today returns the current date in ledger key format.
func Today() string {
	return time.Now().Format(DateLayout)
}

// ValidDate reports whether s is a well-formed YYYY-MM-DD key.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// DailyLedger is the per-date aggregate of food entries and running totals.
//
// Invariant: Totals always equals the field-wise sum over Entries. Mutations
// maintain it incrementally; Recalculate is the one full-recompute
// reconciliation path.
type DailyLedger struct {
	Date         string      `json:"date"`
	Totals       Macros      `json:"totalMacros"`
	Entries      []FoodEntry `json:"foodEntries"`
	// Synced is false while local mutations have not been confirmed by the
	// server.
	Synced       bool        `json:"synced"`
	LastModified time.Time   `json:"lastModified"`
}

// NewDailyLedger returns an empty, dirty ledger for date.
func NewDailyLedger(date string) *DailyLedger {
	return &DailyLedger{
		Date:         date,
		Entries:      []FoodEntry{},
		Synced:       false,
		LastModified: time.Now(),
	}
}

// EntryIndex returns the position of the entry matching id under either
// identity, or -1.
func (l *DailyLedger) EntryIndex(id string) int {
	for i, e := range l.Entries {
		if e.Matches(id) {
			return i
		}
	}
	return -1
}

// Recalculate recomputes Totals from scratch, self-healing any drift the
// incremental updates may have accumulated.
func (l *DailyLedger) Recalculate() {
	var sum Macros
	for _, e := range l.Entries {
		sum = sum.Add(e.Macros)
	}
	l.Totals = sum
}

// Clone returns a deep copy safe to hand out of the owning store.
func (l *DailyLedger) Clone() *DailyLedger {
	dup := *l
	dup.Entries = make([]FoodEntry, len(l.Entries))
	copy(dup.Entries, l.Entries)
	return &dup
}
