package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/epavlova/macroledger/internal/dbx"
	"github.com/epavlova/macroledger/internal/models"
)

// LedgerRepository persists ledger days across process restarts.
type LedgerRepository interface {
	// SaveDay upserts one day row.
	SaveDay(ctx context.Context, day *models.DailyLedger) error

	// LoadAll returns every persisted day keyed by date.
	LoadAll(ctx context.Context) (map[string]*models.DailyLedger, error)

	// DeleteAll wipes every day row (session end).
	DeleteAll(ctx context.Context) error
}

// SQLiteLedgerRepository implements LedgerRepository over a dbx.DBTX
// (either *sql.DB or *sql.Tx).
type SQLiteLedgerRepository struct {
	db dbx.DBTX
}

var _ LedgerRepository = (*SQLiteLedgerRepository)(nil)

func NewSQLiteLedgerRepository(db dbx.DBTX) *SQLiteLedgerRepository {
	return &SQLiteLedgerRepository{db: db}
}

// SaveDay upserts a day by date. Entries are stored as a JSON document, so
// additive entry-field changes never require a schema migration.
func (r *SQLiteLedgerRepository) SaveDay(ctx context.Context, day *models.DailyLedger) error {
	entries, err := json.Marshal(day.Entries)
	if err != nil {
		return fmt.Errorf("failed to encode entries: %w", err)
	}

	query := `INSERT INTO days (date, total_calories, total_protein, total_carbs, total_fat, entries, synced, last_modified)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(date) DO UPDATE SET total_calories = excluded.total_calories,
				total_protein = excluded.total_protein,
				total_carbs = excluded.total_carbs,
				total_fat = excluded.total_fat,
				entries = excluded.entries,
				synced = excluded.synced,
				last_modified = excluded.last_modified
	`
	synced := 0
	if day.Synced {
		synced = 1
	}
	_, err = r.db.ExecContext(ctx, query,
		day.Date, day.Totals.Calories, day.Totals.Protein, day.Totals.Carbs, day.Totals.Fat,
		string(entries), synced, day.LastModified.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to upsert day: %w", err)
	}
	return nil
}

// LoadAll returns all persisted days.
func (r *SQLiteLedgerRepository) LoadAll(ctx context.Context) (map[string]*models.DailyLedger, error) {
	query := `SELECT date, total_calories, total_protein, total_carbs, total_fat, entries, synced, last_modified FROM days`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select days: %w", err)
	}
	defer rows.Close()

	result := make(map[string]*models.DailyLedger)
	for rows.Next() {
		var (
			day        models.DailyLedger
			entriesDoc string
			synced     int
			modified   string
		)
		if err := rows.Scan(&day.Date, &day.Totals.Calories, &day.Totals.Protein,
			&day.Totals.Carbs, &day.Totals.Fat, &entriesDoc, &synced, &modified); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(entriesDoc), &day.Entries); err != nil {
			return nil, fmt.Errorf("failed to decode entries for %s: %w", day.Date, err)
		}
		day.Synced = synced == 1
		if t, err := time.Parse(time.RFC3339Nano, modified); err == nil {
			day.LastModified = t
		}
		result[day.Date] = &day
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteAll wipes the days table.
func (r *SQLiteLedgerRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM days`); err != nil {
		return fmt.Errorf("failed to clear days: %w", err)
	}
	return nil
}
