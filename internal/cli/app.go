// Package cli wires the macroledger components together and drives them
// from an interactive prompt.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/epavlova/macroledger/internal/api"
	"github.com/epavlova/macroledger/internal/config"
	"github.com/epavlova/macroledger/internal/events"
	"github.com/epavlova/macroledger/internal/logging"
	"github.com/epavlova/macroledger/internal/nutrition"
	"github.com/epavlova/macroledger/internal/recipes"
	"github.com/epavlova/macroledger/internal/session"
	"github.com/epavlova/macroledger/internal/storage"
)

// App is the composition root: it owns every long-lived component and the
// interactive loop on top of them.
type App struct {
	cfg *config.Config
	log logging.Logger

	db        *sql.DB
	bus       *events.Bus
	session   *session.Manager
	nutrition *nutrition.Store
	recipes   *recipes.Store

	reader *bufio.Reader
}

// NewApp builds the full component graph: sqlite, repositories, the API
// client, the session manager and both state stores, then rehydrates
// persisted ledger state.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logging.NewDefault(cfg.LogLevel)

	db, err := storage.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}

	bus := events.NewBus()
	sess := session.NewManager(bus, log)

	apiClient, err := api.NewHTTPClient(cfg.APIBaseURL, sess, cfg.RequestTimeout)
	if err != nil {
		db.Close()
		return nil, err
	}

	nutritionStore := nutrition.NewStore(nutrition.Deps{
		API:     apiClient,
		Session: sess,
		Bus:     bus,
		Ledgers: storage.NewSQLiteLedgerRepository(db),
		Meta:    storage.NewSQLiteMetadataRepository(db),
		Log:     log,
	}, nutrition.Config{
		DebounceWindow: cfg.SyncDebounce,
		HistoryTTL:     cfg.HistoryTTL,
		AnalyticsTTL:   cfg.AnalyticsTTL,
	})

	recipeStore := recipes.NewStore(recipes.Deps{
		API:     apiClient,
		Session: sess,
		Bus:     bus,
		Log:     log,
	}, recipes.Config{DebounceWindow: cfg.SyncDebounce})

	if err := nutritionStore.Rehydrate(ctx); err != nil {
		log.Warn(ctx, "rehydration failed, starting empty", "error", err)
	}

	return &App{
		cfg:       cfg,
		log:       log,
		db:        db,
		bus:       bus,
		session:   sess,
		nutrition: nutritionStore,
		recipes:   recipeStore,
		reader:    bufio.NewReader(os.Stdin),
	}, nil
}

// Run drives the interactive loop until the user quits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}

// Close flushes pending syncs and releases resources.
func (a *App) Close() {
	a.nutrition.Close()
	a.recipes.Close()
	if err := a.db.Close(); err != nil {
		a.log.Warn(context.Background(), "closing local store", "error", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.UserID() != ""
}

// status renders the prompt segment: user and active date.
func (a *App) status() string {
	user := a.session.UserID()
	if user == "" {
		user = "anonymous"
	}
	return fmt.Sprintf("%s %s", user, a.nutrition.CurrentDate())
}
