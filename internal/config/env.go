package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with values from the process environment, after
// loading a .env file when one exists in the working directory. A missing
// .env is not an error.
//
// Recognized variables:
//
//	MACROLEDGER_API_URL        base URL of the backend
//	MACROLEDGER_DB             sqlite database path
//	MACROLEDGER_LOG_LEVEL      debug/info/warn/error
//	MACROLEDGER_SYNC_DEBOUNCE  duration string, e.g. "800ms"
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("MACROLEDGER_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("MACROLEDGER_DB"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("MACROLEDGER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("MACROLEDGER_SYNC_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SyncDebounce = d
		}
	}
}
