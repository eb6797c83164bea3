// Package config assembles runtime settings for macroledger.
//
// Sources are applied in order, later ones winning: built-in defaults, a
// .env file / environment variables, a TOML config file (path via -c or
// -config), and finally command-line flags.
package config

import "time"

// Config holds runtime settings for the macroledger CLI.
type Config struct {
	// APIBaseURL is the base URL of the nutrition backend.
	APIBaseURL string

	// DatabasePath is the local sqlite file holding persisted ledger days.
	DatabasePath string

	// LogLevel is one of debug/info/warn/error.
	LogLevel string

	// SyncDebounce is the coalescing window for mutation-triggered syncs.
	SyncDebounce time.Duration

	// RequestTimeout bounds every API request.
	RequestTimeout time.Duration

	// HistoryTTL and AnalyticsTTL bound how long the read-through fetch
	// caches serve identical queries without hitting the server.
	HistoryTTL   time.Duration
	AnalyticsTTL time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080"
	c.DatabasePath = "macroledger.db"
	c.LogLevel = "info"
	c.SyncDebounce = 800 * time.Millisecond
	c.RequestTimeout = 5 * time.Second
	c.HistoryTTL = 2 * time.Minute
	c.AnalyticsTTL = 5 * time.Minute
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the environment, a TOML file (if present) and command-line flags.
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseToml(cfg)
	parseFlags(cfg)
	return cfg
}
