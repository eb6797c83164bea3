package config

import (
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/epavlova/macroledger/internal/flagx"
)

// TomlConfig is a DTO used exclusively for TOML unmarshalling. Durations are
// strings like "800ms" and are parsed into time.Duration when copied into
// the runtime Config.
type TomlConfig struct {
	APIBaseURL     string `toml:"api_base_url"`
	DatabasePath   string `toml:"database_path"`
	LogLevel       string `toml:"log_level"`
	SyncDebounce   string `toml:"sync_debounce"`
	RequestTimeout string `toml:"request_timeout"`
	HistoryTTL     string `toml:"history_ttl"`
	AnalyticsTTL   string `toml:"analytics_ttl"`
}

// parseToml overlays Config with values loaded from a TOML file. The file
// path comes from the -c/-config flags; when neither is given, nothing is
// loaded. Unset fields in the file leave the current value untouched.
func parseToml(cfg *Config) {
	path := flagx.ConfigFileFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var tc TomlConfig
	if err := toml.Unmarshal(data, &tc); err != nil {
		panic(err)
	}

	applyToml(cfg, tc)
}

func applyToml(cfg *Config, tc TomlConfig) {
	if tc.APIBaseURL != "" {
		cfg.APIBaseURL = tc.APIBaseURL
	}
	if tc.DatabasePath != "" {
		cfg.DatabasePath = tc.DatabasePath
	}
	if tc.LogLevel != "" {
		cfg.LogLevel = tc.LogLevel
	}
	setDuration(&cfg.SyncDebounce, tc.SyncDebounce)
	setDuration(&cfg.RequestTimeout, tc.RequestTimeout)
	setDuration(&cfg.HistoryTTL, tc.HistoryTTL)
	setDuration(&cfg.AnalyticsTTL, tc.AnalyticsTTL)
}

func setDuration(dst *time.Duration, s string) {
	if s == "" {
		return
	}
	if d, err := time.ParseDuration(s); err == nil {
		*dst = d
	}
}
