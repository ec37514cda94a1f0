// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - External errors must be wrapped via this package's error kinds.
package config

// Store backend names accepted in the `store` field.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":5000".
	Addr string `koanf:"addr"`

	// Store selects the record store backend: memory or sqlite.
	Store string `koanf:"store"`

	// SQLitePath is the database file used when Store is sqlite.
	SQLitePath string `koanf:"sqlite_path"`

	// HistoryLimit caps GET /api/history.
	HistoryLimit int `koanf:"history_limit"`

	// ParticipantHistoryLimit caps GET /api/users/{id}/history.
	ParticipantHistoryLimit int `koanf:"participant_history_limit"`

	// HubBuffer sets the per-subscriber snapshot buffer depth.
	HubBuffer int `koanf:"hub_buffer"`

	// RateLimitRPS and RateLimitBurst shape the per-client limiter on /api/.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	// AllowedOrigins lists origins permitted by CORS and the websocket
	// upgrade check. An entry of "*" allows any origin.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// Seed controls whether an empty store is populated with the
	// default roster on startup.
	Seed bool `koanf:"seed"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		Addr:                    ":5000",
		Store:                   StoreMemory,
		SQLitePath:              "tally.db",
		HistoryLimit:            50,
		ParticipantHistoryLimit: 20,
		HubBuffer:               8,
		RateLimitRPS:            5,
		RateLimitBurst:          10,
		AllowedOrigins:          []string{"http://localhost:3000"},
		Seed:                    true,
	}
}
