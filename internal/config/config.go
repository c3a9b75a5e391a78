// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file/env on top.
// - External errors must be wrapped via this package's sentinel errors.
package config

import "fmt"

// Default configuration values.
const (
	defaultAddr                  = ":8080"
	defaultQueueSize             = 100_000
	defaultWorkerCount           = 8
	defaultDedupeSize            = 100_000
	defaultWatchlistDefaultLimit = 10
	defaultWatchlistMaxLimit     = 1000
	defaultLedgerLabel           = "mocked test write"
	defaultLogLevel              = "info"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory screening queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of screening workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the request-ID idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// WatchlistDefaultLimit applies when GET /api/v1/watchlist omits limit.
	WatchlistDefaultLimit int `koanf:"watchlist_default_limit"`

	// WatchlistMaxLimit caps GET /api/v1/watchlist?limit.
	WatchlistMaxLimit int `koanf:"watchlist_max_limit"`

	// LedgerLabel is the advisory storage-medium string attached to
	// evaluation responses. It carries no computational meaning.
	LedgerLabel string `koanf:"ledger_label"`
}

// New creates a Config carrying the hard defaults. Load layers an
// optional YAML file and the environment on top of these.
func New() *Config {
	return &Config{
		LogLevel:              defaultLogLevel,
		Addr:                  defaultAddr,
		QueueSize:             defaultQueueSize,
		WorkerCount:           defaultWorkerCount,
		DedupeSize:            defaultDedupeSize,
		WatchlistDefaultLimit: defaultWatchlistDefaultLimit,
		WatchlistMaxLimit:     defaultWatchlistMaxLimit,
		LedgerLabel:           defaultLedgerLabel,
	}
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.DedupeSize <= 0:
		return fmt.Errorf("%w: dedupe_size must be positive", ErrInvalidConfig)
	case c.WatchlistDefaultLimit < 1:
		return fmt.Errorf("%w: watchlist_default_limit must be at least 1", ErrInvalidConfig)
	case c.WatchlistMaxLimit < c.WatchlistDefaultLimit:
		return fmt.Errorf("%w: watchlist_max_limit must not be below watchlist_default_limit", ErrInvalidConfig)
	}
	return nil
}
