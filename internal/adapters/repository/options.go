// Package repository defines the watchlist store interface and errors.
package repository

import "time"

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithRefreshInterval sets the interval for background gauge refreshes.
func WithRefreshInterval(interval time.Duration) Option {
	return func(s *TreapStore) {
		if interval > 0 {
			s.refreshInterval = interval
		}
	}
}
