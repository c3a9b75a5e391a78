// Package screendrill floods a running argus instance with screenings
// and verifies the service's determinism guarantees over the wire.
package screendrill

import "time"

// Config holds configuration for one drill run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Count      int           // Number of screenings to generate
	Workers    int           // Number of concurrent submitters
	Timeout    time.Duration // HTTP request timeout
	Sample     int           // Addresses re-evaluated synchronously for the determinism check
	ReportFile string        // Output file for the JSON report ("" disables)
	Verbose    bool          // Enable verbose logging
}

// Stats accumulates counters over one drill run.
type Stats struct {
	Generated int `json:"generated"`
	Submitted int `json:"submitted"`
	Accepted  int `json:"accepted"`
	Duplicate int `json:"duplicate"`
	Rejected  int `json:"rejected"`
	Failed    int `json:"failed"`

	Resubmitted      int `json:"resubmitted"`
	TokenMismatches  int `json:"token_mismatches"`
	FormatViolations int `json:"format_violations"`
	OrderViolations  int `json:"order_violations"`

	WatchlistEntries int `json:"watchlist_entries"`

	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration_ns"`
}

// Report is the JSON document written after a run.
type Report struct {
	BaseURL string `json:"base_url"`
	Passed  bool   `json:"passed"`
	Stats   Stats  `json:"stats"`
}
