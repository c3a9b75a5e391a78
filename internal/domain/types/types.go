// Package types contains common types used across the application
package types

import (
	"time"

	model "github.com/arguswatch/argus/internal/domain/model"
)

// WatchlistEntry represents a ranked watchlist entry. Rank 1 is the
// riskiest address currently known to the service.
type WatchlistEntry struct {
	Rank       int          `json:"rank"`
	Address    string       `json:"address"`
	FinalScore int          `json:"final_score"`
	Status     model.Status `json:"status"`
	Token      string       `json:"token"`
}

// Evaluation is the full read shape for one screening outcome: the
// deterministic scores plus the provenance fields attached by the
// service.
type Evaluation struct {
	Address     string       `json:"address"`
	Sanctions   int          `json:"sanctions"`
	Behavioral  int          `json:"behavioral"`
	Reputation  int          `json:"reputation"`
	FinalScore  int          `json:"final_score"`
	Status      model.Status `json:"status"`
	Token       string       `json:"token"`
	ContentHash string       `json:"content_hash"`
	Ledger      string       `json:"ledger"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ServiceStats is the operational snapshot served by GET /api/v1/stats.
type ServiceStats struct {
	Started       bool                 `json:"started"`
	Addresses     int                  `json:"addresses"`
	StatusCounts  map[model.Status]int `json:"status_counts"`
	QueueDepth    int                  `json:"queue_depth"`
	QueueCapacity int                  `json:"queue_capacity"`
	DedupeSize    int64                `json:"dedupe_size"`
	WorkerCount   int                  `json:"worker_count"`
}
