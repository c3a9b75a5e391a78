// Package repository defines the watchlist store interface and errors.
package repository

import (
	"context"
	"time"

	model "github.com/arguswatch/argus/internal/domain/model"
)

// Entry represents a stored evaluation together with its watchlist rank.
type Entry struct {
	Rank       int
	Address    string
	Sanctions  int
	Behavioral int
	Reputation int
	FinalScore int
	Status     model.Status
	Token      string
	CreatedAt  time.Time
}

// Store provides read/write access to the watchlist state.
type Store interface {
	// Put stores an evaluation and its provenance token for an address.
	// Returns false without writing when an identical evaluation is
	// already stored; a changed evaluation overwrites the previous one.
	Put(ctx context.Context, result model.Result, token string) (bool, error)

	// Rank returns the stored evaluation and current watchlist rank for
	// an address. Rank 1 is the riskiest address.
	// Returns ErrNotFound if the address is unknown.
	Rank(ctx context.Context, address string) (Entry, error)

	// RiskiestN returns up to n entries ordered riskiest first
	// (final score asc, address asc).
	RiskiestN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of addresses tracked in the watchlist.
	Count(ctx context.Context) int

	// StatusCounts returns the number of tracked addresses per status.
	StatusCounts(ctx context.Context) map[model.Status]int
}
