// Package model contains domain models passed between layers.
package model

import "time"

// Status classifies a final score into a screening verdict.
type Status string

// Screening verdicts, ordered from most to least severe.
const (
	StatusBlocked  Status = "BLOCKED"
	StatusWarning  Status = "WARNING"
	StatusApproved Status = "APPROVED"
)

// Valid reports whether s is one of the three known verdicts.
func (s Status) Valid() bool {
	switch s {
	case StatusBlocked, StatusWarning, StatusApproved:
		return true
	default:
		return false
	}
}

// Result represents one evaluation of a wallet identifier.
// Every field except CreatedAt is a pure function of Address.
type Result struct {
	Address    string    // normalized identifier the scores derive from
	Sanctions  int       // sanctions exposure sub-score in [0,100]
	Behavioral int       // behavioral pattern sub-score in [0,100]
	Reputation int       // counterparty reputation sub-score in [0,100]
	FinalScore int       // weighted combination in [0,100]
	Status     Status    // verdict derived from FinalScore
	CreatedAt  time.Time // evaluation timestamp; informational only
}

// Same reports whether two results agree on all deterministic fields.
// CreatedAt is ignored.
func (r Result) Same(other Result) bool {
	return r.Address == other.Address &&
		r.Sanctions == other.Sanctions &&
		r.Behavioral == other.Behavioral &&
		r.Reputation == other.Reputation &&
		r.FinalScore == other.FinalScore &&
		r.Status == other.Status
}

// Screening represents one queued asynchronous evaluation request.
type Screening struct {
	RequestID  string    // client-supplied idempotency key
	Address    string    // raw identifier as submitted
	EnqueuedAt time.Time // accept timestamp
}
