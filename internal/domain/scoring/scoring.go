// Package scoring computes deterministic compliance scores for wallet
// identifiers. Every field of a result except its timestamp is a pure
// function of the normalized identifier, reproducible across processes.
package scoring

import (
	"math"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/arguswatch/argus/internal/domain/model"
)

// Scoring configuration constants.
const (
	rangeModulus = 101 // sub-scores land in [0,100]

	blockThreshold   = 30 // final scores below this are BLOCKED
	approveThreshold = 70 // final scores at or above this are APPROVED
)

// aspect binds one named risk dimension to its hash key and weight.
type aspect struct {
	name   string
	key    int32
	weight float64
}

// Keys are fixed protocol constants; weights sum to exactly 1.0.
// Changing either breaks score compatibility with stored evaluations.
var aspects = [3]aspect{
	{name: "sanctions", key: 11, weight: 0.5},
	{name: "behavioral", key: 29, weight: 0.3},
	{name: "reputation", key: 53, weight: 0.2},
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithClock overrides the timestamp source used for CreatedAt.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// Engine evaluates identifiers. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	clock func() time.Time
}

// NewEngine creates a scoring engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		clock: time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// defaultEngine backs the package-level Score helper.
var defaultEngine = NewEngine()

// Score evaluates identifier with a default engine.
func Score(identifier string) model.Result {
	return defaultEngine.Score(identifier)
}

// Score produces the result for one identifier. It never fails: any
// string, including the empty string, has a well-defined evaluation.
func (e *Engine) Score(identifier string) model.Result {
	normalized := Normalize(identifier)

	var sub [3]int
	var raw float64
	for i, a := range aspects {
		sub[i] = rangeHash(normalized, a.key)
		raw += a.weight * float64(sub[i])
	}

	// math.Round is half-away-from-zero; the choice is load-bearing for
	// raw values ending in .5 and is pinned by tests.
	final := int(math.Round(raw))

	return model.Result{
		Address:    normalized,
		Sanctions:  sub[0],
		Behavioral: sub[1],
		Reputation: sub[2],
		FinalScore: final,
		Status:     StatusFor(final),
		CreatedAt:  e.clock(),
	}
}

// Normalize trims surrounding whitespace and lowercases the identifier.
// Scoring, storage, and lookups must all key off the normalized form.
func Normalize(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

// StatusFor maps a final score onto its verdict.
func StatusFor(finalScore int) model.Status {
	switch {
	case finalScore < blockThreshold:
		return model.StatusBlocked
	case finalScore < approveThreshold:
		return model.StatusWarning
	default:
		return model.StatusApproved
	}
}

// rangeHash folds text into [0, rangeModulus) with a keyed accumulator
// hash over the UTF-16 code units of text. The accumulator must wrap as
// a signed 32-bit integer: widening it, or iterating runes or bytes
// instead of code units, silently changes scores for existing
// identifiers.
func rangeHash(text string, key int32) int {
	var acc int32
	for _, unit := range utf16.Encode([]rune(text)) {
		acc = acc<<5 - acc + int32(unit) + key
	}

	// Widen before abs so MinInt32 cannot overflow back to negative.
	wide := int64(acc)
	if wide < 0 {
		wide = -wide
	}
	return int(wide % rangeModulus)
}
