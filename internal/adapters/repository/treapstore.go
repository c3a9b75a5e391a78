// Package repository defines the watchlist store interface and errors.
package repository

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	model "github.com/arguswatch/argus/internal/domain/model"
	"github.com/arguswatch/argus/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: final score ASC, then address ASC (deterministic).
// We implement a BST comparator where "less" means ranks earlier
// (i.e., lower score ranks earlier). This makes in-order traversal
// produce the watchlist from riskiest to safest.

// record stores the evaluation plus its provenance token for an address.
type record struct {
	result model.Result
	token  string
}

// treap node
type node struct {
	id    string
	score int
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aID) should appear before (bScore, bID)
// in the watchlist (riskier ranks earlier).
func less(aScore int, aID string, bScore int, bID string) bool {
	if aScore != bScore {
		return aScore < bScore // lower score ranks earlier
	}
	return aID < bID // tie-breaker by address asc
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

// nodePriority derives the heap priority from the address alone, so the
// tree shape is independent of insertion order and stays balanced in
// expectation even though scores cluster into a small range. Re-scoring
// an address keeps its priority stable.
func nodePriority(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func insert(n *node, id string, score int) *node {
	if n == nil {
		return &node{id: id, score: score, prio: nodePriority(id), size: 1}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, score int) *node {
	if n == nil {
		return nil
	}
	if score == n.score && id == n.id {
		// Merge children by rotating highest priority up until leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	} else if less(score, id, n.score, n.id) {
		n.left = deleteNode(n.left, id, score)
	} else {
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// collectRiskiest appends up to limit entries in rank order (riskiest first).
func collectRiskiest(n *node, limit int, records map[string]record, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}

	// Traverse left subtree first (riskier, or same score with lower address)
	collectRiskiest(n.left, limit, records, out)

	if len(*out) < limit {
		if rec, exists := records[n.id]; exists {
			*out = append(*out, entryFromRecord(rec, 0))
		}
	}

	// Traverse right subtree (safer, or same score with higher address)
	if len(*out) < limit {
		collectRiskiest(n.right, limit, records, out)
	}
}

// rankForScore returns the rank for a final score: one more than the
// number of stored entries with a strictly lower score. Entries tied on
// FinalScore share a rank.
func rankForScore(n *node, score int) int {
	rank := 1
	for n != nil {
		if n.score < score {
			rank += nsize(n.left) + 1
			n = n.right
		} else {
			n = n.left
		}
	}
	return rank
}

func entryFromRecord(rec record, rank int) Entry {
	return Entry{
		Rank:       rank,
		Address:    rec.result.Address,
		Sanctions:  rec.result.Sanctions,
		Behavioral: rec.result.Behavioral,
		Reputation: rec.result.Reputation,
		FinalScore: rec.result.FinalScore,
		Status:     rec.result.Status,
		Token:      rec.token,
		CreatedAt:  rec.result.CreatedAt,
	}
}

type TreapStore struct {
	mu        sync.RWMutex
	root      *node
	byAddress map[string]record
	byStatus  map[model.Status]int

	refreshInterval time.Duration // How often to republish watchlist gauges

	// Background gauge refresher management
	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		refreshInterval: metrics.RefreshInterval(),
		byAddress:       make(map[string]record),
		byStatus:        make(map[model.Status]int),
	}

	for _, opt := range opts {
		opt(s)
	}

	// Initialize stop channel and start the gauge refresher
	s.stopChan = make(chan struct{})
	s.startGaugeRefresher(ctx)

	return s
}

// startGaugeRefresher starts a background goroutine that republishes the
// watchlist gauges at the configured interval.
func (s *TreapStore) startGaugeRefresher(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.refreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.refreshGauges()
			}
		}
	}()
}

// refreshGauges republishes the watchlist size and per-status gauges.
func (s *TreapStore) refreshGauges() {
	s.mu.RLock()
	count := len(s.byAddress)
	blocked := s.byStatus[model.StatusBlocked]
	warning := s.byStatus[model.StatusWarning]
	approved := s.byStatus[model.StatusApproved]
	s.mu.RUnlock()

	metrics.UpdateWatchlistSize(count)
	metrics.UpdateStatusEntries(string(model.StatusBlocked), blocked)
	metrics.UpdateStatusEntries(string(model.StatusWarning), warning)
	metrics.UpdateStatusEntries(string(model.StatusApproved), approved)
}

// Close gracefully shuts down the gauge refresher goroutine.
func (s *TreapStore) Close() error {
	select {
	case <-s.stopChan:
		// Channel already closed
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// Put implements Store.Put with O(log n) expected time.
func (s *TreapStore) Put(ctx context.Context, result model.Result, token string) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateDuration(float64(time.Since(start).Milliseconds()))
	}()

	// Track if this is a new address so we can update gauges after releasing locks
	isNewAddress := false

	s.mu.Lock()
	if old, ok := s.byAddress[result.Address]; ok {
		if old.result.Same(result) && old.token == token {
			s.mu.Unlock()
			metrics.RecordStoreWriteRejected()
			return false, nil
		}
		if old.result.FinalScore != result.FinalScore {
			s.root = deleteNode(s.root, result.Address, old.result.FinalScore)
			s.root = insert(s.root, result.Address, result.FinalScore)
		}
		s.byStatus[old.result.Status]--
	} else {
		isNewAddress = true
		s.root = insert(s.root, result.Address, result.FinalScore)
	}
	s.byAddress[result.Address] = record{result: result, token: token}
	s.byStatus[result.Status]++
	s.mu.Unlock()

	metrics.RecordStoreWrite()
	if isNewAddress {
		metrics.UpdateWatchlistSize(s.Count(ctx))
	}
	return true, nil
}

// Rank returns the stored evaluation and current rank for an address in O(log n).
func (s *TreapStore) Rank(ctx context.Context, address string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryDuration(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byAddress[address]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}

	rank := rankForScore(s.root, rec.result.FinalScore)
	return entryFromRecord(rec, rank), nil
}

// RiskiestN returns up to n entries ordered riskiest first.
func (s *TreapStore) RiskiestN(ctx context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryDuration(float64(time.Since(start).Milliseconds()))
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, n)
	collectRiskiest(s.root, n, s.byAddress, &out)

	// Entries tied on FinalScore share a rank; the next distinct score
	// resumes at its positional index.
	for i := range out {
		if i > 0 && out[i].FinalScore == out[i-1].FinalScore {
			out[i].Rank = out[i-1].Rank
			continue
		}
		out[i].Rank = i + 1
	}
	return out, nil
}

// Count returns the total number of tracked addresses.
func (s *TreapStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byAddress)
}

// StatusCounts returns the number of tracked addresses per status.
func (s *TreapStore) StatusCounts(ctx context.Context) map[model.Status]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[model.Status]int, 3)
	for _, st := range []model.Status{model.StatusBlocked, model.StatusWarning, model.StatusApproved} {
		counts[st] = s.byStatus[st]
	}
	return counts
}
