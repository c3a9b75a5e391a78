// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	screeningqueue "github.com/arguswatch/argus/internal/adapters/mq/queue"
	workerpool "github.com/arguswatch/argus/internal/adapters/mq/worker"
	repository "github.com/arguswatch/argus/internal/adapters/repository"
	"github.com/arguswatch/argus/internal/domain/dedupe"
	"github.com/arguswatch/argus/internal/domain/model"
	"github.com/arguswatch/argus/internal/domain/provenance"
	"github.com/arguswatch/argus/internal/domain/scoring"
	"github.com/arguswatch/argus/internal/domain/types"
	"github.com/arguswatch/argus/pkg/logger"
	"github.com/arguswatch/argus/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultWorkerCount = 8
	defaultQueueSize   = 100_000
	defaultDedupeSize  = 100_000
	defaultLedgerLabel = "mocked test write"
)

// Service wires the scoring engine, provenance hasher, watchlist store,
// screening queue, worker pool, and idempotency cache behind one facade.
type Service struct {
	mu sync.RWMutex

	// Core components
	watchlist repository.Store
	deduper   dedupe.Deduper
	queue     screeningqueue.Queue
	engine    *scoring.Engine
	pool      *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	ledgerLabel string

	// State
	started   bool
	runCancel context.CancelFunc

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of screening workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the screening queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the request-ID idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLedgerLabel sets the advisory storage-medium string attached to
// evaluation responses.
func WithLedgerLabel(label string) Option {
	return func(s *Service) {
		if label != "" {
			s.ledgerLabel = label
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: defaultWorkerCount,
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupeSize,
		ledgerLabel: defaultLedgerLabel,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting screening service")

	// Workers must outlive the caller's context so a canceled server
	// context cannot interrupt the drain; Stop owns their lifetime.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.runCancel = cancel

	s.watchlist = repository.NewTreapStore(runCtx)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = screeningqueue.NewInMemoryQueue(
		screeningqueue.WithCapacity(s.queueSize),
	)
	s.engine = scoring.NewEngine()

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.engine, s.watchlist)
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "screening service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop gracefully shuts down the service: the queue stops accepting,
// workers drain what is left, then the store closes.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(ctx, "stopping screening service")

	if s.pool != nil {
		// Shutdown closes the queue before waiting on the drain.
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "worker pool drain incomplete", logger.Error(err))
		}
	}

	if s.runCancel != nil {
		s.runCancel()
	}

	if s.watchlist != nil {
		if closer, ok := s.watchlist.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}

	s.started = false
	s.logger.Info(ctx, "screening service stopped")
}

// SeenAndRecord atomically checks if a request id was seen and records
// it if not. Returns true if it was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordScreeningDuplicate()
	}
	return seen
}

// Unrecord removes a request ID from the seen list, allowing it to be
// retried after a failed enqueue.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Evaluate runs the synchronous path: score the address, derive the
// provenance record, and write the watchlist entry. The write is
// idempotent; re-evaluating an address keeps the first stored record.
func (s *Service) Evaluate(ctx context.Context, address string) (types.Evaluation, error) {
	start := time.Now()
	result := s.engine.Score(address)
	metrics.RecordScoringDuration(float64(time.Since(start).Milliseconds()))

	rec := provenance.BuildRecord(result)
	metrics.RecordTokenDerived()
	metrics.RecordEvaluation(string(result.Status))

	stored, err := s.watchlist.Put(ctx, result, rec.Token)
	if err != nil {
		return types.Evaluation{}, fmt.Errorf("storing evaluation for %q: %w", result.Address, err)
	}
	if !stored {
		// An identical record exists; surface its original CreatedAt.
		if entry, rankErr := s.watchlist.Rank(ctx, result.Address); rankErr == nil {
			result.CreatedAt = entry.CreatedAt
		}
	}

	return s.evaluation(result, rec), nil
}

// Screen enqueues one screening for asynchronous processing. It returns
// false on backpressure: the queue is full or closed.
func (s *Service) Screen(ctx context.Context, screening model.Screening) bool {
	ok := s.queue.Enqueue(ctx, screening)
	if ok {
		metrics.RecordScreeningSubmitted()
	} else {
		metrics.RecordScreeningRejected()
	}
	return ok
}

// Evaluation returns the stored evaluation for an address, looked up by
// its normalized form. Returns repository.ErrNotFound when the address
// has not been screened.
func (s *Service) Evaluation(ctx context.Context, address string) (types.Evaluation, error) {
	entry, err := s.watchlist.Rank(ctx, scoring.Normalize(address))
	if err != nil {
		return types.Evaluation{}, fmt.Errorf("looking up %q: %w", address, err)
	}
	return s.evaluationFromEntry(entry), nil
}

// Watchlist returns up to n entries ordered riskiest first.
func (s *Service) Watchlist(ctx context.Context, n int) ([]types.WatchlistEntry, error) {
	entries, err := s.watchlist.RiskiestN(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("reading watchlist: %w", err)
	}

	out := make([]types.WatchlistEntry, len(entries))
	for i, entry := range entries {
		out[i] = types.WatchlistEntry{
			Rank:       entry.Rank,
			Address:    entry.Address,
			FinalScore: entry.FinalScore,
			Status:     entry.Status,
			Token:      entry.Token,
		}
	}
	return out, nil
}

// RankOf returns the ranked watchlist row for one address.
func (s *Service) RankOf(ctx context.Context, address string) (types.WatchlistEntry, error) {
	entry, err := s.watchlist.Rank(ctx, scoring.Normalize(address))
	if err != nil {
		return types.WatchlistEntry{}, fmt.Errorf("ranking %q: %w", address, err)
	}
	return types.WatchlistEntry{
		Rank:       entry.Rank,
		Address:    entry.Address,
		FinalScore: entry.FinalScore,
		Status:     entry.Status,
		Token:      entry.Token,
	}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) types.ServiceStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.ServiceStats{
		Started:     s.started,
		WorkerCount: s.workerCount,
	}

	if s.started {
		stats.Addresses = s.watchlist.Count(ctx)
		stats.StatusCounts = s.watchlist.StatusCounts(ctx)
		stats.QueueDepth = s.queue.Len(ctx)
		stats.QueueCapacity = s.queue.Cap(ctx)
		stats.DedupeSize = s.deduper.Size()
	}

	return stats
}

// Healthy reports whether the service is running and able to accept work.
func (s *Service) Healthy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started && !s.queue.IsClosed()
}

// evaluation assembles the read shape from a fresh result and record.
func (s *Service) evaluation(result model.Result, rec provenance.Record) types.Evaluation {
	return types.Evaluation{
		Address:     result.Address,
		Sanctions:   result.Sanctions,
		Behavioral:  result.Behavioral,
		Reputation:  result.Reputation,
		FinalScore:  result.FinalScore,
		Status:      result.Status,
		Token:       rec.Token,
		ContentHash: rec.Payload.ContentHash,
		Ledger:      s.ledgerLabel,
		CreatedAt:   result.CreatedAt,
	}
}

// evaluationFromEntry rebuilds the read shape for a stored entry. The
// content hash is recomputed from the deterministic fields; the scores
// are pure functions of the address, so this always matches the hash
// derived at write time.
func (s *Service) evaluationFromEntry(entry repository.Entry) types.Evaluation {
	rec := provenance.BuildRecord(model.Result{
		Address:    entry.Address,
		Sanctions:  entry.Sanctions,
		Behavioral: entry.Behavioral,
		Reputation: entry.Reputation,
		FinalScore: entry.FinalScore,
		Status:     entry.Status,
	})

	return types.Evaluation{
		Address:     entry.Address,
		Sanctions:   entry.Sanctions,
		Behavioral:  entry.Behavioral,
		Reputation:  entry.Reputation,
		FinalScore:  entry.FinalScore,
		Status:      entry.Status,
		Token:       entry.Token,
		ContentHash: rec.Payload.ContentHash,
		Ledger:      s.ledgerLabel,
		CreatedAt:   entry.CreatedAt,
	}
}
