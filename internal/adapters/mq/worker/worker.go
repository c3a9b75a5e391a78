// Package worker drains the screening queue: each screening is scored,
// sealed into a provenance record, and written to the watchlist store.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arguswatch/argus/internal/domain/model"
	"github.com/arguswatch/argus/internal/domain/provenance"
	"github.com/arguswatch/argus/pkg/logger"
	"github.com/arguswatch/argus/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount = 8
)

// Screening abstracts what workers read off the queue.
// Using the model.Screening type for type safety.
type Screening = model.Screening

// Scorer evaluates one identifier. The scoring engine satisfies it.
type Scorer interface {
	Score(identifier string) model.Result
}

// Updater persists a scored result and its provenance token.
// The watchlist store satisfies it.
type Updater interface {
	Put(ctx context.Context, result model.Result, token string) (bool, error)
}

// Queue defines how workers receive screenings.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Screening
}

// Worker processes screenings using the provided interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing screenings.
type InMemoryWorker struct {
	queue   Queue
	scorer  Scorer
	updater Updater
	name    string

	// busy is shared across the pool so the busy gauge reflects all workers.
	busy *atomic.Int64

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, scorer Scorer, updater Updater, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		scorer:   scorer,
		updater:  updater,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	screenings := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case s, ok := <-screenings:
			if !ok {
				// Queue closed; nothing more will arrive.
				return
			}

			if err := w.processScreening(ctx, s); err != nil {
				w.logger.Error(ctx, "error processing screening", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processScreening handles a single screening: score the address,
// derive the provenance record, persist both.
func (w *InMemoryWorker) processScreening(ctx context.Context, s Screening) error {
	if w.busy != nil {
		metrics.UpdateWorkerBusy(int(w.busy.Add(1)))
		defer func() {
			metrics.UpdateWorkerBusy(int(w.busy.Add(-1)))
		}()
	}

	scoreStart := time.Now()
	result := w.scorer.Score(s.Address)
	metrics.RecordScoringDuration(float64(time.Since(scoreStart).Milliseconds()))

	rec := provenance.BuildRecord(result)
	metrics.RecordTokenDerived()

	stored, err := w.updater.Put(ctx, result, rec.Token)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		w.logger.Error(ctx, "store write failed for screening",
			logger.String("requestID", s.RequestID),
			logger.String("address", result.Address),
			logger.Error(err),
		)
		return fmt.Errorf("store write for screening %s: %w", s.RequestID, err)
	}

	metrics.RecordScreeningProcessed()
	metrics.RecordEvaluation(string(result.Status))

	if !stored {
		// An identical evaluation was already on file; expected when
		// the same address is screened more than once.
		w.logger.Debug(ctx, "evaluation already stored",
			logger.String("address", result.Address),
			logger.String("token", rec.Token),
		)
	}

	return nil
}

// Pool manages multiple workers draining one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	group *errgroup.Group
	busy  atomic.Int64

	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, scorer Scorer, updater Updater) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			scorer,
			updater,
			WithName("worker-"+strconv.Itoa(i)),
			withBusyCounter(&pool.busy),
		)
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerBusy(0)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	p.group = g

	for _, w := range p.workers {
		w := w
		g.Go(func() error {
			w.Run(gctx)
			return nil
		})
	}
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Shutdown closes the queue so workers drain the remaining screenings,
// then waits for them to finish or for ctx to expire.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	if p.group == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		_ = p.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		p.logger.Warn(ctx, "worker pool shutdown timed out")
		return fmt.Errorf("pool shutdown: %w", ctx.Err())
	}
}
