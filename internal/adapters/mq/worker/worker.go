// Package worker drains the evaluation queue and stores finished evaluations.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/classahp/internal/domain/model"
	"github.com/okian/classahp/internal/domain/types"
	"github.com/okian/classahp/pkg/logger"
	"github.com/okian/classahp/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Job abstracts what workers read off the queue.
type Job = model.Job

// Evaluator turns a queued job into a finished evaluation.
type Evaluator interface {
	Compute(ctx context.Context, job Job) (types.Evaluation, error)
}

// Sink receives finished (or failed) evaluations.
type Sink interface {
	Put(ctx context.Context, e types.Evaluation) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs until its queue closes.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue is drained.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining the queue.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	evaluator Evaluator
	sink      Sink
	name      string
	processed *atomic.Int64

	shutdown chan struct{}
	stopped  atomic.Bool
	done     chan struct{}

	logger logger.Logger
}

var _ Worker = (*InMemoryWorker)(nil)

// NewInMemoryWorker creates a new worker.
func NewInMemoryWorker(queue Queue, evaluator Evaluator, sink Sink, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		evaluator: evaluator,
		sink:      sink,
		name:      "worker",
		processed: new(atomic.Int64),
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
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

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "error processing job", logger.String("id", job.ID), logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker and waits for the current job to finish.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	if w.stopped.CompareAndSwap(false, true) {
		close(w.shutdown)
	}
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Processed returns the number of jobs this worker stored.
func (w *InMemoryWorker) Processed() int64 {
	return w.processed.Load()
}

func (w *InMemoryWorker) process(ctx context.Context, job Job) error { //nolint:gocritic // hugeParam: Job arrives by value from the channel
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	ev, err := w.evaluator.Compute(ctx, job)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "evaluation_error")
		ev = types.Failed(job.ID, err, job.SubmittedAt)
	}
	if perr := w.sink.Put(ctx, ev); perr != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		return fmt.Errorf("store evaluation %s: %w", job.ID, perr)
	}
	if err != nil {
		return fmt.Errorf("evaluate %s: %w", job.ID, err)
	}
	w.processed.Add(1)
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers   []*InMemoryWorker
	queue     Queue
	processed *atomic.Int64
	logger    logger.Logger
}

// NewPool creates a new worker pool. workerCount < 1 uses runtime.NumCPU().
func NewPool(workerCount int, queue Queue, evaluator Evaluator, sink Sink) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers:   make([]*InMemoryWorker, workerCount),
		queue:     queue,
		processed: new(atomic.Int64),
		logger:    logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(queue, evaluator, sink,
			WithName("worker-"+strconv.Itoa(i)),
			WithProcessedCounter(pool.processed))
	}
	metrics.UpdateWorkerCount(0)
	return pool
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerCount(len(p.workers))
}

// Processed returns the number of jobs completed across the pool.
func (p *Pool) Processed() int64 {
	return p.processed.Load()
}

// Shutdown closes the queue and lets workers drain it. Workers still busy
// when ctx (bounded by poolShutdownTimeout) ends are stopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut int
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut++
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			if w.stopped.CompareAndSwap(false, true) {
				close(w.shutdown)
			}
		}
	}
	metrics.UpdateWorkerCount(0)
	if timedOut > 0 {
		return fmt.Errorf("%d workers did not drain: %w", timedOut, shutdownCtx.Err())
	}
	return nil
}
