// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the evaluation workers.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	jobqueue "github.com/okian/classahp/internal/adapters/mq/queue"
	workerpool "github.com/okian/classahp/internal/adapters/mq/worker"
	"github.com/okian/classahp/internal/adapters/repository"
	"github.com/okian/classahp/internal/domain/ahp"
	"github.com/okian/classahp/internal/domain/dedupe"
	"github.com/okian/classahp/internal/domain/model"
	"github.com/okian/classahp/internal/domain/types"
	"github.com/okian/classahp/pkg/logger"
	"github.com/okian/classahp/pkg/metrics"
)

// requestNamespace derives stable evaluation ids from client request ids,
// so a duplicate submission points at the original evaluation.
var requestNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("classahp.evaluation")) //nolint:gochecknoglobals // constant namespace

// Service implements the API dependencies for the evaluation system.
type Service struct {
	mu sync.RWMutex
	// admit serializes keyed submissions from the dedupe check to the
	// enqueue, so a duplicate is only reported for a job that was queued.
	admit sync.Mutex

	// Core components
	store   repository.Store
	deduper dedupe.Deduper
	queue   *jobqueue.InMemoryQueue
	pool    *workerpool.Pool
	cancel  context.CancelFunc

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	storeSize   int
	crThreshold float64

	// State
	started    bool
	evaluated  atomic.Int64
	submitted  atomic.Int64
	duplicates atomic.Int64

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   10_000,
		dedupeSize:  50_000,
		storeSize:   10_000,
		crThreshold: ahp.AcceptableCR,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components. Workers run on a
// context detached from ctx so they keep draining until Stop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting evaluation service...")

	s.store = repository.NewMemoryStore(repository.WithMaxSize(s.storeSize))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s, s.store)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "evaluation service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("storeSize", s.storeSize),
		logger.Float64("crThreshold", s.crThreshold),
	)
	return nil
}

// Stop closes the queue, lets workers drain it within ctx, and releases
// the components.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping evaluation service...")

	err := s.pool.Shutdown(ctx)
	s.cancel()
	s.started = false

	if err != nil {
		s.logger.Warn(ctx, "evaluation service stopped with pending work", logger.Error(err))
		return err
	}
	s.logger.Info(ctx, "evaluation service stopped")
	return nil
}

func (s *Service) running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Evaluate validates req, runs the pipeline and stores the result.
func (s *Service) Evaluate(ctx context.Context, req types.EvaluationRequest) (types.Evaluation, error) {
	if !s.running() {
		return types.Evaluation{}, ErrNotStarted
	}
	factors := req.ToFactors()
	if err := model.Validate(factors); err != nil {
		return types.Evaluation{}, err
	}

	ev := s.compute(ctx, uuid.NewString(), factors, metrics.ModeSync, time.Now().UTC())
	if err := s.store.Put(ctx, ev); err != nil {
		return types.Evaluation{}, fmt.Errorf("store evaluation %s: %w", ev.ID, err)
	}
	s.evaluated.Add(1)
	return ev, nil
}

// Submit validates req and queues it. A repeated request id returns the
// original evaluation id without queueing again, and only once the original
// job is in the queue. When the queue refuses the job, the pending record and
// the request id are released so the client can retry.
func (s *Service) Submit(ctx context.Context, req types.EvaluationRequest) (types.Submission, error) {
	if !s.running() {
		return types.Submission{}, ErrNotStarted
	}
	factors := req.ToFactors()
	if err := model.Validate(factors); err != nil {
		return types.Submission{}, err
	}

	id := evaluationID(req.RequestID)
	if req.RequestID != "" {
		s.admit.Lock()
		defer s.admit.Unlock()
		seen := s.deduper.SeenAndRecord(ctx, req.RequestID)
		metrics.UpdateDedupeSize(s.deduper.Size())
		if seen {
			s.duplicates.Add(1)
			s.logger.Debug(ctx, "duplicate submission", logger.String("request_id", req.RequestID), logger.String("id", id))
			return types.Submission{ID: id, Status: types.SubmissionDuplicate, Duplicate: true}, nil
		}
	}

	now := time.Now().UTC()
	if err := s.store.Put(ctx, types.Pending(id, now)); err != nil {
		s.release(ctx, req.RequestID)
		return types.Submission{}, fmt.Errorf("store pending %s: %w", id, err)
	}

	job := model.Job{ID: id, RequestID: req.RequestID, Factors: factors, SubmittedAt: now}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		_ = s.store.Delete(context.WithoutCancel(ctx), id)
		s.release(ctx, req.RequestID)
		return types.Submission{}, fmt.Errorf("enqueue %s: %w", id, err)
	}

	s.submitted.Add(1)
	return types.Submission{ID: id, Status: types.SubmissionAccepted}, nil
}

func (s *Service) release(ctx context.Context, requestID string) {
	if requestID == "" {
		return
	}
	s.deduper.Unrecord(ctx, requestID)
	metrics.UpdateDedupeSize(s.deduper.Size())
}

// Compute evaluates a queued job. It implements the worker's Evaluator.
func (s *Service) Compute(ctx context.Context, job model.Job) (types.Evaluation, error) { //nolint:gocritic // hugeParam: matches the worker contract
	if err := ctx.Err(); err != nil {
		return types.Evaluation{}, err
	}
	return s.compute(ctx, job.ID, job.Factors, metrics.ModeAsync, job.SubmittedAt), nil
}

// Evaluation returns the stored evaluation with id.
func (s *Service) Evaluation(ctx context.Context, id string) (types.Evaluation, error) {
	if !s.running() {
		return types.Evaluation{}, ErrNotStarted
	}
	ev, err := s.store.Get(ctx, id)
	if err != nil {
		return types.Evaluation{}, fmt.Errorf("evaluation %s: %w", id, err)
	}
	return ev, nil
}

func (s *Service) compute(ctx context.Context, id string, factors []model.Factor, mode string, at time.Time) types.Evaluation {
	start := time.Now()
	res := ahp.Recompute(factors)
	latency := time.Since(start)

	ev := types.FromResult(id, res, s.crThreshold, at)
	metrics.ObserveEvaluation(metrics.Evaluation{
		Mode:          mode,
		LatencyMs:     float64(latency.Microseconds()) / 1000,
		Factors:       len(factors),
		Uninformative: len(res.Advisories),
		CR:            res.CR,
		Iterations:    res.Iterations,
		Converged:     res.Converged,
		Acceptable:    ev.Acceptable,
	})

	for _, a := range res.Advisories {
		s.logger.Warn(ctx, "factor carries no information",
			logger.String("id", id),
			logger.String("factor", a.Factor),
			logger.Int("index", a.Index),
		)
	}
	if !res.Converged {
		s.logger.Warn(ctx, "power iteration did not converge",
			logger.String("id", id),
			logger.Int("iterations", res.Iterations),
		)
	}
	if !ev.Acceptable {
		s.logger.Warn(ctx, "comparison matrix is inconsistent",
			logger.String("id", id),
			logger.Float64("cr", res.CR),
			logger.Float64("threshold", s.crThreshold),
		)
	}
	s.logger.Debug(ctx, "evaluation computed",
		logger.String("id", id),
		logger.String("mode", mode),
		logger.Float64("lambda_max", res.LambdaMax),
		logger.Bool("acceptable", ev.Acceptable),
		logger.Duration("latency", latency),
	)
	return ev
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":      s.started,
		"worker_count": s.workerCount,
		"queue_size":   s.queueSize,
		"dedupe_size":  s.dedupeSize,
		"store_size":   s.storeSize,
		"cr_threshold": s.crThreshold,
		"evaluated":    s.evaluated.Load(),
		"submitted":    s.submitted.Load(),
		"duplicates":   s.duplicates.Load(),
	}

	if s.started {
		stored := s.store.Count(ctx)
		stats["queue_length"] = s.queue.Len(ctx)
		stats["stored_evaluations"] = stored
		stats["dedupe_entries"] = s.deduper.Size()

		metrics.UpdateStoredEvaluations(stored)
		metrics.UpdateDedupeSize(s.deduper.Size())
	}
	if s.pool != nil {
		stats["processed"] = s.pool.Processed()
	}
	return stats
}

func evaluationID(requestID string) string {
	if requestID == "" {
		return uuid.NewString()
	}
	return uuid.NewSHA1(requestNamespace, []byte(requestID)).String()
}
