package probe

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/okian/classahp/internal/domain/types"
	"github.com/okian/classahp/pkg/logger"
)

// ErrViolations is returned by Run when at least one evaluation failed or
// broke an invariant.
var ErrViolations = errors.New("probe found violations")

type job struct {
	index int
	req   types.EvaluationRequest
	async bool
}

// Run executes the probe: health check, table generation, synchronous and
// queued evaluations, verification and a final stats dump.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	cfg.withDefaults()
	log := logger.Get().Named("probe")
	stats := &Stats{StartTime: time.Now()}
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "checking service health", logger.String("url", cfg.BaseURL))
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("health check failed: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))
	jobs := make([]job, cfg.Runs)
	for i := range jobs {
		jobs[i] = job{
			index: i,
			req:   Generate(rng, cfg.Factors, cfg.Classes),
			async: i >= cfg.Runs-cfg.Async,
		}
		if jobs[i].async {
			jobs[i].req.RequestID = fmt.Sprintf("probe-%d-%d", seed, i)
		}
	}
	stats.Generated = len(jobs)
	log.Info(ctx, "generated tables",
		logger.Int("runs", cfg.Runs),
		logger.Int("async", cfg.Async),
		logger.Any("seed", seed))

	runJobs(ctx, cfg, client, jobs, stats, log)

	if s, err := client.Stats(ctx); err != nil {
		log.Warn(ctx, "failed to fetch service stats", logger.Error(err))
	} else {
		log.Info(ctx, "service stats", logger.Any("stats", s))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayStats(ctx, log, stats)

	if stats.Failed > 0 || len(stats.Violations) > 0 {
		return stats, fmt.Errorf("%w: %d failed, %d violations", ErrViolations, stats.Failed, len(stats.Violations))
	}
	return stats, nil
}

func runJobs(ctx context.Context, cfg Config, client *HTTPClient, jobs []job, stats *Stats, log logger.Logger) {
	ch := make(chan job, cfg.Workers*workerChannelMultiplier)
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	record := func(j job, ev types.Evaluation, duplicate bool, err error) {
		mu.Lock()
		defer mu.Unlock()
		if j.async {
			stats.Submitted++
			if duplicate {
				stats.Duplicates++
			}
		}
		if err != nil {
			stats.Failed++
			log.Error(ctx, "evaluation failed", logger.Int("run", j.index), logger.Error(err))
			return
		}
		stats.Evaluated++
		if !ev.Acceptable {
			stats.Inconsistent++
		}
		v := Verify(j.req, ev)
		stats.Violations = append(stats.Violations, v...)
		for _, msg := range v {
			log.Error(ctx, "invariant violated", logger.Int("run", j.index), logger.String("detail", msg))
		}
		if cfg.Verbose {
			log.Info(ctx, "evaluation verified",
				logger.Int("run", j.index),
				logger.String("id", ev.ID),
				logger.Float64("cr", ev.CR),
				logger.Bool("acceptable", ev.Acceptable))
		}
	}

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range ch {
				if j.async {
					ev, dup, err := submitAndPoll(ctx, client, j.req)
					record(j, ev, dup, err)
					continue
				}
				ev, err := client.Evaluate(ctx, j.req)
				record(j, ev, false, err)
			}
		}()
	}

feed:
	for _, j := range jobs {
		select {
		case <-ctx.Done():
			break feed
		case ch <- j:
		}
	}
	close(ch)
	wg.Wait()
}

// submitAndPoll queues req, resubmits it to confirm the duplicate maps to the
// same id, then waits for the result.
func submitAndPoll(ctx context.Context, client *HTTPClient, req types.EvaluationRequest) (types.Evaluation, bool, error) {
	sub, err := client.Submit(ctx, req)
	if err != nil {
		return types.Evaluation{}, false, err
	}
	again, err := client.Submit(ctx, req)
	if err != nil {
		return types.Evaluation{}, false, err
	}
	if !again.Duplicate || again.ID != sub.ID {
		return types.Evaluation{}, false, fmt.Errorf("resubmitting %q returned %+v, expected duplicate of %s", req.RequestID, again, sub.ID)
	}
	ev, err := client.Poll(ctx, sub.ID)
	return ev, true, err
}

func displayStats(ctx context.Context, log logger.Logger, stats *Stats) {
	rate := 0.0
	if stats.Generated > 0 {
		rate = float64(stats.Evaluated) / float64(stats.Generated) * percentageMultiplier
	}
	log.Info(ctx, "probe finished",
		logger.Int("generated", stats.Generated),
		logger.Int("evaluated", stats.Evaluated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("failed", stats.Failed),
		logger.Int("inconsistent", stats.Inconsistent),
		logger.Int("violations", len(stats.Violations)),
		logger.Float64("success_rate", rate),
		logger.Duration("duration", stats.Duration))
}
