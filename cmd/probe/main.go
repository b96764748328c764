// Command probe generates random class tables, evaluates them against a
// running service and verifies every result.
package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/classahp/internal/probe"
	"github.com/okian/classahp/pkg/logger"
)

// Default configuration constants.
const (
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultProbeTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", probe.DefaultBaseURL, "Base URL of the service")
		runs      = flag.Int("runs", probe.DefaultRuns, "Number of tables to evaluate")
		async     = flag.Int("async", 0, "How many of the runs go through the queue")
		workers   = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		factors   = flag.Int("factors", probe.DefaultFactors, "Factors per table (2..15)")
		classes   = flag.Int("classes", probe.DefaultClasses, "Classes per factor (3..9)")
		timeout   = flag.Duration("timeout", probe.DefaultTimeout, "HTTP request timeout")
		seed      = flag.Uint64("seed", 0, "Generator seed; 0 picks one from the clock")
		logFormat = flag.String("log-format", logger.FormatText, "Log format: text or json")
		verbose   = flag.Bool("verbose", false, "Log every verified evaluation")
	)
	flag.Parse()

	if err := logger.InitWithOptions(logger.Options{Format: *logFormat}); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultProbeTimeout)
	defer cancel()

	_, err := probe.Run(ctx, probe.Config{
		BaseURL: *baseURL,
		Runs:    *runs,
		Async:   *async,
		Workers: *workers,
		Factors: *factors,
		Classes: *classes,
		Timeout: *timeout,
		Seed:    *seed,
		Verbose: *verbose,
	})
	if err != nil {
		os.Stderr.WriteString("Probe failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
