// Package probe drives a running service with generated class tables and
// checks every returned evaluation against the weighting invariants.
package probe

import "time"

// Config holds configuration for a probe run.
type Config struct {
	BaseURL string        // Base URL of the service
	Runs    int           // Number of tables to evaluate
	Workers int           // Number of concurrent workers
	Factors int           // Factors per table, clamped to the API bounds
	Classes int           // Classes per factor, clamped to the API bounds
	Async   int           // Number of runs that go through the queue instead
	Timeout time.Duration // HTTP request timeout
	Seed    uint64        // Seed for table generation; 0 picks one from the clock
	Verbose bool          // Log every evaluation
}

// Stats holds probe statistics.
type Stats struct {
	Generated    int
	Evaluated    int
	Submitted    int
	Duplicates   int
	Failed       int
	Inconsistent int
	Violations   []string
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}

// Default values used when a Config field is left at zero.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultRuns    = 200
	DefaultFactors = 5
	DefaultClasses = 5
	DefaultTimeout = 10 * time.Second
)

const (
	workerChannelMultiplier = 2
	pollInterval            = 50 * time.Millisecond
	percentageMultiplier    = 100
)

func (c *Config) withDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Runs <= 0 {
		c.Runs = DefaultRuns
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.Factors == 0 {
		c.Factors = DefaultFactors
	}
	if c.Classes == 0 {
		c.Classes = DefaultClasses
	}
	if c.Async < 0 {
		c.Async = 0
	}
	if c.Async > c.Runs {
		c.Async = c.Runs
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}
