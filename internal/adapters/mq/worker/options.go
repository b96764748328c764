package worker

import (
	"sync/atomic"

	"github.com/okian/classahp/pkg/logger"
)

// Option configures an InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName names the worker in logs. The default logger is derived from it.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger replaces the worker's named logger.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithProcessedCounter makes the worker count completed evaluations on c,
// which lets a pool share one counter across its workers.
func WithProcessedCounter(c *atomic.Int64) Option {
	return func(w *InMemoryWorker) {
		if c != nil {
			w.processed = c
		}
	}
}
