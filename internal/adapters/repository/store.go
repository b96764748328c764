// Package repository defines the evaluation store interface and errors.
package repository

import (
	"context"

	"github.com/okian/classahp/internal/domain/types"
)

// Store keeps evaluations for later retrieval by id.
type Store interface {
	// Put inserts or replaces the evaluation with e.ID.
	Put(ctx context.Context, e types.Evaluation) error

	// Get returns the evaluation with id.
	// Returns ErrNotFound if the id is unknown or was evicted.
	Get(ctx context.Context, id string) (types.Evaluation, error)

	// Delete removes the evaluation with id, if present.
	Delete(ctx context.Context, id string) error

	// Count returns the number of evaluations held.
	Count(ctx context.Context) int
}
