package repository

import (
	"container/list"
	"context"
	"sync"

	"github.com/okian/classahp/internal/domain/types"
	"github.com/okian/classahp/pkg/metrics"
)

const defaultMaxSize = 10_000

// MemoryStore is a bounded in-memory Store with FIFO eviction.
// Replacing an evaluation (pending -> done) keeps its original position.
type MemoryStore struct {
	mu      sync.RWMutex
	maxSize int
	order   *list.List // of string ids, oldest at front
	byID    map[string]*list.Element
	values  map[string]types.Evaluation
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		maxSize: defaultMaxSize,
		order:   list.New(),
		byID:    make(map[string]*list.Element),
		values:  make(map[string]types.Evaluation),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put inserts or replaces e.
func (s *MemoryStore) Put(ctx context.Context, e types.Evaluation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.ID == "" {
		return ErrInvalidID
	}

	s.mu.Lock()
	if _, ok := s.byID[e.ID]; !ok {
		s.byID[e.ID] = s.order.PushBack(e.ID)
		for s.order.Len() > s.maxSize {
			oldest := s.order.Front()
			id, _ := s.order.Remove(oldest).(string)
			delete(s.byID, id)
			delete(s.values, id)
		}
	}
	s.values[e.ID] = e
	n := len(s.values)
	s.mu.Unlock()

	metrics.UpdateStoredEvaluations(n)
	return nil
}

// Get returns the evaluation with id.
func (s *MemoryStore) Get(ctx context.Context, id string) (types.Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return types.Evaluation{}, err
	}
	s.mu.RLock()
	e, ok := s.values[id]
	s.mu.RUnlock()
	if !ok {
		return types.Evaluation{}, ErrNotFound
	}
	return e, nil
}

// Delete removes the evaluation with id.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	if el, ok := s.byID[id]; ok {
		s.order.Remove(el)
		delete(s.byID, id)
		delete(s.values, id)
	}
	n := len(s.values)
	s.mu.Unlock()

	metrics.UpdateStoredEvaluations(n)
	return nil
}

// Count returns the number of evaluations held.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
