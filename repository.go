package eventide

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

type (
	// Repository loads and saves aggregates of a single type
	Repository[A Root] interface {
		GetByID(ctx context.Context, id AggregateID) (A, error)
		Save(ctx context.Context, agg A) error
	}

	// Factory returns a blank aggregate ready for replay
	Factory[A Root] func(AggregateID) A

	// StoreRepository reconstructs aggregates by replaying their stream and
	// saves them by appending their uncommitted events
	StoreRepository[A Root] struct {
		*options
		store   EventStore
		factory Factory[A]
	}

	// MemoryRepository keeps live aggregate references instead of event
	// streams. Save inserts an aggregate only if its id is not yet present
	MemoryRepository[A Root] struct {
		aggregates map[AggregateID]A
		mu         sync.RWMutex
	}
)

var (
	_ Repository[*Aggregate[any]] = (*StoreRepository[*Aggregate[any]])(nil)
	_ Repository[*Aggregate[any]] = (*MemoryRepository[*Aggregate[any]])(nil)
)

// NewStoreRepository binds a factory to an EventStore
func NewStoreRepository[A Root](
	store EventStore, factory Factory[A], opts ...Option,
) *StoreRepository[A] {
	return &StoreRepository[A]{
		options: makeOptions("repository", opts),
		store:   store,
		factory: factory,
	}
}

// GetByID replays the aggregate's committed stream into a blank instance
func (r *StoreRepository[A]) GetByID(
	ctx context.Context, id AggregateID,
) (A, error) {
	var zero A
	evs, err := r.store.Load(ctx, id)
	if err != nil {
		return zero, err
	}
	if len(evs) == 0 {
		return zero, fmt.Errorf("%w: %s", ErrAggregateNotFound, id)
	}

	agg := r.factory(id)
	if err := agg.LoadFromHistory(evs); err != nil {
		return zero, err
	}
	return agg, nil
}

// Save appends the aggregate's uncommitted events at its original version
// and marks them committed. Concurrency conflicts are returned unchanged
func (r *StoreRepository[A]) Save(ctx context.Context, agg A) error {
	id := agg.ID()
	if id == "" {
		return Validationf("aggregate id is required")
	}

	changes := agg.Uncommitted()
	if len(changes) == 0 {
		return nil
	}

	err := r.store.Append(ctx, id, agg.OriginalVersion(), changes)
	if err != nil && !errors.Is(err, ErrPublishFailed) {
		return err
	}

	// a publication failure happens after the append is durable
	agg.MarkCommitted()
	r.logger.Debug("aggregate saved",
		zap.String("aggregate_id", id.String()),
		zap.Int64("version", agg.Version()),
	)
	return err
}

// NewMemoryRepository creates an empty MemoryRepository
func NewMemoryRepository[A Root]() *MemoryRepository[A] {
	return &MemoryRepository[A]{
		aggregates: map[AggregateID]A{},
	}
}

// GetByID returns the live aggregate stored under id
func (r *MemoryRepository[A]) GetByID(
	_ context.Context, id AggregateID,
) (A, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if agg, ok := r.aggregates[id]; ok {
		return agg, nil
	}
	var zero A
	return zero, fmt.Errorf("%w: %s", ErrAggregateNotFound, id)
}

// Save stores the aggregate if its id is absent and clears its buffer
func (r *MemoryRepository[A]) Save(_ context.Context, agg A) error {
	id := agg.ID()
	if id == "" {
		return Validationf("aggregate id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.aggregates[id]; !ok {
		r.aggregates[id] = agg
	}
	agg.MarkCommitted()
	return nil
}
