package eventide

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type (
	// EventStore is an append-only, per-aggregate event log with optimistic
	// concurrency. Append compares expectedVersion with the last committed
	// version (0 for an unknown aggregate) and appends only on a match, as a
	// single atomic step per aggregate. Appended events are published, in
	// commit order, before Append returns and while the aggregate is still
	// locked
	EventStore interface {
		Append(
			ctx context.Context, id AggregateID, expectedVersion int64,
			evs []*Event,
		) error

		// Load returns a copy of the aggregate's committed stream in version
		// order, or an empty slice for an unknown aggregate
		Load(ctx context.Context, id AggregateID) ([]*Event, error)
	}

	// MemoryStore keeps event streams in process memory
	MemoryStore struct {
		*options
		publisher EventPublisher
		locks     *keyedMutex
		streams   map[AggregateID][]*Event
		mu        sync.RWMutex
	}
)

var _ EventStore = (*MemoryStore)(nil)

// NewMemoryStore creates a MemoryStore that publishes appended events to pub.
// A nil publisher disables publication
func NewMemoryStore(pub EventPublisher, opts ...Option) *MemoryStore {
	return &MemoryStore{
		options:   makeOptions("memory_store", opts),
		publisher: pub,
		locks:     newKeyedMutex(),
		streams:   map[AggregateID][]*Event{},
	}
}

// Append implements EventStore
func (s *MemoryStore) Append(
	ctx context.Context, id AggregateID, expectedVersion int64, evs []*Event,
) error {
	if err := checkAppend(id, expectedVersion, evs); err != nil {
		return err
	}

	unlock := s.locks.lock(id)
	defer unlock()

	s.mu.RLock()
	current := currentVersion(s.streams[id])
	s.mu.RUnlock()

	if current != expectedVersion {
		return s.conflict(id, expectedVersion, current)
	}
	if len(evs) == 0 {
		return nil
	}

	committed := cloneEvents(evs)
	s.mu.Lock()
	s.streams[id] = append(s.streams[id], committed...)
	s.mu.Unlock()

	s.metrics.appended(committed)
	s.logger.Debug("events appended",
		zap.String("aggregate_id", id.String()),
		zap.Int64("from_version", expectedVersion+1),
		zap.Int("count", len(committed)),
	)
	return publishAll(ctx, s.publisher, committed)
}

// Load implements EventStore
func (s *MemoryStore) Load(
	_ context.Context, id AggregateID,
) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEvents(s.streams[id]), nil
}

func (s *MemoryStore) conflict(id AggregateID, expected, actual int64) error {
	s.metrics.conflict()
	s.logger.Warn("version conflict",
		zap.String("aggregate_id", id.String()),
		zap.Int64("expected_version", expected),
		zap.Int64("actual_version", actual),
	)
	return &VersionConflictError{
		AggregateID:     id,
		ExpectedVersion: expected,
		ActualVersion:   actual,
	}
}

// checkAppend verifies that evs belong to id and continue its stream
// gaplessly from expectedVersion
func checkAppend(id AggregateID, expectedVersion int64, evs []*Event) error {
	if id == "" {
		return Validationf("aggregate id is required")
	}
	if expectedVersion < 0 {
		return Validationf("negative expected version %d", expectedVersion)
	}
	for i, ev := range evs {
		if ev == nil {
			return Validationf("nil event at index %d", i)
		}
		if ev.AggregateID != id {
			return Validationf("event %d belongs to %s, not %s",
				i, ev.AggregateID, id,
			)
		}
		if want := expectedVersion + int64(i) + 1; ev.Version != want {
			return Validationf("event %d has version %d, want %d",
				i, ev.Version, want,
			)
		}
	}
	return nil
}

func currentVersion(evs []*Event) int64 {
	if len(evs) == 0 {
		return 0
	}
	return evs[len(evs)-1].Version
}
