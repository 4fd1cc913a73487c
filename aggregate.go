package eventide

import (
	"encoding/json"
	"fmt"
	"time"
)

type (
	// Root is what a Repository needs from an aggregate. *Aggregate[T]
	// implements it, as does any domain type embedding one
	Root interface {
		ID() AggregateID
		Version() int64
		OriginalVersion() int64
		Uncommitted() []*Event
		MarkCommitted()
		LoadFromHistory([]*Event) error
	}

	// Aggregate maintains aggregate state and tracks events raised since the
	// last save. It is not safe for concurrent use
	Aggregate[T any] struct {
		value       T
		appliers    Appliers[T]
		id          AggregateID
		uncommitted []*Event
		version     int64
	}
)

// NewAggregate returns a blank aggregate bound to its applier table
func NewAggregate[T any](
	id AggregateID, appliers Appliers[T], initValue T,
) *Aggregate[T] {
	return &Aggregate[T]{
		id:          id,
		appliers:    appliers,
		value:       initValue,
		uncommitted: []*Event{},
	}
}

// ID returns the aggregate's identifier
func (a *Aggregate[_]) ID() AggregateID {
	return a.id
}

// Value returns the aggregate's current state
func (a *Aggregate[T]) Value() T {
	return a.value
}

// Version returns the number of events ever applied, replayed or raised
func (a *Aggregate[_]) Version() int64 {
	return a.version
}

// OriginalVersion returns the version as of the last successful save. It is
// the expected version for the next append
func (a *Aggregate[_]) OriginalVersion() int64 {
	return a.version - int64(len(a.uncommitted))
}

// Uncommitted returns copies of the events raised since the last save
func (a *Aggregate[_]) Uncommitted() []*Event {
	return cloneEvents(a.uncommitted)
}

// MarkCommitted clears the uncommitted buffer after a successful append
func (a *Aggregate[_]) MarkCommitted() {
	a.uncommitted = []*Event{}
}

// LoadFromHistory replays committed events into a blank aggregate. Events
// are applied but never buffered as uncommitted
func (a *Aggregate[T]) LoadFromHistory(evs []*Event) error {
	if a.version != 0 || len(a.uncommitted) != 0 {
		return fmt.Errorf("%w: %s at version %d", ErrNotBlank, a.id, a.version)
	}
	for _, ev := range evs {
		if a.version+1 != ev.Version {
			return fmt.Errorf("%w: %s expected version %d, got %d",
				ErrVersionGap, a.id, a.version+1, ev.Version,
			)
		}
		if err := a.apply(ev); err != nil {
			return err
		}
		a.version = ev.Version
	}
	return nil
}

func (a *Aggregate[T]) raise(typ EventType, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	ev := &Event{
		Timestamp:   time.Now(),
		AggregateID: a.id,
		Type:        typ,
		Data:        data,
		Version:     a.version + 1,
	}
	if err := a.apply(ev); err != nil {
		return err
	}
	a.version = ev.Version
	a.uncommitted = append(a.uncommitted, ev)
	return nil
}

func (a *Aggregate[T]) apply(ev *Event) error {
	apply, ok := a.appliers[ev.Type]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnboundEventType, ev.Type)
	}
	val, err := apply(a.value, ev)
	if err != nil {
		return err
	}
	a.value = val
	return nil
}

// Raise marshals the value, applies it through the bound applier, stamps the
// next version and buffers the event as uncommitted. Aggregates call it from
// their own intent methods after checking invariants
func Raise[T, V any](ag *Aggregate[T], typ EventType, value V) error {
	return ag.raise(typ, value)
}
