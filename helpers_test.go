package eventide_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/eventide"
)

type (
	CounterState struct {
		Value int
	}

	Counter = eventide.Aggregate[*CounterState]

	storeFactory func(*testing.T, eventide.EventPublisher) eventide.EventStore

	recorder struct {
		events []*eventide.Event
		mu     sync.Mutex
	}
)

const (
	EventIncremented eventide.EventType = "counter.incremented"
	EventDecremented eventide.EventType = "counter.decremented"
	EventReset       eventide.EventType = "counter.reset"
)

var counterAppliers = eventide.Appliers[*CounterState]{
	EventIncremented: eventide.MakeApplier(
		func(s *CounterState, _ *eventide.Event, n int) *CounterState {
			return &CounterState{Value: s.Value + n}
		},
	),
	EventDecremented: eventide.MakeApplier(
		func(s *CounterState, _ *eventide.Event, n int) *CounterState {
			return &CounterState{Value: s.Value - n}
		},
	),
	EventReset: eventide.MakeSignal(
		func(*CounterState, *eventide.Event) *CounterState {
			return &CounterState{}
		},
	),
}

func newCounter(id eventide.AggregateID) *Counter {
	return eventide.NewAggregate(id, counterAppliers, &CounterState{})
}

func storeFactories() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(
			_ *testing.T, pub eventide.EventPublisher,
		) eventide.EventStore {
			return eventide.NewMemoryStore(pub)
		},
		"redis": func(
			t *testing.T, pub eventide.EventPublisher,
		) eventide.EventStore {
			server := miniredis.RunT(t)
			store, err := eventide.NewRedisStore(
				context.Background(),
				eventide.RedisConfig{Addr: server.Addr(), Prefix: "test"},
				pub,
			)
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })
			return store
		},
		"bolt": func(
			t *testing.T, pub eventide.EventPublisher,
		) eventide.EventStore {
			path := filepath.Join(t.TempDir(), "events.db")
			store, err := eventide.NewBoltStore(
				eventide.BoltConfig{Path: path}, pub,
			)
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })
			return store
		},
	}
}

func forEachStore(t *testing.T, fn func(*testing.T, storeFactory)) {
	for name, mk := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			fn(t, mk)
		})
	}
}

func makeEvents(
	id eventide.AggregateID, fromVersion int64, deltas ...int,
) []*eventide.Event {
	res := make([]*eventide.Event, len(deltas))
	for i, d := range deltas {
		data, _ := json.Marshal(d)
		res[i] = &eventide.Event{
			Timestamp:   time.Now(),
			AggregateID: id,
			Type:        EventIncremented,
			Data:        data,
			Version:     fromVersion + int64(i) + 1,
		}
	}
	return res
}

func (r *recorder) handle(_ context.Context, ev *eventide.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) versions() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]int64, len(r.events))
	for i, ev := range r.events {
		res[i] = ev.Version
	}
	return res
}

func counterValue(
	t *testing.T, reg *prometheus.Registry, name string,
	labels map[string]string,
) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metrics
				}
			}
			total += m.GetCounter().GetValue()
		}
	}
	return total
}
