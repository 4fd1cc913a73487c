package eventide

import "sync"

type (
	// keyedMutex serializes work per AggregateID while letting distinct
	// aggregates proceed in parallel. Entries are dropped once unreferenced
	keyedMutex struct {
		entries map[AggregateID]*lockEntry
		mu      sync.Mutex
	}

	lockEntry struct {
		mu   sync.Mutex
		refs int
	}
)

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		entries: map[AggregateID]*lockEntry{},
	}
}

// lock blocks until id is exclusively held and returns its release function
func (k *keyedMutex) lock(id AggregateID) func() {
	k.mu.Lock()
	entry, ok := k.entries[id]
	if !ok {
		entry = &lockEntry{}
		k.entries[id] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		k.mu.Lock()
		defer k.mu.Unlock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.entries, id)
		}
	}
}
