package store

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
)

type inMemory struct {
	mu      sync.RWMutex
	max     int
	storage map[string][]*Event
}

// NewMemoryStore returns EventStore keeping events in memory,
// max <= 0 means DefaultMaxEvents.
func NewMemoryStore(max int) EventStore {
	if max <= 0 {
		max = DefaultMaxEvents
	}
	return &inMemory{max: max}
}

func (m *inMemory) Add(_ context.Context, ev *Event) error {
	if ev == nil || ev.Source == "" {
		return errors.New("invalid event: source is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage == nil {
		// create on first use
		m.storage = make(map[string][]*Event)
	}
	list := append(m.storage[ev.Source], ev)
	if len(list) > m.max {
		list = slices.Clone(list[len(list)-m.max:])
	}
	m.storage[ev.Source] = list
	return nil
}

func (m *inMemory) Events(_ context.Context, source string) ([]*Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.storage == nil {
		return nil, nil
	}
	return slices.Clone(m.storage[source]), nil
}

func (m *inMemory) Sources(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]string, 0, len(m.storage))
	for source := range m.storage {
		list = append(list, source)
	}
	sort.Strings(list)
	return list, nil
}

func (m *inMemory) Reset(_ context.Context, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage != nil {
		delete(m.storage, source)
	}
	return nil
}
