package memory

import (
	"context"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
)

// Ensure EventStore implements the interface.
var _ driven.EventStore = (*EventStore)(nil)

// EventStore is an in-memory implementation of driven.EventStore.
type EventStore struct {
	s *Store
}

// Save appends an event. Page content is kept by the page store only.
func (e *EventStore) Save(_ context.Context, event domain.BrowseEvent) error {
	if event.ID == "" {
		return domain.ErrInvalidInput
	}
	event.Content = nil
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	e.s.events = append(e.s.events, event)
	return nil
}

// List returns every event in insertion order with its page's clusters.
func (e *EventStore) List(_ context.Context) ([]domain.EventWithClusters, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()

	out := make([]domain.EventWithClusters, 0, len(e.s.events))
	for _, ev := range e.s.events {
		out = append(out, domain.EventWithClusters{
			Event:    ev,
			Clusters: e.s.clustersOf(ev.URL),
		})
	}
	return out, nil
}
