package driven

import (
	"context"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
)

// PageStore persists pages keyed by URL.
type PageStore interface {
	// Get returns a page, or domain.ErrNotFound.
	Get(ctx context.Context, url string) (*domain.Page, error)

	// Save records a page. Content is only written when the stored page
	// has none; existing content is never replaced.
	Save(ctx context.Context, page domain.Page) error
}

// EventStore persists browse events.
type EventStore interface {
	// Save records an event.
	Save(ctx context.Context, event domain.BrowseEvent) error

	// List returns every event, oldest first, with the cluster of its page
	// in each run.
	List(ctx context.Context) ([]domain.EventWithClusters, error)
}
