package driving

import (
	"context"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
)

// IngestService records browse events and clusters their pages.
type IngestService interface {
	// LogEvent records an event and, when the page is new or has no content
	// yet, clusters it through every enabled pipeline. Ignored URLs are
	// dropped and return a result with Ignored set.
	LogEvent(ctx context.Context, event domain.BrowseEvent) (*IngestResult, error)

	// ProcessPage clusters one page through every enabled pipeline.
	// Pipelines fail independently; failures are joined.
	ProcessPage(ctx context.Context, page domain.Page) (*IngestResult, error)

	// IngestBatch processes pages concurrently, one worker per page.
	IngestBatch(ctx context.Context, pages []domain.Page) ([]IngestResult, error)
}

// IngestResult reports what happened to one page.
type IngestResult struct {
	// URL is the document key.
	URL string `json:"url"`

	// EventID is set when an event was recorded.
	EventID string `json:"event_id,omitempty"`

	// Ignored is true when the URL matched an ignore rule.
	Ignored bool `json:"ignored,omitempty"`

	// Skipped is true when the page already had content.
	Skipped bool `json:"skipped,omitempty"`

	// Clusters maps run id to assigned cluster id.
	Clusters map[string]string `json:"clusters,omitempty"`

	// Founded lists the runs in which this page founded its cluster.
	Founded []string `json:"founded,omitempty"`
}
