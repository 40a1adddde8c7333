package driven

import (
	"context"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
)

// Neighbour is the single nearest stored embedding returned by a
// similarity query, together with the cluster it was assigned to.
type Neighbour struct {
	DocumentKey string
	ClusterID   string
	Vector      []float32
}

// SimilarityIndex stores embeddings and answers nearest neighbour queries.
// Queries never cross embedding runs.
type SimilarityIndex interface {
	// Insert stores an embedding. Embeddings are immutable.
	Insert(ctx context.Context, e domain.Embedding) error

	// Nearest returns the closest embedding in runID by the index's
	// native metric, or nil when the run holds no assigned embeddings.
	// Only embeddings with a cluster assignment in runID are candidates.
	Nearest(ctx context.Context, runID string, vector []float32) (*Neighbour, error)

	// Count returns the number of assigned embeddings in runID.
	Count(ctx context.Context, runID string) (int, error)
}
