package driving

import (
	"context"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
)

// ClusterService answers read queries over clusters and events.
type ClusterService interface {
	// Clusters lists the clusters of a run, or of all runs when runID is empty.
	Clusters(ctx context.Context, runID string) ([]domain.Cluster, error)

	// Members lists the page URLs assigned to a cluster.
	Members(ctx context.Context, clusterID, runID string) ([]string, error)

	// Runs describes the registered embedding runs.
	Runs(ctx context.Context) ([]domain.EmbeddingRun, error)

	// Events lists every recorded event with its clusters.
	Events(ctx context.Context) ([]domain.EventWithClusters, error)

	// EventBuckets counts events per time bucket and cluster.
	EventBuckets(ctx context.Context, query domain.BucketQuery) ([]domain.EventBucket, error)
}
