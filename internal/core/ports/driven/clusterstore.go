package driven

import (
	"context"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
)

// ClusterStore persists clusters and cluster assignments.
type ClusterStore interface {
	// CreateIfAbsent inserts the cluster unless (ID, RunID) already exists.
	// Returns true when this call created the row. A conflict is not an error.
	CreateIfAbsent(ctx context.Context, c domain.Cluster) (bool, error)

	// Get returns a cluster, or domain.ErrNotFound.
	Get(ctx context.Context, id, runID string) (*domain.Cluster, error)

	// List returns the clusters of a run, or of every run when runID is empty.
	List(ctx context.Context, runID string) ([]domain.Cluster, error)

	// Runs returns the ids of runs that hold at least one cluster.
	Runs(ctx context.Context) ([]string, error)

	// SaveAssignment appends an assignment.
	// A second assignment for (DocumentKey, RunID) returns domain.ErrAlreadyExists.
	SaveAssignment(ctx context.Context, a domain.ClusterAssignment) error

	// Assignment returns the assignment of a document in a run, or domain.ErrNotFound.
	Assignment(ctx context.Context, documentKey, runID string) (*domain.ClusterAssignment, error)

	// Members returns the document keys assigned to a cluster, oldest first.
	Members(ctx context.Context, clusterID, runID string) ([]string, error)
}
