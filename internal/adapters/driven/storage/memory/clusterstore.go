package memory

import (
	"context"
	"sort"
	"time"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
)

// Ensure ClusterStore implements the interface.
var _ driven.ClusterStore = (*ClusterStore)(nil)

// ClusterStore is an in-memory implementation of driven.ClusterStore.
type ClusterStore struct {
	s *Store
}

// CreateIfAbsent inserts a cluster unless one exists for (ID, RunID).
func (c *ClusterStore) CreateIfAbsent(_ context.Context, cluster domain.Cluster) (bool, error) {
	if cluster.ID == "" || cluster.RunID == "" {
		return false, domain.ErrInvalidInput
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	k := runKey{id: cluster.ID, runID: cluster.RunID}
	if _, ok := c.s.clusters[k]; ok {
		return false, nil
	}
	c.s.clusters[k] = cluster
	c.s.clusterOrder = append(c.s.clusterOrder, k)
	return true, nil
}

// Get retrieves a cluster.
func (c *ClusterStore) Get(_ context.Context, id, runID string) (*domain.Cluster, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	cluster, ok := c.s.clusters[runKey{id: id, runID: runID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &cluster, nil
}

// List returns clusters in creation order.
func (c *ClusterStore) List(_ context.Context, runID string) ([]domain.Cluster, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	out := make([]domain.Cluster, 0, len(c.s.clusterOrder))
	for _, k := range c.s.clusterOrder {
		if runID != "" && k.runID != runID {
			continue
		}
		out = append(out, c.s.clusters[k])
	}
	return out, nil
}

// Runs returns the sorted ids of runs holding clusters.
func (c *ClusterStore) Runs(_ context.Context) ([]string, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	seen := make(map[string]bool)
	runs := []string{}
	for _, k := range c.s.clusterOrder {
		if !seen[k.runID] {
			seen[k.runID] = true
			runs = append(runs, k.runID)
		}
	}
	sort.Strings(runs)
	return runs, nil
}

// SaveAssignment appends an assignment.
func (c *ClusterStore) SaveAssignment(_ context.Context, a domain.ClusterAssignment) error {
	if a.DocumentKey == "" || a.ClusterID == "" || a.RunID == "" {
		return domain.ErrInvalidInput
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	k := runKey{id: a.DocumentKey, runID: a.RunID}
	if _, ok := c.s.assignments[k]; ok {
		return domain.ErrAlreadyExists
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	c.s.assignments[k] = a
	c.s.assignmentOrder = append(c.s.assignmentOrder, k)
	return nil
}

// Assignment retrieves the assignment of a document in a run.
func (c *ClusterStore) Assignment(_ context.Context, documentKey, runID string) (*domain.ClusterAssignment, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	a, ok := c.s.assignments[runKey{id: documentKey, runID: runID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

// Members returns the documents assigned to a cluster in assignment order.
func (c *ClusterStore) Members(_ context.Context, clusterID, runID string) ([]string, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	members := []string{}
	for _, k := range c.s.assignmentOrder {
		if k.runID != runID {
			continue
		}
		if c.s.assignments[k].ClusterID == clusterID {
			members = append(members, k.id)
		}
	}
	return members, nil
}
