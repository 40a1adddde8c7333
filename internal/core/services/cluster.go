package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driving"
)

// Ensure ClusterService implements the interface.
var _ driving.ClusterService = (*ClusterService)(nil)

// DefaultBucketInterval is the event bucket width when none is given.
const DefaultBucketInterval = time.Hour

// ClusterService answers read queries over clusters, runs and events.
type ClusterService struct {
	clusters  driven.ClusterStore
	events    driven.EventStore
	pipelines driven.PipelineRegistry
}

// NewClusterService creates a new cluster service.
func NewClusterService(
	clusters driven.ClusterStore,
	events driven.EventStore,
	pipelines driven.PipelineRegistry,
) *ClusterService {
	return &ClusterService{
		clusters:  clusters,
		events:    events,
		pipelines: pipelines,
	}
}

// Clusters lists the clusters of a run, or of every run when runID is empty.
func (s *ClusterService) Clusters(ctx context.Context, runID string) ([]domain.Cluster, error) {
	clusters, err := s.clusters.List(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("list clusters: %w", err)
	}
	return clusters, nil
}

// Members lists the pages of a cluster. runID defaults to the only run
// holding clusterID when empty.
func (s *ClusterService) Members(ctx context.Context, clusterID, runID string) ([]string, error) {
	if clusterID == "" {
		return nil, fmt.Errorf("%w: cluster id is required", domain.ErrInvalidInput)
	}

	if runID == "" {
		resolved, err := s.runOf(ctx, clusterID)
		if err != nil {
			return nil, err
		}
		runID = resolved
	}

	members, err := s.clusters.Members(ctx, clusterID, runID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// Runs describes every registered pipeline plus any stored run that is no
// longer registered.
func (s *ClusterService) Runs(ctx context.Context) ([]domain.EmbeddingRun, error) {
	var runs []domain.EmbeddingRun
	known := make(map[string]bool)
	if s.pipelines != nil {
		for _, p := range s.pipelines.List() {
			runs = append(runs, p.Describe())
			known[p.Name()] = true
		}
	}

	stored, err := s.clusters.Runs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	for _, id := range stored {
		if !known[id] {
			runs = append(runs, domain.EmbeddingRun{Name: id})
		}
	}
	return runs, nil
}

// Events lists every recorded event with its clusters.
func (s *ClusterService) Events(ctx context.Context) ([]domain.EventWithClusters, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// EventBuckets counts clustered events of one run per time bucket and
// cluster. Buckets are ordered by start time, then cluster id. A zero From
// or To leaves that side of the range open.
func (s *ClusterService) EventBuckets(ctx context.Context, query domain.BucketQuery) ([]domain.EventBucket, error) {
	if query.RunID == "" {
		return nil, fmt.Errorf("%w: run is required", domain.ErrInvalidInput)
	}
	interval := query.Interval
	if interval <= 0 {
		interval = DefaultBucketInterval
	}

	events, err := s.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	type bucketKey struct {
		start     time.Time
		clusterID string
	}
	counts := make(map[bucketKey]int)
	for _, ev := range events {
		clusterID, ok := ev.Clusters[query.RunID]
		if !ok {
			continue
		}
		ts := ev.Event.Timestamp
		if !query.From.IsZero() && ts.Before(query.From) {
			continue
		}
		if !query.To.IsZero() && !ts.Before(query.To) {
			continue
		}
		counts[bucketKey{start: ts.Truncate(interval), clusterID: clusterID}]++
	}

	names, err := s.names(ctx, query.RunID)
	if err != nil {
		return nil, err
	}

	buckets := make([]domain.EventBucket, 0, len(counts))
	for k, n := range counts {
		buckets = append(buckets, domain.EventBucket{
			Start:       k.start,
			ClusterID:   k.clusterID,
			ClusterName: names[k.clusterID],
			RunID:       query.RunID,
			Count:       n,
		})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if !buckets[i].Start.Equal(buckets[j].Start) {
			return buckets[i].Start.Before(buckets[j].Start)
		}
		return buckets[i].ClusterID < buckets[j].ClusterID
	})
	return buckets, nil
}

func (s *ClusterService) names(ctx context.Context, runID string) (map[string]string, error) {
	clusters, err := s.clusters.List(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("list clusters: %w", err)
	}
	names := make(map[string]string, len(clusters))
	for _, c := range clusters {
		names[c.ID] = c.Name
	}
	return names, nil
}

// runOf finds the single run holding clusterID.
func (s *ClusterService) runOf(ctx context.Context, clusterID string) (string, error) {
	clusters, err := s.clusters.List(ctx, "")
	if err != nil {
		return "", fmt.Errorf("list clusters: %w", err)
	}
	var runs []string
	for _, c := range clusters {
		if c.ID == clusterID {
			runs = append(runs, c.RunID)
		}
	}
	switch len(runs) {
	case 0:
		return "", fmt.Errorf("cluster %s: %w", clusterID, domain.ErrNotFound)
	case 1:
		return runs[0], nil
	default:
		return "", fmt.Errorf("%w: cluster %s exists in runs %v, pass a run", domain.ErrInvalidInput, clusterID, runs)
	}
}
