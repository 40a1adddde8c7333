package mcp

import (
	"context"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driving"
)

// mockClusterService is a mock implementation of driving.ClusterService.
type mockClusterService struct {
	clusters []domain.Cluster
	members  []string
	runs     []domain.EmbeddingRun
	events   []domain.EventWithClusters
	buckets  []domain.EventBucket
	err      error

	lastRun    string
	lastQuery  domain.BucketQuery
	lastMember [2]string
}

func (m *mockClusterService) Clusters(_ context.Context, runID string) ([]domain.Cluster, error) {
	m.lastRun = runID
	return m.clusters, m.err
}

func (m *mockClusterService) Members(_ context.Context, clusterID, runID string) ([]string, error) {
	m.lastMember = [2]string{clusterID, runID}
	return m.members, m.err
}

func (m *mockClusterService) Runs(_ context.Context) ([]domain.EmbeddingRun, error) {
	return m.runs, m.err
}

func (m *mockClusterService) Events(_ context.Context) ([]domain.EventWithClusters, error) {
	return m.events, m.err
}

func (m *mockClusterService) EventBuckets(_ context.Context, q domain.BucketQuery) ([]domain.EventBucket, error) {
	m.lastQuery = q
	return m.buckets, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result *driving.IngestResult
	err    error
	events []domain.BrowseEvent
}

func (m *mockIngestService) LogEvent(_ context.Context, e domain.BrowseEvent) (*driving.IngestResult, error) {
	m.events = append(m.events, e)
	return m.result, m.err
}

func (m *mockIngestService) ProcessPage(_ context.Context, _ domain.Page) (*driving.IngestResult, error) {
	return m.result, m.err
}

func (m *mockIngestService) IngestBatch(_ context.Context, _ []domain.Page) ([]driving.IngestResult, error) {
	return nil, m.err
}
