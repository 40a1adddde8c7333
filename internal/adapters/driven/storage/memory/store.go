package memory

import (
	"sync"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
)

type runKey struct {
	id    string
	runID string
}

// Store holds pages, events, embeddings and clusters in process memory.
// The per-concern adapters returned by its accessors share one lock, so
// similarity queries see assignments as soon as they are saved.
type Store struct {
	mu sync.RWMutex

	pages map[string]domain.Page

	events []domain.BrowseEvent

	clusters     map[runKey]domain.Cluster
	clusterOrder []runKey

	assignments     map[runKey]domain.ClusterAssignment
	assignmentOrder []runKey

	embeddings     map[runKey]domain.Embedding
	embeddingOrder []runKey
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		pages:       make(map[string]domain.Page),
		clusters:    make(map[runKey]domain.Cluster),
		assignments: make(map[runKey]domain.ClusterAssignment),
		embeddings:  make(map[runKey]domain.Embedding),
	}
}

// PageStore returns a PageStore backed by this store.
func (s *Store) PageStore() driven.PageStore {
	return &PageStore{s: s}
}

// EventStore returns an EventStore backed by this store.
func (s *Store) EventStore() driven.EventStore {
	return &EventStore{s: s}
}

// ClusterStore returns a ClusterStore backed by this store.
func (s *Store) ClusterStore() driven.ClusterStore {
	return &ClusterStore{s: s}
}

// SimilarityIndex returns a SimilarityIndex backed by this store.
func (s *Store) SimilarityIndex() driven.SimilarityIndex {
	return &SimilarityIndex{s: s}
}

// Close releases nothing; it satisfies the same lifecycle as durable stores.
func (s *Store) Close() error {
	return nil
}

// clustersOf maps run id to cluster id for a document. Caller holds the lock.
func (s *Store) clustersOf(documentKey string) map[string]string {
	var out map[string]string
	for _, k := range s.assignmentOrder {
		if k.id != documentKey {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[k.runID] = s.assignments[k].ClusterID
	}
	return out
}
