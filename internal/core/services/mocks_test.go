package services

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
)

// stubIndex answers Count and Nearest from fixed values.
type stubIndex struct {
	mu           sync.Mutex
	count        int
	nearest      *driven.Neighbour
	countErr     error
	nearestErr   error
	nearestCalls int
}

func (s *stubIndex) Insert(_ context.Context, _ domain.Embedding) error { return nil }

func (s *stubIndex) Nearest(_ context.Context, _ string, _ []float32) (*driven.Neighbour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nearestCalls++
	return s.nearest, s.nearestErr
}

func (s *stubIndex) Count(_ context.Context, _ string) (int, error) {
	return s.count, s.countErr
}

// stubExtractor returns fixed keywords and records the requested count.
type stubExtractor struct {
	keywords []string
	err      error
	asked    int
	calls    int
}

func (s *stubExtractor) Extract(_ string, n int) ([]string, error) {
	s.calls++
	s.asked = n
	if s.err != nil {
		return nil, s.err
	}
	if n < len(s.keywords) {
		return s.keywords[:n], nil
	}
	return s.keywords, nil
}

// racingClusterStore reports every cluster missing and loses every create.
type racingClusterStore struct {
	driven.ClusterStore
}

func (racingClusterStore) Get(_ context.Context, _, _ string) (*domain.Cluster, error) {
	return nil, domain.ErrNotFound
}

func (racingClusterStore) CreateIfAbsent(_ context.Context, _ domain.Cluster) (bool, error) {
	return false, nil
}

// vectorEmbedder returns configured vectors per input text and a
// deterministic hash-derived vector otherwise.
type vectorEmbedder struct {
	mu      sync.Mutex
	dims    int
	vectors map[string][]float32
	inputs  []string
}

func newVectorEmbedder(dims int) *vectorEmbedder {
	return &vectorEmbedder{dims: dims, vectors: make(map[string][]float32)}
}

func (v *vectorEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.inputs = append(v.inputs, text)
	if vec, ok := v.vectors[text]; ok {
		return vec, nil
	}
	vec := make([]float32, v.dims)
	for i := range vec {
		h := fnv.New32a()
		_, _ = h.Write([]byte{byte(i)})
		_, _ = h.Write([]byte(text))
		vec[i] = float32(h.Sum32()%1000)/1000 - 0.5
	}
	return vec, nil
}

func (v *vectorEmbedder) Dimensions() int              { return v.dims }
func (v *vectorEmbedder) ModelName() string            { return "fake-minilm" }
func (v *vectorEmbedder) Ping(_ context.Context) error { return nil }
func (v *vectorEmbedder) Close() error                 { return nil }

func (v *vectorEmbedder) calls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.inputs)
}

// failingStep always fails.
type failingStep struct{}

func (failingStep) Name() string { return "explode" }

func (failingStep) Process(_ context.Context, _ string) (string, error) {
	return "", errStep
}

var errStep = errors.New("step exploded")

// recordingMetrics counts metric calls.
type recordingMetrics struct {
	mu       sync.Mutex
	events   int
	ignored  int
	skipped  int
	outcomes map[string]int
	failures map[string]int
	timings  int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{outcomes: make(map[string]int), failures: make(map[string]int)}
}

func (m *recordingMetrics) EventRecorded(ignored bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ignored {
		m.ignored++
		return
	}
	m.events++
}

func (m *recordingMetrics) PageSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipped++
}

func (m *recordingMetrics) Assigned(_ string, outcome string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[outcome]++
}

func (m *recordingMetrics) PipelineFailed(runID, step string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[runID+"/"+step]++
}

func (m *recordingMetrics) PipelineDuration(_ string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timings++
}
