package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driving"
)

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	pingErr     error
	storage     [2]string
	provider    domain.AIProvider
	model       string
	saved       int
}

func newMockSettings() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	m.saved++
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, _ string) error {
	m.provider, m.model = p, model
	return nil
}

func (m *mockSettingsService) SetStorage(b domain.StorageBackend, location string) error {
	if !b.IsValid() {
		return domain.ErrInvalidInput
	}
	m.storage = [2]string{string(b), location}
	return nil
}

func (m *mockSettingsService) Validate() error                { return m.validateErr }
func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.pingErr }
func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// mockIngestService implements driving.IngestService for testing.
type mockIngestService struct {
	results []driving.IngestResult
	err     error
	batches [][]domain.Page
}

func (m *mockIngestService) LogEvent(_ context.Context, e domain.BrowseEvent) (*driving.IngestResult, error) {
	return &driving.IngestResult{URL: e.URL}, m.err
}

func (m *mockIngestService) ProcessPage(_ context.Context, p domain.Page) (*driving.IngestResult, error) {
	return &driving.IngestResult{URL: p.URL}, m.err
}

func (m *mockIngestService) IngestBatch(_ context.Context, pages []domain.Page) ([]driving.IngestResult, error) {
	m.batches = append(m.batches, pages)
	if m.results != nil {
		return m.results, m.err
	}
	out := make([]driving.IngestResult, len(pages))
	for i, p := range pages {
		out[i] = driving.IngestResult{URL: p.URL}
	}
	return out, m.err
}

// mockClusterService implements driving.ClusterService for testing.
type mockClusterService struct {
	clusters []domain.Cluster
	members  []string
	runs     []domain.EmbeddingRun
	events   []domain.EventWithClusters
	buckets  []domain.EventBucket
	err      error

	lastRun   string
	lastQuery domain.BucketQuery
}

func (m *mockClusterService) Clusters(_ context.Context, runID string) ([]domain.Cluster, error) {
	m.lastRun = runID
	return m.clusters, m.err
}

func (m *mockClusterService) Members(_ context.Context, _, runID string) ([]string, error) {
	m.lastRun = runID
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

// setupServices installs mock services for one test.
func setupServices(t *testing.T, ingest *mockIngestService, clusters *mockClusterService) {
	t.Helper()
	SetBootstrap(func(context.Context) (*Services, error) {
		return &Services{Ingest: ingest, Clusters: clusters}, nil
	})
	t.Cleanup(func() { SetBootstrap(nil) })
}

// setupSettings installs a mock settings service for one test.
func setupSettings(t *testing.T, m *mockSettingsService) {
	t.Helper()
	old := settingsService
	settingsService = m
	t.Cleanup(func() { settingsService = old })
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

func requireContainsAll(t *testing.T, out string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		require.Contains(t, out, p)
	}
}
