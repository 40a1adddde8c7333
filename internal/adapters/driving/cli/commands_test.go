package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driving"
)

func TestIngestCmd_FilesAndDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.html"),
		[]byte("<!-- saved from url=(0021)https://example.com/a --><p>a</p>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("skip"), 0644))
	single := filepath.Join(t.TempDir(), "c.html")
	require.NoError(t, os.WriteFile(single, []byte("<p>c</p>"), 0644))

	ingest := &mockIngestService{}
	setupServices(t, ingest, &mockClusterService{})

	out, err := execute(t, "", "ingest", dir, single)

	require.NoError(t, err)
	require.Len(t, ingest.batches, 1)
	assert.Len(t, ingest.batches[0], 2)
	requireContainsAll(t, out, "https://example.com/a", "Ingested 2 pages.")
}

func TestIngestCmd_PrintsClusters(t *testing.T) {
	file := filepath.Join(t.TempDir(), "a.html")
	require.NoError(t, os.WriteFile(file, []byte("<p>a</p>"), 0644))
	ingest := &mockIngestService{results: []driving.IngestResult{{
		URL:      "https://example.com/a",
		Clusters: map[string]string{"markdown-minilm": "11", "direct-minilm": "22"},
		Founded:  []string{"direct-minilm"},
	}}}
	setupServices(t, ingest, &mockClusterService{})

	out, err := execute(t, "", "ingest", "--url", "https://example.com/a", file)

	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", ingest.batches[0][0].URL)
	assert.Regexp(t, `direct-minilm\s+22 \(new\)`, out)
	assert.Regexp(t, `markdown-minilm\s+11\n`, out)
}

func TestIngestCmd_ReportsFailure(t *testing.T) {
	file := filepath.Join(t.TempDir(), "a.html")
	require.NoError(t, os.WriteFile(file, []byte("<p>a</p>"), 0644))
	setupServices(t, &mockIngestService{err: errors.New("embedder down")}, &mockClusterService{})

	_, err := execute(t, "", "ingest", "--url", "", file)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedder down")
}

func TestIngestCmd_MissingFile(t *testing.T) {
	setupServices(t, &mockIngestService{}, &mockClusterService{})

	_, err := execute(t, "", "ingest", filepath.Join(t.TempDir(), "nope.html"))

	assert.Error(t, err)
}

func TestClustersListCmd(t *testing.T) {
	clusters := &mockClusterService{clusters: []domain.Cluster{
		{ID: "5882666741963796313", Name: "ownership rust safety", RunID: "direct-minilm"},
	}}
	setupServices(t, &mockIngestService{}, clusters)

	out, err := execute(t, "", "clusters", "list", "--run", "direct-minilm")

	require.NoError(t, err)
	requireContainsAll(t, out, "RUN", "5882666741963796313", "ownership rust safety")
	assert.Equal(t, "direct-minilm", clusters.lastRun)
}

func TestClustersListCmd_Empty(t *testing.T) {
	setupServices(t, &mockIngestService{}, &mockClusterService{})

	out, err := execute(t, "", "clusters", "list", "--run", "")

	require.NoError(t, err)
	assert.Contains(t, out, "No clusters yet.")
}

func TestClustersPagesCmd(t *testing.T) {
	clusters := &mockClusterService{members: []string{"https://a", "https://b"}}
	setupServices(t, &mockIngestService{}, clusters)

	out, err := execute(t, "", "clusters", "pages", "42", "--run", "r")

	require.NoError(t, err)
	assert.Equal(t, "https://a\nhttps://b\n", out)
	assert.Equal(t, "r", clusters.lastRun)
}

func TestClustersPagesCmd_NotFound(t *testing.T) {
	setupServices(t, &mockIngestService{}, &mockClusterService{err: domain.ErrNotFound})

	_, err := execute(t, "", "clusters", "pages", "42")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventsCmd(t *testing.T) {
	clusters := &mockClusterService{events: []domain.EventWithClusters{{
		Event:    domain.BrowseEvent{URL: "https://a", EventType: "tab_updated", Timestamp: time.Now()},
		Clusters: map[string]string{"r2": "2", "r1": "1"},
	}}}
	setupServices(t, &mockIngestService{}, clusters)

	out, err := execute(t, "", "events")

	require.NoError(t, err)
	requireContainsAll(t, out, "https://a", "tab_updated", "r1=1 r2=2")
}

func TestEventsBucketsCmd(t *testing.T) {
	clusters := &mockClusterService{buckets: []domain.EventBucket{
		{Start: time.Now().Truncate(time.Hour), ClusterID: "1", ClusterName: "go", Count: 4},
	}}
	setupServices(t, &mockIngestService{}, clusters)

	out, err := execute(t, "", "events", "buckets", "--run", "r", "--interval", "30m", "--since", "24h")

	require.NoError(t, err)
	requireContainsAll(t, out, "BUCKET", "go", "4")
	assert.Equal(t, "r", clusters.lastQuery.RunID)
	assert.Equal(t, 30*time.Minute, clusters.lastQuery.Interval)
	assert.WithinDuration(t, time.Now().Add(-24*time.Hour), clusters.lastQuery.From, time.Minute)
}

func TestRunsCmd(t *testing.T) {
	clusters := &mockClusterService{runs: []domain.EmbeddingRun{
		{Name: "direct-minilm", Steps: []string{"html-markdown", "yake"}, Model: "all-minilm", Dimensions: 384},
		{Name: "retired"},
	}}
	setupServices(t, &mockIngestService{}, clusters)

	out, err := execute(t, "", "runs")

	require.NoError(t, err)
	requireContainsAll(t, out, "direct-minilm", "html-markdown > yake", "384", "retired")
}

func TestPipelinesCmd(t *testing.T) {
	m := newMockSettings()
	m.settings.Pipelines = []string{"markdown-minilm"}
	setupSettings(t, m)

	out, err := execute(t, "", "pipelines")

	require.NoError(t, err)
	assert.Regexp(t, `markdown-minilm\s+\S+\s+yes`, out)
	assert.Regexp(t, `raw-minilm\s+\(raw\)\s+no`, out)
}
