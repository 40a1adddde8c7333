package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagecluster/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
	"github.com/custodia-labs/pagecluster/internal/keywords/yake"
	"github.com/custodia-labs/pagecluster/internal/normalisers/html"
	"github.com/custodia-labs/pagecluster/internal/preprocessing"
)

const rustMarkup = "<html><body><h1>Rust Ownership</h1><p>Rust enforces memory safety...</p></body></html>"

func strPtr(s string) *string { return &s }

type ingestFixture struct {
	store    *memory.Store
	embedder *vectorEmbedder
	service  *IngestService
}

func newIngestFixture(t *testing.T, pipelines ...driven.Pipeline) *ingestFixture {
	t.Helper()
	return newIngestFixtureOn(t, memory.NewStore(), pipelines...)
}

func newIngestFixtureOn(t *testing.T, store *memory.Store, pipelines ...driven.Pipeline) *ingestFixture {
	t.Helper()

	registry := preprocessing.NewRegistry(0)
	for _, p := range pipelines {
		require.NoError(t, registry.Register(p))
	}

	service := NewIngestService(
		store.PageStore(), store.EventStore(), store.ClusterStore(), store.SimilarityIndex(), registry,
		NewAssignmentEngine(store.SimilarityIndex()),
		NewClusterNamer(store.ClusterStore(), yake.New(), DefaultNameKeywords),
	)
	service.SetNameNormaliser(html.New())
	return &ingestFixture{store: store, service: service}
}

func rawPipeline(name string, embedder driven.EmbeddingService) driven.Pipeline {
	return preprocessing.NewPipeline(name, embedder)
}

func TestIngestService_ProcessPage_RustOwnership(t *testing.T) {
	ctx := context.Background()
	embedder := newVectorEmbedder(8)
	direct := preprocessing.NewPipeline("direct-minilm", embedder,
		html.New(), yake.NewStep(yake.New(), 15))
	f := newIngestFixture(t, direct)

	result, err := f.service.ProcessPage(ctx, domain.Page{URL: urlA, Content: strPtr(rustMarkup)})

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"direct-minilm": hashA}, result.Clusters)
	assert.Equal(t, []string{"direct-minilm"}, result.Founded)

	cluster, err := f.store.ClusterStore().Get(ctx, hashA, "direct-minilm")
	require.NoError(t, err)
	assert.Equal(t, "ownership rust safety enforces memory", cluster.Name)
	assert.ElementsMatch(t,
		[]string{"rust", "ownership", "memory", "safety", "enforces"},
		strings.Fields(cluster.Name))

	members, err := f.store.ClusterStore().Members(ctx, hashA, "direct-minilm")
	require.NoError(t, err)
	assert.Equal(t, []string{urlA}, members)
}

func TestIngestService_ProcessPage_SimilarPageJoins(t *testing.T) {
	ctx := context.Background()
	embedder := newVectorEmbedder(2)
	embedder.vectors["<p>first</p>"] = []float32{1, 0}
	embedder.vectors["<p>second</p>"] = []float32{4, 2.999999}
	embedder.vectors["<p>third</p>"] = []float32{4, 3}
	f := newIngestFixture(t, rawPipeline("raw", embedder))

	first, err := f.service.ProcessPage(ctx, domain.Page{URL: urlA, Content: strPtr("<p>first</p>")})
	require.NoError(t, err)
	second, err := f.service.ProcessPage(ctx, domain.Page{URL: urlB, Content: strPtr("<p>second</p>")})
	require.NoError(t, err)
	third, err := f.service.ProcessPage(ctx, domain.Page{URL: "https://example.com/c", Content: strPtr("<p>third</p>")})
	require.NoError(t, err)

	assert.Equal(t, hashA, first.Clusters["raw"])
	assert.Equal(t, hashA, second.Clusters["raw"])
	assert.Empty(t, second.Founded)
	// The nearest neighbour of the third page is the second, which it joins.
	assert.Equal(t, hashA, third.Clusters["raw"])

	members, err := f.store.ClusterStore().Members(ctx, hashA, "raw")
	require.NoError(t, err)
	assert.Equal(t, []string{urlA, urlB, "https://example.com/c"}, members)
}

func TestIngestService_ProcessPage_DistantPageFounds(t *testing.T) {
	ctx := context.Background()
	embedder := newVectorEmbedder(2)
	embedder.vectors["<p>first</p>"] = []float32{1, 0}
	embedder.vectors["<p>other</p>"] = []float32{4, 3}
	f := newIngestFixture(t, rawPipeline("raw", embedder))

	_, err := f.service.ProcessPage(ctx, domain.Page{URL: urlA, Content: strPtr("<p>first</p>")})
	require.NoError(t, err)
	result, err := f.service.ProcessPage(ctx, domain.Page{URL: urlB, Content: strPtr("<p>other</p>")})
	require.NoError(t, err)

	assert.Equal(t, hashB, result.Clusters["raw"])
	assert.Equal(t, []string{"raw"}, result.Founded)

	clusters, err := f.store.ClusterStore().List(ctx, "raw")
	require.NoError(t, err)
	assert.Len(t, clusters, 2)
}

func TestIngestService_ProcessPage_PipelinesAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	embedder := newVectorEmbedder(2)
	embedder.vectors["<p>a</p>"] = []float32{1, 0}
	embedder.vectors["<p>b</p>"] = []float32{1, 0}

	// Page a is only seen by the first run.
	before := newIngestFixtureOn(t, store, rawPipeline("run-one", embedder))
	_, err := before.service.ProcessPage(ctx, domain.Page{URL: urlA, Content: strPtr("<p>a</p>")})
	require.NoError(t, err)

	after := newIngestFixtureOn(t, store, rawPipeline("run-one", embedder), rawPipeline("run-two", embedder))
	result, err := after.service.ProcessPage(ctx, domain.Page{URL: urlB, Content: strPtr("<p>b</p>")})
	require.NoError(t, err)

	assert.Equal(t, hashA, result.Clusters["run-one"])
	assert.Equal(t, hashB, result.Clusters["run-two"])
	assert.Equal(t, []string{"run-two"}, result.Founded)
}

func TestIngestService_ProcessPage_KeepsExistingAssignment(t *testing.T) {
	ctx := context.Background()
	embedder := newVectorEmbedder(4)
	f := newIngestFixture(t, rawPipeline("raw", embedder))
	page := domain.Page{URL: urlA, Content: strPtr("<p>a</p>")}

	first, err := f.service.ProcessPage(ctx, page)
	require.NoError(t, err)
	again, err := f.service.ProcessPage(ctx, page)
	require.NoError(t, err)

	assert.Equal(t, first.Clusters, again.Clusters)
	assert.Empty(t, again.Founded)
	assert.Equal(t, 1, embedder.calls())
}

func TestIngestService_ProcessPage_FailedPipelineDoesNotBlockOthers(t *testing.T) {
	ctx := context.Background()
	embedder := newVectorEmbedder(4)
	good := rawPipeline("good", embedder)
	bad := preprocessing.NewPipeline("bad", embedder, failingStep{})
	f := newIngestFixture(t, bad, good)
	metrics := newRecordingMetrics()
	f.service.SetMetrics(metrics)

	result, err := f.service.ProcessPage(ctx, domain.Page{URL: urlA, Content: strPtr("<p>a</p>")})

	require.Error(t, err)
	var perr *domain.PreprocessingError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "bad", perr.Pipeline)
	assert.Equal(t, "explode", perr.Step)
	assert.ErrorIs(t, err, errStep)

	require.NotNil(t, result)
	assert.Equal(t, map[string]string{"good": hashA}, result.Clusters)
	assert.Equal(t, 1, metrics.failures["bad/explode"])
	assert.Equal(t, 1, metrics.outcomes["founded"])

	_, err = f.store.ClusterStore().Assignment(ctx, urlA, "bad")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	n, err := f.store.SimilarityIndex().Count(ctx, "bad")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIngestService_ProcessPage_InvalidInput(t *testing.T) {
	f := newIngestFixture(t, rawPipeline("raw", newVectorEmbedder(2)))

	_, err := f.service.ProcessPage(context.Background(), domain.Page{Content: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.service.ProcessPage(context.Background(), domain.Page{URL: urlA})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngestService_LogEvent_Ignored(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture(t, rawPipeline("raw", newVectorEmbedder(2)))
	f.service.SetIgnore([]string{"localhost", "chrome://"})
	metrics := newRecordingMetrics()
	f.service.SetMetrics(metrics)

	result, err := f.service.LogEvent(ctx, domain.BrowseEvent{URL: "http://localhost:3000/x", Content: strPtr("<p>x</p>")})

	require.NoError(t, err)
	assert.True(t, result.Ignored)
	assert.Empty(t, result.EventID)

	events, err := f.store.EventStore().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, 1, metrics.ignored)
	assert.Zero(t, metrics.events)
}

func TestIngestService_LogEvent_ContentArrivesLater(t *testing.T) {
	ctx := context.Background()
	embedder := newVectorEmbedder(4)
	f := newIngestFixture(t, rawPipeline("raw", embedder))
	metrics := newRecordingMetrics()
	f.service.SetMetrics(metrics)

	// Without content the event is recorded but nothing is clustered.
	first, err := f.service.LogEvent(ctx, domain.BrowseEvent{URL: urlA, EventType: "tab_activated"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.EventID)
	assert.Empty(t, first.Clusters)

	second, err := f.service.LogEvent(ctx, domain.BrowseEvent{URL: urlA, Content: strPtr("<p>a</p>")})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"raw": hashA}, second.Clusters)
	assert.False(t, second.Skipped)

	third, err := f.service.LogEvent(ctx, domain.BrowseEvent{URL: urlA, Content: strPtr("<p>changed</p>")})
	require.NoError(t, err)
	assert.True(t, third.Skipped)
	assert.Equal(t, 1, embedder.calls())

	page, err := f.store.PageStore().Get(ctx, urlA)
	require.NoError(t, err)
	assert.Equal(t, "<p>a</p>", page.Text())

	events, err := f.store.EventStore().List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, map[string]string{"raw": hashA}, events[0].Clusters)
	assert.Equal(t, 3, metrics.events)
	assert.Equal(t, 1, metrics.skipped)
}

func TestIngestService_LogEvent_AssignsIDAndTimestamp(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture(t, rawPipeline("raw", newVectorEmbedder(2)))
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f.service.now = func() time.Time { return fixed }

	result, err := f.service.LogEvent(ctx, domain.BrowseEvent{URL: urlA})
	require.NoError(t, err)

	events, err := f.store.EventStore().List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, result.EventID, events[0].Event.ID)
	assert.Len(t, result.EventID, 36)
	assert.True(t, fixed.Equal(events[0].Event.Timestamp))
}

func TestIngestService_LogEvent_MissingURL(t *testing.T) {
	f := newIngestFixture(t, rawPipeline("raw", newVectorEmbedder(2)))

	_, err := f.service.LogEvent(context.Background(), domain.BrowseEvent{URL: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngestService_IngestBatch(t *testing.T) {
	ctx := context.Background()
	embedder := newVectorEmbedder(16)
	f := newIngestFixture(t, rawPipeline("raw", embedder))
	f.service.SetWorkers(3)

	pages := make([]domain.Page, 0, 12)
	for i := 0; i < 12; i++ {
		pages = append(pages, domain.Page{
			URL:     fmt.Sprintf("https://example.com/%d", i),
			Content: strPtr(fmt.Sprintf("<p>page %d</p>", i)),
		})
	}

	results, err := f.service.IngestBatch(ctx, pages)

	require.NoError(t, err)
	require.Len(t, results, len(pages))
	for i, r := range results {
		assert.Equal(t, pages[i].URL, r.URL)
		assert.NotEmpty(t, r.Clusters["raw"])
	}

	n, err := f.store.SimilarityIndex().Count(ctx, "raw")
	require.NoError(t, err)
	assert.Equal(t, len(pages), n)
}

func TestIngestService_IngestBatch_JoinsFailures(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture(t, rawPipeline("raw", newVectorEmbedder(4)))

	results, err := f.service.IngestBatch(ctx, []domain.Page{
		{URL: urlA, Content: strPtr("<p>a</p>")},
		{URL: urlB},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), urlB)
	require.Len(t, results, 2)
	assert.Equal(t, hashA, results[0].Clusters["raw"])
	assert.Equal(t, urlB, results[1].URL)
	assert.Empty(t, results[1].Clusters)
}

func TestIngestService_Ignored(t *testing.T) {
	f := newIngestFixture(t)
	f.service.SetIgnore([]string{"localhost", "", "chrome://"})

	assert.True(t, f.service.Ignored("chrome://newtab"))
	assert.True(t, f.service.Ignored("http://localhost:8000"))
	assert.False(t, f.service.Ignored("https://example.com"))
}

func TestIngestService_SaveAssignmentConflictKeepsWinner(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	embedder := newVectorEmbedder(2)
	f := newIngestFixtureOn(t, store, rawPipeline("raw", embedder))

	clusters := &preassigningStore{ClusterStore: store.ClusterStore(), winner: "winner"}
	f.service.clusters = clusters

	result, err := f.service.ProcessPage(ctx, domain.Page{URL: urlA, Content: strPtr("<p>a</p>")})

	require.NoError(t, err)
	assert.Equal(t, "winner", result.Clusters["raw"])
}

// preassigningStore simulates a concurrent worker that saves an
// assignment between the lookup and the save.
type preassigningStore struct {
	driven.ClusterStore
	winner  string
	lookups int
}

func (p *preassigningStore) Assignment(ctx context.Context, documentKey, runID string) (*domain.ClusterAssignment, error) {
	p.lookups++
	if p.lookups == 1 {
		return nil, domain.ErrNotFound
	}
	return p.ClusterStore.Assignment(ctx, documentKey, runID)
}

func (p *preassigningStore) SaveAssignment(ctx context.Context, a domain.ClusterAssignment) error {
	a.ClusterID = p.winner
	if err := p.ClusterStore.SaveAssignment(ctx, a); err != nil {
		return err
	}
	return domain.ErrAlreadyExists
}

func TestIngestService_FailedAssignmentLeavesUnclaimedRows(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	f := newIngestFixtureOn(t, store, rawPipeline("raw", newVectorEmbedder(4)))
	content := strPtr("<p>rust ownership</p>")

	f.service.clusters = &failingAssignmentStore{ClusterStore: store.ClusterStore(), err: domain.ErrRowStore}
	_, err := f.service.ProcessPage(ctx, domain.Page{URL: urlA, Content: content})
	require.ErrorIs(t, err, domain.ErrRowStore)

	founded, err := store.ClusterStore().Get(ctx, hashA, "raw")
	require.NoError(t, err)
	assert.Equal(t, hashA, founded.ID)
	count, err := store.SimilarityIndex().Count(ctx, "raw")
	require.NoError(t, err)
	assert.Zero(t, count, "an unassigned embedding is not a candidate")

	f.service.clusters = store.ClusterStore()

	second, err := f.service.ProcessPage(ctx, domain.Page{URL: urlB, Content: content})
	require.NoError(t, err)
	assert.Equal(t, hashB, second.Clusters["raw"])

	retried, err := f.service.ProcessPage(ctx, domain.Page{URL: urlA, Content: content})
	require.NoError(t, err)
	assert.Equal(t, hashB, retried.Clusters["raw"])

	members, err := store.ClusterStore().Members(ctx, hashA, "raw")
	require.NoError(t, err)
	assert.Empty(t, members)
}

// failingAssignmentStore rejects every assignment.
type failingAssignmentStore struct {
	driven.ClusterStore
	err error
}

func (s *failingAssignmentStore) SaveAssignment(_ context.Context, _ domain.ClusterAssignment) error {
	return s.err
}
