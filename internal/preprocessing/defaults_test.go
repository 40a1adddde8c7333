package preprocessing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/keywords/yake"
)

const rustMarkup = "<html><body><h1>Rust Ownership</h1><p>Rust enforces memory safety...</p></body></html>"

func defaultSteps() *StepRegistry {
	r := NewStepRegistry()
	RegisterDefaults(r, StepDeps{Extractor: yake.New(), KeywordCount: 15})
	return r
}

func TestRegisterDefaults(t *testing.T) {
	assert.Equal(t, []string{"html-markdown", "keywords"}, defaultSteps().Names())
}

func TestBuild_DefaultPipelines(t *testing.T) {
	embedder := newFakeEmbedder(384)

	registry, err := Build(context.Background(), []string{"direct-minilm", "markdown-minilm", "raw-minilm"},
		DefaultDefinitions(), defaultSteps(), embedder, 384)

	require.NoError(t, err)
	require.Equal(t, 3, registry.Len())

	direct, ok := registry.Get("direct-minilm")
	require.True(t, ok)
	assert.Equal(t, []string{"html-markdown", "keywords"}, direct.Describe().Steps)

	_, err = direct.Run(context.Background(), rustMarkup)
	require.NoError(t, err)

	markdown, _ := registry.Get("markdown-minilm")
	_, err = markdown.Run(context.Background(), rustMarkup)
	require.NoError(t, err)

	assert.Equal(t, []string{
		dimensionCheckText,
		"ownership rust safety enforces memory",
		"# Rust Ownership\n\nRust enforces memory safety...",
	}, embedder.calls())
}

func TestBuild_SharesOneEmbedder(t *testing.T) {
	embedder := newFakeEmbedder(4)

	registry, err := Build(context.Background(), []string{"markdown-minilm", "raw-minilm"},
		DefaultDefinitions(), defaultSteps(), embedder, 0)
	require.NoError(t, err)

	for _, p := range registry.List() {
		_, err := p.Run(context.Background(), "<p>x</p>")
		require.NoError(t, err)
	}
	assert.Len(t, embedder.calls(), 2)
}

func TestBuild_Errors(t *testing.T) {
	embedder := newFakeEmbedder(4)

	tests := []struct {
		name    string
		enabled []string
		defs    []Definition
		dims    int
	}{
		{name: "unknown pipeline", enabled: []string{"missing"}, defs: DefaultDefinitions()},
		{name: "nothing enabled", enabled: nil, defs: DefaultDefinitions()},
		{name: "unknown step", enabled: []string{"x"}, defs: []Definition{{Name: "x", Steps: []string{"stemmer"}}}},
		{name: "duplicate enable", enabled: []string{"raw-minilm", "raw-minilm"}, defs: DefaultDefinitions()},
		{name: "dimension mismatch", enabled: []string{"raw-minilm"}, defs: DefaultDefinitions(), dims: 384},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(context.Background(), tt.enabled, tt.defs, defaultSteps(), embedder, tt.dims)
			assert.ErrorIs(t, err, domain.ErrPipelineConfig)
		})
	}
}

// wideEmbedder declares one size and produces another.
type wideEmbedder struct {
	*fakeEmbedder
	actual int
}

func (w *wideEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if _, err := w.fakeEmbedder.Embed(ctx, text); err != nil {
		return nil, err
	}
	return make([]float32, w.actual), nil
}

func TestBuild_ModelOutputSizeMismatch(t *testing.T) {
	embedder := &wideEmbedder{fakeEmbedder: newFakeEmbedder(384), actual: 768}

	registry, err := Build(context.Background(), []string{"raw-minilm"}, DefaultDefinitions(), defaultSteps(), embedder, 384)

	require.ErrorIs(t, err, domain.ErrPipelineConfig)
	assert.Contains(t, err.Error(), "produces 768 dimensions, configured 384")
	assert.Nil(t, registry)
	assert.Equal(t, []string{dimensionCheckText}, embedder.calls())
}

func TestBuild_EmbedderCheckFails(t *testing.T) {
	embedder := newFakeEmbedder(384)
	embedder.err = domain.ErrEmptyEmbeddingResult

	_, err := Build(context.Background(), []string{"raw-minilm"}, DefaultDefinitions(), defaultSteps(), embedder, 384)

	assert.ErrorIs(t, err, domain.ErrEmptyEmbeddingResult)
}

func TestBuild_CheckSkippedWithoutConfiguredSize(t *testing.T) {
	embedder := newFakeEmbedder(4)

	_, err := Build(context.Background(), []string{"raw-minilm"}, DefaultDefinitions(), defaultSteps(), embedder, 0)

	require.NoError(t, err)
	assert.Empty(t, embedder.calls())
}

func TestBuildKeywords_Config(t *testing.T) {
	step, err := buildKeywords(StepDeps{Extractor: yake.New(), KeywordCount: 15}, map[string]any{"count": int64(2)})
	require.NoError(t, err)

	out, err := step.Process(context.Background(), "# Rust Ownership\n\nRust enforces memory safety...")
	require.NoError(t, err)
	assert.Equal(t, "ownership rust", out)
}

func TestBuildKeywords_Invalid(t *testing.T) {
	_, err := buildKeywords(StepDeps{KeywordCount: 5}, nil)
	assert.ErrorIs(t, err, domain.ErrPipelineConfig)

	_, err = buildKeywords(StepDeps{Extractor: yake.New()}, nil)
	assert.ErrorIs(t, err, domain.ErrPipelineConfig)
}
