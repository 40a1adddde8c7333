package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagecluster/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/keywords/yake"
)

func TestClusterNamer_NameFor_CreatesOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore().ClusterStore()
	namer := NewClusterNamer(store, yake.New(), 5)

	created, err := namer.NameFor(ctx, hashA, "direct-minilm",
		"# Rust Ownership\n\nRust enforces memory safety...")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "ownership rust safety enforces memory", created.Name)

	again, err := namer.NameFor(ctx, hashA, "direct-minilm", "Gardening tips for tomatoes and peppers")
	require.NoError(t, err)
	assert.Nil(t, again)

	stored, err := store.Get(ctx, hashA, "direct-minilm")
	require.NoError(t, err)
	assert.Equal(t, "ownership rust safety enforces memory", stored.Name)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestClusterNamer_NameFor_ExistingSkipsExtraction(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore().ClusterStore()
	_, err := store.CreateIfAbsent(ctx, domain.Cluster{ID: "c", Name: "kept", RunID: "r"})
	require.NoError(t, err)

	extractor := &stubExtractor{keywords: []string{"x"}}
	got, err := NewClusterNamer(store, extractor, 5).NameFor(ctx, "c", "r", "text")

	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, extractor.calls)
}

func TestClusterNamer_NameFor_LostRace(t *testing.T) {
	got, err := NewClusterNamer(racingClusterStore{}, &stubExtractor{keywords: []string{"a"}}, 5).
		NameFor(context.Background(), "c", "r", "text")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestClusterNamer_NameFor_NoKeywordsYieldsEmptyName(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore().ClusterStore()

	got, err := NewClusterNamer(store, &stubExtractor{err: domain.ErrNoKeywords}, 5).
		NameFor(ctx, "c", "r", "the of and")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.Name)
}

func TestClusterNamer_NameFor_ExtractorError(t *testing.T) {
	boom := errors.New("extractor broke")
	_, err := NewClusterNamer(memory.NewStore().ClusterStore(), &stubExtractor{err: boom}, 5).
		NameFor(context.Background(), "c", "r", "text")

	assert.ErrorIs(t, err, boom)
}

func TestClusterNamer_DefaultKeywordCount(t *testing.T) {
	extractor := &stubExtractor{keywords: []string{"a", "b", "c", "d", "e", "f"}}
	got, err := NewClusterNamer(memory.NewStore().ClusterStore(), extractor, 0).
		NameFor(context.Background(), "c", "r", "text")

	require.NoError(t, err)
	assert.Equal(t, DefaultNameKeywords, extractor.asked)
	assert.Equal(t, "a b c d e", got.Name)
}
