package preprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
)

func TestRegistry_RegisterAndList(t *testing.T) {
	embedder := newFakeEmbedder(4)
	r := NewRegistry(4)

	require.NoError(t, r.Register(NewPipeline("b", embedder)))
	require.NoError(t, r.Register(NewPipeline("a", embedder)))

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].Name())
	assert.Equal(t, "a", list[1].Name())

	p, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", p.Name())

	_, ok = r.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_DuplicateName(t *testing.T) {
	embedder := newFakeEmbedder(4)
	r := NewRegistry(0)
	require.NoError(t, r.Register(NewPipeline("dup", embedder)))

	err := r.Register(NewPipeline("dup", embedder, suffixStep{name: "other"}))

	assert.ErrorIs(t, err, domain.ErrPipelineConfig)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_DimensionMismatch(t *testing.T) {
	r := NewRegistry(384)

	err := r.Register(NewPipeline("wide", newFakeEmbedder(768)))

	assert.ErrorIs(t, err, domain.ErrPipelineConfig)
	assert.Zero(t, r.Len())
}

func TestRegistry_EmptyName(t *testing.T) {
	err := NewRegistry(0).Register(NewPipeline("", newFakeEmbedder(4)))

	assert.ErrorIs(t, err, domain.ErrPipelineConfig)
}

func TestRegistry_ListIsACopy(t *testing.T) {
	r := NewRegistry(0)
	require.NoError(t, r.Register(NewPipeline("one", newFakeEmbedder(2))))

	list := r.List()
	list[0] = nil

	assert.NotNil(t, r.List()[0])
}
