package preprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
)

func TestNewStepRegistry(t *testing.T) {
	r := NewStepRegistry()
	require.NotNil(t, r)
	assert.Empty(t, r.Names())
}

func TestStepRegistry_Build(t *testing.T) {
	r := NewStepRegistry()
	r.Register("suffix", func(cfg map[string]any) (driven.TextStep, error) {
		name := "default"
		if n, ok := cfg["name"].(string); ok {
			name = n
		}
		return suffixStep{name: name}, nil
	})

	step, err := r.Build("suffix", map[string]any{"name": "custom"})

	require.NoError(t, err)
	assert.Equal(t, "custom", step.Name())
	assert.True(t, r.Has("suffix"))
	assert.False(t, r.Has("other"))
}

func TestStepRegistry_BuildUnknown(t *testing.T) {
	_, err := NewStepRegistry().Build("nope", nil)

	assert.ErrorIs(t, err, domain.ErrPipelineConfig)
}

func TestStepRegistry_NamesSorted(t *testing.T) {
	r := NewStepRegistry()
	builder := func(map[string]any) (driven.TextStep, error) { return suffixStep{}, nil }
	r.Register("zeta", builder)
	r.Register("alpha", builder)
	r.Register("mid", builder)

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, r.Names())
}
