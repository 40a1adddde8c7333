package preprocessing

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.PipelineRegistry = (*Registry)(nil)

// Registry holds the pipelines exposed to the ingestion layer.
// Registration errors are configuration errors and belong at startup.
type Registry struct {
	mu         sync.RWMutex
	dimensions int
	order      []string
	pipelines  map[string]driven.Pipeline
}

// NewRegistry creates a registry. When dimensions is positive every
// registered pipeline must produce vectors of that size.
func NewRegistry(dimensions int) *Registry {
	return &Registry{
		dimensions: dimensions,
		pipelines:  make(map[string]driven.Pipeline),
	}
}

// Register adds a pipeline. An empty or duplicate name, or a dimension
// mismatch, returns domain.ErrPipelineConfig.
func (r *Registry) Register(p driven.Pipeline) error {
	name := p.Name()
	if name == "" {
		return fmt.Errorf("%w: pipeline name is empty", domain.ErrPipelineConfig)
	}
	if r.dimensions > 0 && p.Dimensions() != r.dimensions {
		return fmt.Errorf("%w: pipeline %q produces %d dimensions, index expects %d",
			domain.ErrPipelineConfig, name, p.Dimensions(), r.dimensions)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pipelines[name]; exists {
		return fmt.Errorf("%w: pipeline %q registered twice", domain.ErrPipelineConfig, name)
	}
	r.pipelines[name] = p
	r.order = append(r.order, name)
	return nil
}

// List returns pipelines in registration order.
func (r *Registry) List() []driven.Pipeline {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]driven.Pipeline, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.pipelines[name])
	}
	return out
}

// Get returns a pipeline by name.
func (r *Registry) Get(name string) (driven.Pipeline, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pipelines[name]
	return p, ok
}

// Len returns the number of registered pipelines.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
