package preprocessing

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
)

// BuilderFunc creates a TextStep from generic config.
// Config is a map of step-specific settings parsed from user config.
type BuilderFunc func(cfg map[string]any) (driven.TextStep, error)

// StepRegistry maps step names to their builders.
// It allows pipelines to be assembled from configuration.
type StepRegistry struct {
	builders map[string]BuilderFunc
}

// NewStepRegistry creates a new step registry.
func NewStepRegistry() *StepRegistry {
	return &StepRegistry{
		builders: make(map[string]BuilderFunc),
	}
}

// Register adds a step builder to the registry.
// Name should be unique and match the step's Name() return value.
func (r *StepRegistry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build creates a step by name with the given config.
func (r *StepRegistry) Build(name string, cfg map[string]any) (driven.TextStep, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown step %q", domain.ErrPipelineConfig, name)
	}
	return builder(cfg)
}

// Has returns true if a step with the given name is registered.
func (r *StepRegistry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns all registered step names, sorted.
func (r *StepRegistry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
