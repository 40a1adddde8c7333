package driven

import (
	"context"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
)

// Pipeline turns raw input into a vector for one embedding run.
type Pipeline interface {
	// Name is the globally unique run id.
	Name() string

	// Run executes every step in order, then embeds the result.
	// Step failures return *domain.PreprocessingError.
	Run(ctx context.Context, raw string) ([]float32, error)

	// Dimensions is the vector size the pipeline produces.
	Dimensions() int

	// Describe returns the run configuration.
	Describe() domain.EmbeddingRun
}

// PipelineRegistry holds the registered pipelines.
type PipelineRegistry interface {
	// List returns pipelines in registration order.
	List() []Pipeline

	// Get returns a pipeline by name.
	Get(name string) (Pipeline, bool)
}
