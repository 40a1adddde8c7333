// Package preprocessing turns raw page markup into embedding vectors.
//
// A Pipeline is an ordered list of text steps followed by exactly one
// embedding step. Its name is the embedding run id that scopes storage
// and similarity search, so every registered pipeline name is unique.
package preprocessing

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
)

// embedStep names the embedding step in errors.
const embedStep = "embed"

// Ensure Pipeline implements the interface.
var _ driven.Pipeline = (*Pipeline)(nil)

// Pipeline chains text steps and an embedder, run strictly in order.
// It holds no per-run state and is safe for concurrent use when its
// steps and embedder are.
type Pipeline struct {
	name     string
	steps    []driven.TextStep
	embedder driven.EmbeddingService
}

// NewPipeline creates a pipeline. Steps run in the order provided;
// zero steps embeds the raw input directly.
func NewPipeline(name string, embedder driven.EmbeddingService, steps ...driven.TextStep) *Pipeline {
	return &Pipeline{
		name:     name,
		steps:    steps,
		embedder: embedder,
	}
}

// Name returns the pipeline name (run id).
func (p *Pipeline) Name() string {
	return p.name
}

// Dimensions returns the vector size of the embedder.
func (p *Pipeline) Dimensions() int {
	return p.embedder.Dimensions()
}

// Len returns the number of text steps.
func (p *Pipeline) Len() int {
	return len(p.steps)
}

// Describe returns the run configuration.
func (p *Pipeline) Describe() domain.EmbeddingRun {
	steps := make([]string, len(p.steps))
	for i, s := range p.steps {
		steps[i] = s.Name()
	}
	return domain.EmbeddingRun{
		Name:       p.name,
		Steps:      steps,
		Model:      p.embedder.ModelName(),
		Dimensions: p.embedder.Dimensions(),
	}
}

// Run feeds raw through every step, then embeds the final text.
// The first failing step aborts the run with a *domain.PreprocessingError.
func (p *Pipeline) Run(ctx context.Context, raw string) ([]float32, error) {
	text := raw
	for _, step := range p.steps {
		out, err := step.Process(ctx, text)
		if err != nil {
			return nil, &domain.PreprocessingError{Pipeline: p.name, Step: step.Name(), Err: err}
		}
		text = out
	}

	vector, err := p.embedder.Embed(ctx, text)
	if err != nil {
		return nil, &domain.PreprocessingError{Pipeline: p.name, Step: embedStep, Err: err}
	}
	if want := p.embedder.Dimensions(); want > 0 && len(vector) != want {
		return nil, &domain.PreprocessingError{
			Pipeline: p.name,
			Step:     embedStep,
			Err: fmt.Errorf("%w: got %d dimensions, expected %d",
				domain.ErrEmbeddingModel, len(vector), want),
		}
	}
	return vector, nil
}
