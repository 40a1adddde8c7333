package preprocessing

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
	"github.com/custodia-labs/pagecluster/internal/keywords/yake"
	"github.com/custodia-labs/pagecluster/internal/normalisers/html"
)

// Definition names a pipeline and its text steps.
type Definition struct {
	Name  string
	Steps []string
}

// DefaultDefinitions are the built-in pipelines.
//   - direct-minilm: markdown, then the top keywords, then embed
//   - markdown-minilm: markdown, then embed
//   - raw-minilm: embed the raw markup
func DefaultDefinitions() []Definition {
	return []Definition{
		{Name: "direct-minilm", Steps: []string{html.StepName, yake.StepName}},
		{Name: "markdown-minilm", Steps: []string{html.StepName}},
		{Name: "raw-minilm", Steps: nil},
	}
}

// StepDeps carries what the built-in step builders need.
type StepDeps struct {
	Extractor driven.KeywordExtractor

	// KeywordCount is the default number of keywords the keyword step keeps.
	KeywordCount int
}

// RegisterDefaults registers all built-in steps with the registry.
// Call this during application initialisation to enable standard steps.
func RegisterDefaults(r *StepRegistry, deps StepDeps) {
	r.Register(html.StepName, func(map[string]any) (driven.TextStep, error) {
		return html.New(), nil
	})
	r.Register(yake.StepName, func(cfg map[string]any) (driven.TextStep, error) {
		return buildKeywords(deps, cfg)
	})
}

// buildKeywords creates a keyword step from generic config.
// Supported config keys:
//   - count (int): Keywords to keep (default: deps.KeywordCount)
func buildKeywords(deps StepDeps, cfg map[string]any) (driven.TextStep, error) {
	if deps.Extractor == nil {
		return nil, fmt.Errorf("%w: keyword step needs an extractor", domain.ErrPipelineConfig)
	}
	count := deps.KeywordCount
	if n := getIntFromConfig(cfg, "count"); n > 0 {
		count = n
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: keyword count must be positive", domain.ErrPipelineConfig)
	}
	return yake.NewStep(deps.Extractor, count), nil
}

// Build assembles and registers the enabled pipelines, all sharing one
// embedder. Unknown pipeline or step names, and a model whose output size
// differs from dimensions, return domain.ErrPipelineConfig.
func Build(ctx context.Context, enabled []string, defs []Definition, steps *StepRegistry,
	embedder driven.EmbeddingService, dimensions int) (*Registry, error) {
	byName := make(map[string]Definition, len(defs))
	for _, d := range defs {
		byName[d.Name] = d
	}

	registry := NewRegistry(dimensions)
	for _, name := range enabled {
		def, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown pipeline %q", domain.ErrPipelineConfig, name)
		}

		built := make([]driven.TextStep, 0, len(def.Steps))
		for _, stepName := range def.Steps {
			step, err := steps.Build(stepName, nil)
			if err != nil {
				return nil, fmt.Errorf("pipeline %s: %w", name, err)
			}
			built = append(built, step)
		}

		if err := registry.Register(NewPipeline(def.Name, embedder, built...)); err != nil {
			return nil, err
		}
	}

	if registry.Len() == 0 {
		return nil, fmt.Errorf("%w: no pipelines enabled", domain.ErrPipelineConfig)
	}
	if err := checkEmbedder(ctx, embedder, dimensions); err != nil {
		return nil, err
	}
	return registry, nil
}

// dimensionCheckText is embedded once at build time.
const dimensionCheckText = "dimension check"

// checkEmbedder embeds one text and compares the vector size with the
// configured dimensions. A configured size of 0 skips the check.
func checkEmbedder(ctx context.Context, embedder driven.EmbeddingService, dimensions int) error {
	if dimensions <= 0 {
		return nil
	}
	vector, err := embedder.Embed(ctx, dimensionCheckText)
	if err != nil {
		return fmt.Errorf("check embedder %s: %w", embedder.ModelName(), err)
	}
	if len(vector) != dimensions {
		return fmt.Errorf("%w: model %s produces %d dimensions, configured %d",
			domain.ErrPipelineConfig, embedder.ModelName(), len(vector), dimensions)
	}
	return nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
