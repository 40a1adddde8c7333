// Package ai provides factory functions for creating embedding model adapters.
package ai

import (
	"context"
	"fmt"
	"os"
	"time"

	ollamaembed "github.com/custodia-labs/pagecluster/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/pagecluster/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// apiKeyEnv is consulted when no OpenAI key is configured.
const apiKeyEnv = "OPENAI_API_KEY"

// CreateAndValidateEmbeddingService creates the embedding service and
// validates connectivity. The returned service is meant to be created once
// per process and shared by every pipeline; callers must Close it.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'pagecluster settings' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'pagecluster settings' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no embedding settings", domain.ErrInvalidInput)
	}

	resolved := *settings
	if resolved.Provider == domain.AIProviderOpenAI && resolved.APIKey == "" {
		resolved.APIKey = os.Getenv(apiKeyEnv)
	}
	if !resolved.IsConfigured() {
		return nil, fmt.Errorf("%w: embedding provider %q is not configured",
			domain.ErrInvalidInput, resolved.Provider)
	}

	switch resolved.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(&resolved), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(&resolved)

	default:
		return nil, fmt.Errorf("%w: embedding provider %s", domain.ErrUnsupportedType, resolved.Provider)
	}
}

// dimensionsFor prefers configured dimensions, then the known model table.
func dimensionsFor(settings *domain.EmbeddingSettings) int {
	if settings.Dimensions > 0 {
		return settings.Dimensions
	}
	return domain.EmbeddingDimensions()[settings.Model]
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:           settings.BaseURL,
		Model:             settings.Model,
		Dimensions:        dimensionsFor(settings),
		RequestsPerSecond: settings.RequestsPerSecond,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:            settings.APIKey,
		BaseURL:           settings.BaseURL,
		Model:             settings.Model,
		Dimensions:        dimensionsFor(settings),
		RequestsPerSecond: settings.RequestsPerSecond,
	})
}
