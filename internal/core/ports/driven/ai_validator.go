package driven

import "github.com/custodia-labs/pagecluster/internal/core/domain"

// AIConfigValidator validates embedding provider configurations by testing
// connectivity to the underlying model service.
type AIConfigValidator interface {
	// ValidateEmbedding validates an embedding configuration by pinging the provider.
	ValidateEmbedding(config *domain.EmbeddingSettings) error
}
