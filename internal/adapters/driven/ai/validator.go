package ai

import (
	"fmt"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator validates embedding provider configurations.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding checks the configured dimensions against the known size
// of the model, then pings the provider.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	if config == nil {
		return fmt.Errorf("%w: no embedding settings", domain.ErrInvalidInput)
	}
	if want, ok := domain.EmbeddingDimensions()[config.Model]; ok && config.Dimensions != 0 && config.Dimensions != want {
		return fmt.Errorf("%w: model %s produces %d dimensions, settings say %d",
			domain.ErrInvalidInput, config.Model, want, config.Dimensions)
	}
	return ValidateEmbeddingConfig(config)
}
