package driving

import "github.com/custodia-labs/pagecluster/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetStorage configures the storage backend.
	SetStorage(backend domain.StorageBackend, location string) error

	// Validate checks the current settings for consistency.
	Validate() error

	// ValidateEmbeddingConfig checks the embedding provider is reachable.
	ValidateEmbeddingConfig() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
