package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyStorageBackend   = "storage.backend"
	keyStoragePath      = "storage.path"
	keyStorageDSN       = "storage.dsn"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedDimensions  = "embedding.dimensions"
	keyEmbedRPS         = "embedding.requests_per_second"
	keyThreshold        = "clustering.threshold"
	keyNameKeywords     = "clustering.name_keywords"
	keyPipelineKeywords = "keywords.pipeline_keywords"
	keyStoplist         = "keywords.stoplist"
	keyIngestIgnore     = "ingest.ignore"
	keyIngestWorkers    = "ingest.workers"
	keyServerAddress    = "server.address"
	keyServerOrigins    = "server.allowed_origins"
	keyServerShutdown   = "server.shutdown_timeout"
	keyPipelines        = "pipelines.enabled"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings, falling back to defaults
// for missing or invalid values.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Storage: domain.StorageSettings{
			Backend: s.getBackend(defaults.Storage.Backend),
			Path:    s.configStore.GetString(keyStoragePath),
			DSN:     s.configStore.GetString(keyStorageDSN),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:             s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL),
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			Dimensions:        s.getInt(keyEmbedDimensions, 0),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
		},
		Clustering: domain.ClusteringSettings{
			Threshold:    s.getFloat(keyThreshold, defaults.Clustering.Threshold),
			NameKeywords: s.getInt(keyNameKeywords, defaults.Clustering.NameKeywords),
		},
		Keywords: domain.KeywordSettings{
			PipelineKeywords: s.getInt(keyPipelineKeywords, defaults.Keywords.PipelineKeywords),
			StoplistPath:     s.configStore.GetString(keyStoplist),
		},
		Ingest: domain.IngestSettings{
			Ignore:  s.getStringSlice(keyIngestIgnore, defaults.Ingest.Ignore),
			Workers: s.getInt(keyIngestWorkers, defaults.Ingest.Workers),
		},
		Server: domain.ServerSettings{
			Address:         s.getString(keyServerAddress, defaults.Server.Address),
			AllowedOrigins:  s.configStore.GetStringSlice(keyServerOrigins),
			ShutdownTimeout: s.getDuration(keyServerShutdown, defaults.Server.ShutdownTimeout),
		},
		Pipelines: s.getStringSlice(keyPipelines, defaults.Pipelines),
	}

	// Dimensions follow the model unless pinned explicitly.
	if settings.Embedding.Dimensions == 0 {
		settings.Embedding.Dimensions = defaults.Embedding.Dimensions
		if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
			settings.Embedding.Dimensions = d
		}
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyStorageBackend, settings.Storage.Backend.String()},
		{keyStoragePath, settings.Storage.Path},
		{keyStorageDSN, settings.Storage.DSN},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDimensions, settings.Embedding.Dimensions},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyThreshold, settings.Clustering.Threshold},
		{keyNameKeywords, settings.Clustering.NameKeywords},
		{keyPipelineKeywords, settings.Keywords.PipelineKeywords},
		{keyStoplist, settings.Keywords.StoplistPath},
		{keyIngestIgnore, settings.Ingest.Ignore},
		{keyIngestWorkers, settings.Ingest.Workers},
		{keyServerAddress, settings.Server.Address},
		{keyServerOrigins, settings.Server.AllowedOrigins},
		{keyServerShutdown, settings.Server.ShutdownTimeout.String()},
		{keyPipelines, settings.Pipelines},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	switch {
	case model != "":
		settings.Embedding.Model = model
	case provider == domain.AIProviderOpenAI:
		settings.Embedding.Model = "text-embedding-3-small"
	default:
		settings.Embedding.Model = domain.DefaultAppSettings().Embedding.Model
	}

	if provider == domain.AIProviderOllama {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.Embedding.BaseURL = ""
	}
	settings.Embedding.APIKey = apiKey

	if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		settings.Embedding.Dimensions = d
	}

	return s.Save(settings)
}

// SetStorage configures the storage backend. location is the data
// directory for sqlite and the DSN for postgres; it is ignored for memory.
func (s *SettingsService) SetStorage(backend domain.StorageBackend, location string) error {
	if !backend.IsValid() {
		return fmt.Errorf("%w: invalid storage backend: %s", domain.ErrInvalidInput, backend)
	}
	if backend == domain.StoragePostgres && location == "" {
		return fmt.Errorf("%w: postgres requires a DSN", domain.ErrInvalidInput)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Storage.Backend = backend
	switch backend {
	case domain.StorageSQLite:
		settings.Storage.Path = location
	case domain.StoragePostgres:
		settings.Storage.DSN = location
	}

	return s.Save(settings)
}

// Validate checks the current settings for consistency.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Storage.Backend.IsValid() {
		return fmt.Errorf("%w: invalid storage backend: %s", domain.ErrInvalidInput, settings.Storage.Backend)
	}
	if settings.Storage.Backend == domain.StoragePostgres && settings.Storage.DSN == "" {
		return fmt.Errorf("%w: storage backend %q requires storage.dsn",
			domain.ErrInvalidInput, settings.Storage.Backend.Description())
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %s is not configured",
			domain.ErrInvalidInput, settings.Embedding.Provider)
	}
	if settings.Clustering.Threshold <= -1 || settings.Clustering.Threshold >= 1 {
		return fmt.Errorf("%w: clustering.threshold must be in (-1, 1), got %v",
			domain.ErrInvalidInput, settings.Clustering.Threshold)
	}
	if len(settings.Pipelines) == 0 {
		return fmt.Errorf("%w: no pipelines enabled", domain.ErrInvalidInput)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetStringSlice(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	val := s.configStore.GetString(keyStorageBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.StorageBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
