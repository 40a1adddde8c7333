package domain

import "time"

const unknownDescription = "Unknown"

// StorageBackend selects where pages, embeddings and clusters are kept.
type StorageBackend string

// Available storage backends.
const (
	// StorageMemory keeps everything in process memory.
	StorageMemory StorageBackend = "memory"

	// StorageSQLite uses a local SQLite database file.
	StorageSQLite StorageBackend = "sqlite"

	// StoragePostgres uses Postgres with the pgvector extension.
	StoragePostgres StorageBackend = "postgres"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageMemory, StorageSQLite, StoragePostgres:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StorageBackend) Description() string {
	switch b {
	case StorageMemory:
		return "In-memory (lost on exit)"
	case StorageSQLite:
		return "SQLite (local file)"
	case StoragePostgres:
		return "Postgres + pgvector"
	default:
		return unknownDescription
	}
}

// AIProvider identifies an embedding model provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI"
	default:
		return unknownDescription
	}
}

// AllEmbeddingProviders returns the providers in menu order.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{AIProviderOllama, AIProviderOpenAI}
}

// AllStorageBackends returns the backends in menu order.
func AllStorageBackends() []StorageBackend {
	return []StorageBackend{StorageSQLite, StoragePostgres, StorageMemory}
}

// DefaultEmbeddingModels returns the default model for each provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// StorageSettings holds storage backend configuration.
type StorageSettings struct {
	// Backend selects the storage implementation.
	Backend StorageBackend

	// Path is the data directory for the SQLite backend.
	Path string

	// DSN is the connection string for the Postgres backend.
	DSN string
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions is the vector size the model produces.
	Dimensions int

	// RequestsPerSecond limits model calls; 0 disables limiting.
	RequestsPerSecond float64
}

// IsConfigured returns true if the provider can be constructed.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// ClusteringSettings holds assignment and naming parameters.
type ClusteringSettings struct {
	// Threshold is the cosine similarity a candidate must strictly exceed.
	Threshold float64

	// NameKeywords is the number of keywords in a cluster name.
	NameKeywords int
}

// KeywordSettings configures keyword extraction.
type KeywordSettings struct {
	// PipelineKeywords is the number of keywords the keyword step keeps.
	PipelineKeywords int

	// StoplistPath is an optional YAML stoplist replacing the built-in list.
	StoplistPath string
}

// IngestSettings configures event ingestion.
type IngestSettings struct {
	// Ignore lists URL substrings whose events are dropped.
	Ignore []string

	// Workers bounds concurrent documents in batch ingestion.
	Workers int
}

// ServerSettings configures the HTTP ingestion server.
type ServerSettings struct {
	// Address is the listen address.
	Address string

	// AllowedOrigins are the CORS origins allowed to call the API.
	AllowedOrigins []string

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	Storage    StorageSettings
	Embedding  EmbeddingSettings
	Clustering ClusteringSettings
	Keywords   KeywordSettings
	Ingest     IngestSettings
	Server     ServerSettings

	// Pipelines lists the enabled pipeline names.
	Pipelines []string
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Storage: StorageSettings{
			Backend: StorageSQLite,
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderOllama,
			Model:      "all-minilm",
			Dimensions: 384,
		},
		Clustering: ClusteringSettings{
			Threshold:    0.8,
			NameKeywords: 5,
		},
		Keywords: KeywordSettings{
			PipelineKeywords: 15,
		},
		Ingest: IngestSettings{
			Ignore:  []string{"localhost", "chrome://"},
			Workers: 4,
		},
		Server: ServerSettings{
			Address:         "0.0.0.0:8000",
			ShutdownTimeout: 10 * time.Second,
		},
		Pipelines: []string{"direct-minilm", "markdown-minilm"},
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"all-minilm":        384,
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
