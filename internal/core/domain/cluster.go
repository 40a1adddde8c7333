package domain

import "time"

// EmbeddingRun describes the pipeline configuration behind a family of
// embeddings. Its Name is the run id used to scope storage and search.
type EmbeddingRun struct {
	// Name is the globally unique pipeline name (e.g. "direct-minilm").
	Name string `json:"name"`

	// Steps lists the text transform step names in execution order.
	Steps []string `json:"steps"`

	// Model is the embedding model name.
	Model string `json:"model"`

	// Dimensions is the vector size produced by the run.
	Dimensions int `json:"dimensions"`
}

// Embedding is an immutable vector for one page in one run.
type Embedding struct {
	DocumentKey string
	RunID       string
	Vector      []float32
	CreatedAt   time.Time
}

// Cluster is a named group of pages within one run.
// The name is set once by the founding page and never changes.
type Cluster struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	RunID string `json:"clustering_run"`
}

// ClusterAssignment records the cluster of a page in one run.
// There is exactly one assignment per (DocumentKey, RunID).
type ClusterAssignment struct {
	DocumentKey string    `json:"page_url"`
	ClusterID   string    `json:"cluster_id"`
	RunID       string    `json:"clustering_run"`
	CreatedAt   time.Time `json:"created_at"`
}
