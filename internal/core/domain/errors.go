package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider, backend or step type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Pipeline Errors.

	// ErrNormalization indicates markup that could not be parsed.
	// Surfaced to the caller, never retried.
	ErrNormalization = errors.New("normalization failed")

	// ErrNoKeywords indicates degenerate keyword input (no candidate terms).
	// Callers treat it as zero keywords.
	ErrNoKeywords = errors.New("no keywords extracted")

	// ErrEmbeddingModel indicates model initialisation or inference failed.
	ErrEmbeddingModel = errors.New("embedding model error")

	// ErrEmptyEmbeddingResult indicates the model returned no vectors.
	// It is a configuration error and is not retried.
	ErrEmptyEmbeddingResult = fmt.Errorf("%w: empty embedding result", ErrEmbeddingModel)

	// ErrPipelineConfig indicates an invalid pipeline registration
	// (duplicate name, dimension mismatch, unknown step).
	ErrPipelineConfig = errors.New("pipeline configuration error")

	// Storage Errors.

	// ErrSimilarityIndex indicates a similarity index failure.
	ErrSimilarityIndex = errors.New("similarity index error")

	// ErrRowStore indicates a row store failure.
	ErrRowStore = errors.New("row store error")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// PreprocessingError reports the pipeline step that aborted a run.
type PreprocessingError struct {
	// Pipeline is the name of the pipeline (embedding run).
	Pipeline string

	// Step is the name of the failing step.
	Step string

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *PreprocessingError) Error() string {
	return fmt.Sprintf("pipeline %s: step %s: %v", e.Pipeline, e.Step, e.Err)
}

// Unwrap returns the underlying failure.
func (e *PreprocessingError) Unwrap() error {
	return e.Err
}
