package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
	"github.com/custodia-labs/pagecluster/internal/logger"
)

// DefaultThreshold is the cosine similarity a neighbour must strictly
// exceed for a document to join its cluster.
const DefaultThreshold = 0.8

// Decision is the outcome of one assignment.
type Decision struct {
	// ClusterID is the chosen cluster.
	ClusterID string

	// Joined is true when the document joined its nearest neighbour's cluster.
	Joined bool

	// Neighbour is the document key of the nearest neighbour, if any.
	Neighbour string

	// Similarity is the cosine similarity to the neighbour, 0 without one.
	Similarity float64
}

// AssignmentEngine decides the cluster of a new embedding from the single
// nearest stored embedding of the same run. It holds no mutable state.
type AssignmentEngine struct {
	index     driven.SimilarityIndex
	threshold float64
}

// AssignmentOption configures an AssignmentEngine.
type AssignmentOption func(*AssignmentEngine)

// WithThreshold overrides the join threshold.
func WithThreshold(threshold float64) AssignmentOption {
	return func(e *AssignmentEngine) {
		e.threshold = threshold
	}
}

// NewAssignmentEngine creates an engine over a similarity index.
func NewAssignmentEngine(index driven.SimilarityIndex, opts ...AssignmentOption) *AssignmentEngine {
	e := &AssignmentEngine{
		index:     index,
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Threshold returns the join threshold.
func (e *AssignmentEngine) Threshold() float64 {
	return e.threshold
}

// Assign returns the cluster id for documentKey in runID.
func (e *AssignmentEngine) Assign(ctx context.Context, documentKey string, vector []float32, runID string) (string, error) {
	d, err := e.Decide(ctx, documentKey, vector, runID)
	if err != nil {
		return "", err
	}
	return d.ClusterID, nil
}

// Decide joins the nearest neighbour's cluster when their cosine similarity
// is strictly above the threshold, and otherwise mints a new cluster id from
// documentKey. An empty run mints without querying the index.
func (e *AssignmentEngine) Decide(ctx context.Context, documentKey string, vector []float32, runID string) (*Decision, error) {
	count, err := e.index.Count(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("count run %s: %w", runID, err)
	}
	if count == 0 {
		logger.Debug("assign %s in %s: empty run, founding cluster", documentKey, runID)
		return &Decision{ClusterID: MintClusterID(documentKey)}, nil
	}

	nearest, err := e.index.Nearest(ctx, runID, vector)
	if err != nil {
		return nil, fmt.Errorf("nearest in run %s: %w", runID, err)
	}
	if nearest == nil {
		return &Decision{ClusterID: MintClusterID(documentKey)}, nil
	}

	similarity := CosineSimilarity(nearest.Vector, vector)
	if similarity > e.threshold {
		logger.Debug("assign %s in %s: joins %s via %s (cosine %.4f)",
			documentKey, runID, nearest.ClusterID, nearest.DocumentKey, similarity)
		return &Decision{
			ClusterID:  nearest.ClusterID,
			Joined:     true,
			Neighbour:  nearest.DocumentKey,
			Similarity: similarity,
		}, nil
	}

	logger.Debug("assign %s in %s: nearest %s too far (cosine %.4f), founding cluster",
		documentKey, runID, nearest.DocumentKey, similarity)
	return &Decision{
		ClusterID:  MintClusterID(documentKey),
		Neighbour:  nearest.DocumentKey,
		Similarity: similarity,
	}, nil
}

// MintClusterID derives a new cluster id from a document key: the
// decimal form of its 64-bit xxHash.
func MintClusterID(documentKey string) string {
	return strconv.FormatUint(xxhash.Sum64String(documentKey), 10)
}
