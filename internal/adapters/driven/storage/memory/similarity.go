package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
)

// Ensure SimilarityIndex implements the interface.
var _ driven.SimilarityIndex = (*SimilarityIndex)(nil)

// SimilarityIndex is a brute-force in-memory nearest neighbour index
// using squared Euclidean distance.
type SimilarityIndex struct {
	s *Store
}

// Insert stores an embedding. Re-inserting an existing key is a no-op.
func (x *SimilarityIndex) Insert(_ context.Context, e domain.Embedding) error {
	if e.DocumentKey == "" || e.RunID == "" || len(e.Vector) == 0 {
		return fmt.Errorf("%w: incomplete embedding", domain.ErrSimilarityIndex)
	}
	x.s.mu.Lock()
	defer x.s.mu.Unlock()

	k := runKey{id: e.DocumentKey, runID: e.RunID}
	if _, ok := x.s.embeddings[k]; ok {
		return nil
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.Vector = append([]float32(nil), e.Vector...)
	x.s.embeddings[k] = e
	x.s.embeddingOrder = append(x.s.embeddingOrder, k)
	return nil
}

// Nearest returns the assigned embedding in runID closest to vector.
// Ties keep the earliest inserted embedding.
func (x *SimilarityIndex) Nearest(_ context.Context, runID string, vector []float32) (*driven.Neighbour, error) {
	x.s.mu.RLock()
	defer x.s.mu.RUnlock()

	var (
		best     *driven.Neighbour
		bestDist float64
	)
	for _, k := range x.s.embeddingOrder {
		if k.runID != runID {
			continue
		}
		a, ok := x.s.assignments[k]
		if !ok {
			continue
		}
		e := x.s.embeddings[k]
		if len(e.Vector) != len(vector) {
			return nil, fmt.Errorf("%w: run %s holds %d-dimensional vectors, query has %d",
				domain.ErrSimilarityIndex, runID, len(e.Vector), len(vector))
		}
		d := squaredL2(e.Vector, vector)
		if best == nil || d < bestDist {
			best = &driven.Neighbour{
				DocumentKey: k.id,
				ClusterID:   a.ClusterID,
				Vector:      append([]float32(nil), e.Vector...),
			}
			bestDist = d
		}
	}
	return best, nil
}

// Count returns the number of assigned embeddings in runID.
func (x *SimilarityIndex) Count(_ context.Context, runID string) (int, error) {
	x.s.mu.RLock()
	defer x.s.mu.RUnlock()

	n := 0
	for _, k := range x.s.embeddingOrder {
		if k.runID != runID {
			continue
		}
		if _, ok := x.s.assignments[k]; ok {
			n++
		}
	}
	return n, nil
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
