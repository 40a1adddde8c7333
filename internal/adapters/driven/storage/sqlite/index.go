package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
)

// ==================== Similarity Index ====================

// similarityIndex implements driven.SimilarityIndex.
type similarityIndex struct {
	store *Store
}

var _ driven.SimilarityIndex = (*similarityIndex)(nil)

// Insert stores an embedding. Re-inserting an existing key is a no-op.
func (x *similarityIndex) Insert(ctx context.Context, e domain.Embedding) error {
	if e.DocumentKey == "" || e.RunID == "" || len(e.Vector) == 0 {
		return fmt.Errorf("%w: incomplete embedding", domain.ErrSimilarityIndex)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := x.store.db.ExecContext(ctx, `
		INSERT INTO embeddings (document_key, run_id, vector, dimensions, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(document_key, run_id) DO NOTHING
	`, e.DocumentKey, e.RunID, float32SliceToBytes(e.Vector), len(e.Vector), e.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("%w: inserting embedding: %w", domain.ErrSimilarityIndex, err)
	}
	return nil
}

// Nearest scans the assigned embeddings of runID and returns the one with
// the smallest squared Euclidean distance. Ties keep the earliest insert.
func (x *similarityIndex) Nearest(ctx context.Context, runID string, vector []float32) (*driven.Neighbour, error) {
	rows, err := x.store.db.QueryContext(ctx, `
		SELECT e.document_key, a.cluster_id, e.vector
		FROM embeddings e
		JOIN cluster_assignments a
			ON a.document_key = e.document_key AND a.run_id = e.run_id
		WHERE e.run_id = ?
		ORDER BY e.rowid
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying embeddings: %w", domain.ErrSimilarityIndex, err)
	}
	defer rows.Close()

	var (
		best     *driven.Neighbour
		bestDist float64
	)
	for rows.Next() {
		var key, clusterID string
		var blob []byte
		if err := rows.Scan(&key, &clusterID, &blob); err != nil {
			return nil, fmt.Errorf("%w: scanning embedding: %w", domain.ErrSimilarityIndex, err)
		}
		stored := bytesToFloat32Slice(blob)
		if len(stored) != len(vector) {
			return nil, fmt.Errorf("%w: run %s holds %d-dimensional vectors, query has %d",
				domain.ErrSimilarityIndex, runID, len(stored), len(vector))
		}
		d := squaredL2(stored, vector)
		if best == nil || d < bestDist {
			best = &driven.Neighbour{DocumentKey: key, ClusterID: clusterID, Vector: stored}
			bestDist = d
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating embeddings: %w", domain.ErrSimilarityIndex, err)
	}
	return best, nil
}

// Count returns the number of assigned embeddings in runID.
func (x *similarityIndex) Count(ctx context.Context, runID string) (int, error) {
	var n int
	err := x.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM embeddings e
		JOIN cluster_assignments a
			ON a.document_key = e.document_key AND a.run_id = e.run_id
		WHERE e.run_id = ?
	`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: counting embeddings: %w", domain.ErrSimilarityIndex, err)
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
