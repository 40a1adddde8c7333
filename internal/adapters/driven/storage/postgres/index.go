package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
)

type similarityIndex struct {
	store *Store
}

var _ driven.SimilarityIndex = (*similarityIndex)(nil)

func (x *similarityIndex) Insert(ctx context.Context, e domain.Embedding) error {
	if e.DocumentKey == "" || e.RunID == "" {
		return fmt.Errorf("%w: incomplete embedding", domain.ErrSimilarityIndex)
	}
	lit, err := toVectorLiteral(e.Vector, x.store.dimension)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSimilarityIndex, err)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err = x.store.db.ExecContext(ctx, `
INSERT INTO embeddings (document_key, run_id, embedding, created_at)
VALUES ($1, $2, $3::vector, $4)
ON CONFLICT (document_key, run_id) DO NOTHING`,
		e.DocumentKey, e.RunID, lit, e.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("%w: insert embedding: %w", domain.ErrSimilarityIndex, err)
	}
	return nil
}

// Nearest orders the assigned embeddings of runID by Euclidean distance
// and returns the first. Ties keep the earliest insert.
func (x *similarityIndex) Nearest(ctx context.Context, runID string, vector []float32) (*driven.Neighbour, error) {
	lit, err := toVectorLiteral(vector, x.store.dimension)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSimilarityIndex, err)
	}

	var nb driven.Neighbour
	var stored string
	err = x.store.db.QueryRowContext(ctx, `
SELECT e.document_key, a.cluster_id, e.embedding::text
FROM embeddings e
JOIN cluster_assignments a ON a.document_key = e.document_key AND a.run_id = e.run_id
WHERE e.run_id = $1
ORDER BY e.embedding <-> $2::vector, e.seq
LIMIT 1`, runID, lit).Scan(&nb.DocumentKey, &nb.ClusterID, &stored)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: nearest: %w", domain.ErrSimilarityIndex, err)
	}

	nb.Vector, err = parseVectorLiteral(stored)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSimilarityIndex, err)
	}
	return &nb, nil
}

func (x *similarityIndex) Count(ctx context.Context, runID string) (int, error) {
	var n int
	err := x.store.db.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM embeddings e
JOIN cluster_assignments a ON a.document_key = e.document_key AND a.run_id = e.run_id
WHERE e.run_id = $1`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: count: %w", domain.ErrSimilarityIndex, err)
	}
	return n, nil
}
