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

type clusterStore struct {
	store *Store
}

var _ driven.ClusterStore = (*clusterStore)(nil)

func (c *clusterStore) CreateIfAbsent(ctx context.Context, cluster domain.Cluster) (bool, error) {
	if cluster.ID == "" || cluster.RunID == "" {
		return false, domain.ErrInvalidInput
	}
	res, err := c.store.db.ExecContext(ctx, `
INSERT INTO clusters (id, run_id, name) VALUES ($1, $2, $3)
ON CONFLICT (id, run_id) DO NOTHING`,
		cluster.ID, cluster.RunID, cluster.Name)
	if err != nil {
		return false, fmt.Errorf("%w: insert cluster: %w", domain.ErrRowStore, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: insert cluster: %w", domain.ErrRowStore, err)
	}
	return n == 1, nil
}

func (c *clusterStore) Get(ctx context.Context, id, runID string) (*domain.Cluster, error) {
	var cluster domain.Cluster
	err := c.store.db.QueryRowContext(ctx,
		`SELECT id, name, run_id FROM clusters WHERE id = $1 AND run_id = $2`, id, runID,
	).Scan(&cluster.ID, &cluster.Name, &cluster.RunID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get cluster: %w", domain.ErrRowStore, err)
	}
	return &cluster, nil
}

func (c *clusterStore) List(ctx context.Context, runID string) ([]domain.Cluster, error) {
	rows, err := c.store.db.QueryContext(ctx,
		`SELECT id, name, run_id FROM clusters WHERE ($1 = '' OR run_id = $1) ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("%w: list clusters: %w", domain.ErrRowStore, err)
	}
	defer rows.Close()

	clusters := []domain.Cluster{}
	for rows.Next() {
		var cluster domain.Cluster
		if err := rows.Scan(&cluster.ID, &cluster.Name, &cluster.RunID); err != nil {
			return nil, fmt.Errorf("%w: scan cluster: %w", domain.ErrRowStore, err)
		}
		clusters = append(clusters, cluster)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list clusters: %w", domain.ErrRowStore, err)
	}
	return clusters, nil
}

func (c *clusterStore) Runs(ctx context.Context) ([]string, error) {
	return c.strings(ctx, `SELECT DISTINCT run_id FROM clusters ORDER BY run_id`)
}

func (c *clusterStore) SaveAssignment(ctx context.Context, a domain.ClusterAssignment) error {
	if a.DocumentKey == "" || a.ClusterID == "" || a.RunID == "" {
		return domain.ErrInvalidInput
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	_, err := c.store.db.ExecContext(ctx, `
INSERT INTO cluster_assignments (document_key, run_id, cluster_id, created_at)
VALUES ($1, $2, $3, $4)`,
		a.DocumentKey, a.RunID, a.ClusterID, a.CreatedAt.UTC())
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("%w: insert assignment: %w", domain.ErrRowStore, err)
	}
	return nil
}

func (c *clusterStore) Assignment(ctx context.Context, documentKey, runID string) (*domain.ClusterAssignment, error) {
	var a domain.ClusterAssignment
	err := c.store.db.QueryRowContext(ctx, `
SELECT document_key, cluster_id, run_id, created_at
FROM cluster_assignments WHERE document_key = $1 AND run_id = $2`, documentKey, runID,
	).Scan(&a.DocumentKey, &a.ClusterID, &a.RunID, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get assignment: %w", domain.ErrRowStore, err)
	}
	return &a, nil
}

func (c *clusterStore) Members(ctx context.Context, clusterID, runID string) ([]string, error) {
	return c.strings(ctx, `
SELECT document_key FROM cluster_assignments
WHERE cluster_id = $1 AND run_id = $2 ORDER BY seq`, clusterID, runID)
}

func (c *clusterStore) strings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := c.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRowStore, err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrRowStore, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
