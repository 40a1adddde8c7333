package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
)

// ==================== Cluster Store ====================

// clusterStore implements driven.ClusterStore.
type clusterStore struct {
	store *Store
}

var _ driven.ClusterStore = (*clusterStore)(nil)

// CreateIfAbsent inserts a cluster unless (id, run) exists.
func (c *clusterStore) CreateIfAbsent(ctx context.Context, cluster domain.Cluster) (bool, error) {
	if cluster.ID == "" || cluster.RunID == "" {
		return false, domain.ErrInvalidInput
	}

	res, err := c.store.db.ExecContext(ctx, `
		INSERT INTO clusters (id, run_id, name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id, run_id) DO NOTHING
	`, cluster.ID, cluster.RunID, cluster.Name, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("%w: inserting cluster: %w", domain.ErrRowStore, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: inserting cluster: %w", domain.ErrRowStore, err)
	}
	return n == 1, nil
}

// Get retrieves a cluster.
func (c *clusterStore) Get(ctx context.Context, id, runID string) (*domain.Cluster, error) {
	row := c.store.db.QueryRowContext(ctx, `
		SELECT id, name, run_id FROM clusters WHERE id = ? AND run_id = ?
	`, id, runID)

	var cluster domain.Cluster
	if err := row.Scan(&cluster.ID, &cluster.Name, &cluster.RunID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning cluster: %w", domain.ErrRowStore, err)
	}
	return &cluster, nil
}

// List returns clusters in creation order.
func (c *clusterStore) List(ctx context.Context, runID string) ([]domain.Cluster, error) {
	rows, err := c.store.db.QueryContext(ctx, `
		SELECT id, name, run_id FROM clusters
		WHERE ? = '' OR run_id = ?
		ORDER BY rowid
	`, runID, runID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying clusters: %w", domain.ErrRowStore, err)
	}
	defer rows.Close()

	clusters := []domain.Cluster{}
	for rows.Next() {
		var cluster domain.Cluster
		if err := rows.Scan(&cluster.ID, &cluster.Name, &cluster.RunID); err != nil {
			return nil, fmt.Errorf("%w: scanning cluster: %w", domain.ErrRowStore, err)
		}
		clusters = append(clusters, cluster)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating clusters: %w", domain.ErrRowStore, err)
	}
	return clusters, nil
}

// Runs returns the sorted ids of runs holding clusters.
func (c *clusterStore) Runs(ctx context.Context) ([]string, error) {
	return c.strings(ctx, `SELECT DISTINCT run_id FROM clusters ORDER BY run_id`)
}

// SaveAssignment appends an assignment.
func (c *clusterStore) SaveAssignment(ctx context.Context, a domain.ClusterAssignment) error {
	if a.DocumentKey == "" || a.ClusterID == "" || a.RunID == "" {
		return domain.ErrInvalidInput
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	res, err := c.store.db.ExecContext(ctx, `
		INSERT INTO cluster_assignments (document_key, run_id, cluster_id, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(document_key, run_id) DO NOTHING
	`, a.DocumentKey, a.RunID, a.ClusterID, a.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("%w: inserting assignment: %w", domain.ErrRowStore, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: inserting assignment: %w", domain.ErrRowStore, err)
	}
	if n == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

// Assignment retrieves the assignment of a document in a run.
func (c *clusterStore) Assignment(ctx context.Context, documentKey, runID string) (*domain.ClusterAssignment, error) {
	row := c.store.db.QueryRowContext(ctx, `
		SELECT document_key, cluster_id, run_id, created_at
		FROM cluster_assignments WHERE document_key = ? AND run_id = ?
	`, documentKey, runID)

	var a domain.ClusterAssignment
	if err := row.Scan(&a.DocumentKey, &a.ClusterID, &a.RunID, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning assignment: %w", domain.ErrRowStore, err)
	}
	return &a, nil
}

// Members returns the documents of a cluster in assignment order.
func (c *clusterStore) Members(ctx context.Context, clusterID, runID string) ([]string, error) {
	return c.strings(ctx, `
		SELECT document_key FROM cluster_assignments
		WHERE cluster_id = ? AND run_id = ?
		ORDER BY rowid
	`, clusterID, runID)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRowStore, err)
	}
	return out, nil
}
