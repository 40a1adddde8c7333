package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Store is a Postgres-backed storage that provides access to all store
// interfaces through wrapper types.
type Store struct {
	db        *sql.DB
	dimension int
}

// NewStore connects to Postgres and ensures the schema exists. dimension
// sizes the embedding column and must match the embedding model.
func NewStore(dsn string, dimension int) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres dsn is required", domain.ErrInvalidInput)
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", domain.ErrRowStore, err)
	}
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return NewStoreFromDB(db, dimension)
}

// NewStoreFromDB reuses an existing *sql.DB.
func NewStoreFromDB(db *sql.DB, dimension int) (*Store, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: embedding dimension must be positive", domain.ErrInvalidInput)
	}
	s := &Store{db: db, dimension: dimension}
	if err := s.ensureTables(); err != nil {
		return nil, fmt.Errorf("%w: creating schema: %w", domain.ErrRowStore, err)
	}
	return s, nil
}

func (s *Store) ensureTables() error {
	ddl := fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;
CREATE TABLE IF NOT EXISTS pages (
  url         text PRIMARY KEY,
  content     text,
  observed_at timestamptz NOT NULL
);
CREATE TABLE IF NOT EXISTS events (
  seq        bigserial,
  id         text PRIMARY KEY,
  tab_id     integer NOT NULL DEFAULT 0,
  timestamp  timestamptz NOT NULL,
  page_url   text NOT NULL,
  page_title text NOT NULL DEFAULT '',
  event_type text NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS events_page_url_idx ON events (page_url);
CREATE TABLE IF NOT EXISTS embeddings (
  seq          bigserial,
  document_key text NOT NULL,
  run_id       text NOT NULL,
  embedding    vector(%d) NOT NULL,
  created_at   timestamptz NOT NULL DEFAULT now(),
  PRIMARY KEY (document_key, run_id)
);
CREATE INDEX IF NOT EXISTS embeddings_run_idx ON embeddings (run_id);
CREATE TABLE IF NOT EXISTS clusters (
  seq        bigserial,
  id         text NOT NULL,
  run_id     text NOT NULL,
  name       text NOT NULL DEFAULT '',
  created_at timestamptz NOT NULL DEFAULT now(),
  PRIMARY KEY (id, run_id)
);
CREATE TABLE IF NOT EXISTS cluster_assignments (
  seq          bigserial,
  document_key text NOT NULL,
  run_id       text NOT NULL,
  cluster_id   text NOT NULL,
  created_at   timestamptz NOT NULL DEFAULT now(),
  PRIMARY KEY (document_key, run_id)
);
CREATE INDEX IF NOT EXISTS cluster_assignments_cluster_idx ON cluster_assignments (run_id, cluster_id);
`, s.dimension)
	_, err := s.db.Exec(ddl)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Dimension returns the embedding column size.
func (s *Store) Dimension() int {
	return s.dimension
}

// PageStore returns a PageStore backed by this store.
func (s *Store) PageStore() driven.PageStore {
	return &pageStore{store: s}
}

// EventStore returns an EventStore backed by this store.
func (s *Store) EventStore() driven.EventStore {
	return &eventStore{store: s}
}

// ClusterStore returns a ClusterStore backed by this store.
func (s *Store) ClusterStore() driven.ClusterStore {
	return &clusterStore{store: s}
}

// SimilarityIndex returns a SimilarityIndex backed by this store.
func (s *Store) SimilarityIndex() driven.SimilarityIndex {
	return &similarityIndex{store: s}
}

// isUniqueViolation reports whether err is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}

// toVectorLiteral renders a vector in pgvector's text form.
func toVectorLiteral(embedding []float32, dim int) (string, error) {
	if len(embedding) == 0 {
		return "", errors.New("embedding is required")
	}
	if dim > 0 && len(embedding) != dim {
		return "", fmt.Errorf("embedding length %d does not match dimension %d", len(embedding), dim)
	}
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ",")), nil
}

// parseVectorLiteral parses pgvector's text form.
func parseVectorLiteral(lit string) ([]float32, error) {
	lit = strings.TrimSpace(lit)
	if !strings.HasPrefix(lit, "[") || !strings.HasSuffix(lit, "]") {
		return nil, fmt.Errorf("malformed vector %q", lit)
	}
	body := strings.TrimSpace(lit[1 : len(lit)-1])
	if body == "" {
		return nil, nil
	}
	parts := strings.Split(body, ",")
	out := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("malformed vector element %q: %w", p, err)
		}
		out[i] = float32(f)
	}
	return out, nil
}
