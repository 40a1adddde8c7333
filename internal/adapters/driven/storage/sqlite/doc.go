// Package sqlite provides a SQLite-backed implementation of the page,
// event, cluster and similarity ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. All stores share one database connection:
//
//   - PageStore: pages keyed by URL
//   - EventStore: browse events joined with their cluster per run
//   - ClusterStore: clusters and append-only assignments
//   - SimilarityIndex: embeddings with brute-force nearest neighbour search
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.pagecluster/data/pagecluster.db
//
// # Similarity
//
// Vectors are stored as little-endian float32 BLOBs. Nearest neighbour
// queries scan the assigned embeddings of one run and rank them by squared
// Euclidean distance.
package sqlite
