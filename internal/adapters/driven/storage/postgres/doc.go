// Package postgres provides a Postgres implementation of the page, event,
// cluster and similarity ports.
//
// Embeddings live in a pgvector column sized to the configured model, and
// nearest neighbour queries use the <-> (Euclidean distance) operator over
// assigned embeddings of a single run. The pgvector extension must be
// installable by the connecting role.
package postgres
