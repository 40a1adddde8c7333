// Package services implements the driving port interfaces.
// Services hold the clustering logic: assignment of new embeddings to
// clusters, cluster naming, ingestion of browse events and read queries.
//
// Services depend only on ports; adapters are injected at startup.
package services
