// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Clustering Interfaces
//
//   - TextStep: A pure, fallible text transform (normaliser, keyword step)
//   - EmbeddingService: Maps text to a fixed-size vector
//   - Pipeline: Ordered text steps followed by one embedding step
//   - PipelineRegistry: The registered pipelines, one per embedding run
//   - KeywordExtractor: Ranks salient terms of a text
//   - SimilarityIndex: Run-scoped single nearest neighbour lookup
//
// # Storage Interfaces
//
//   - ClusterStore: Clusters and assignments
//   - PageStore: Page content keyed by URL
//   - EventStore: Browse events
//   - ConfigStore: Application configuration
//
// # Ambient Interfaces
//
//   - IngestMetrics: Counters and timings recorded during ingestion
//   - AIConfigValidator: Checks an embedding provider is reachable
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
