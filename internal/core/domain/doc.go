// Package domain defines the core business entities for pagecluster.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Page: A rendered web page keyed by URL
//   - BrowseEvent: A single observation of a page by the browser
//   - Embedding: A vector produced by one pipeline (embedding run)
//   - Cluster: A named group of pages within one embedding run
//   - ClusterAssignment: The cluster a page belongs to in one run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
