// Package file provides the TOML file implementation of driven.ConfigStore.
//
// Settings live in config.toml under the pagecluster home directory
// (~/.pagecluster by default). Keys are addressed in dot notation and written
// back as nested tables, so "clustering.threshold" becomes:
//
//	[clustering]
//	threshold = 0.8
//
// Environment variables named PAGECLUSTER_<KEY>, with dots replaced by
// underscores and upper-cased, override file values at read time.
package file
