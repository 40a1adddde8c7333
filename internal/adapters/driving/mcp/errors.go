// Package mcp exposes page clustering over the Model Context Protocol so AI
// assistants can log browse events and explore the resulting clusters.
package mcp

import "errors"

// ErrMissingClusterService is returned when the cluster service is not provided.
var ErrMissingClusterService = errors.New("mcp: cluster service is required")

// ErrIngestDisabled is returned by log_event when no ingest service is wired.
var ErrIngestDisabled = errors.New("mcp: ingestion is not enabled")
