package mcp

import (
	"github.com/custodia-labs/pagecluster/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server calls.
type Ports struct {
	// Clusters answers cluster and event queries.
	Clusters driving.ClusterService

	// Ingest records browse events. Optional; log_event fails without it.
	Ingest driving.IngestService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Clusters == nil {
		return ErrMissingClusterService
	}
	return nil
}
