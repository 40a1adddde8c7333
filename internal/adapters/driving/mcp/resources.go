package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const uriScheme = "pagecluster://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "runs",
		Name:        "runs",
		Description: "Embedding runs and their pipeline configuration",
		MIMEType:    "application/json",
	}, s.handleRunsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "runs/{runId}/clusters",
		Name:        "run-clusters",
		Description: "Clusters of one embedding run",
		MIMEType:    "application/json",
	}, s.handleRunClustersResource)
}

func (s *Server) handleRunsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	runs, err := s.ports.Clusters.Runs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return jsonResource(req.Params.URI, runs)
}

func (s *Server) handleRunClustersResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	runID := extractRunID(req.Params.URI)
	if runID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	clusters, err := s.ports.Clusters.Clusters(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("listing clusters: %w", err)
	}
	return jsonResource(req.Params.URI, clusters)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractRunID parses pagecluster://runs/{runId}/clusters.
func extractRunID(uri string) string {
	rest, ok := strings.CutPrefix(uri, uriScheme+"runs/")
	if !ok {
		return ""
	}
	runID, ok := strings.CutSuffix(rest, "/clusters")
	if !ok || strings.Contains(runID, "/") {
		return ""
	}
	return runID
}
