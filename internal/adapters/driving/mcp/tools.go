package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
)

// LogEventInput is the input schema for the log_event tool.
type LogEventInput struct {
	URL       string `json:"page_url" jsonschema:"the URL of the visited page"`
	Title     string `json:"page_title,omitempty" jsonschema:"the page title"`
	Content   string `json:"page_content,omitempty" jsonschema:"the page HTML, when available"`
	TabID     int    `json:"tab_id,omitempty" jsonschema:"the browser tab id"`
	EventType string `json:"event_type,omitempty" jsonschema:"the browser event kind, e.g. tab_updated"`
}

// LogEventOutput is the output schema for the log_event tool.
type LogEventOutput struct {
	EventID  string            `json:"event_id,omitempty"`
	Ignored  bool              `json:"ignored"`
	Skipped  bool              `json:"skipped"`
	Clusters map[string]string `json:"clusters,omitempty"`
}

// ListClustersInput is the input schema for the list_clusters tool.
type ListClustersInput struct {
	Run string `json:"run,omitempty" jsonschema:"embedding run to list; all runs when empty"`
}

// ListClustersOutput is the output schema for the list_clusters tool.
type ListClustersOutput struct {
	Clusters []domain.Cluster `json:"clusters"`
	Count    int              `json:"count"`
}

// ClusterPagesInput is the input schema for the cluster_pages tool.
type ClusterPagesInput struct {
	ClusterID string `json:"cluster_id" jsonschema:"the cluster to list"`
	Run       string `json:"run,omitempty" jsonschema:"embedding run holding the cluster"`
}

// ClusterPagesOutput is the output schema for the cluster_pages tool.
type ClusterPagesOutput struct {
	ClusterID string   `json:"cluster_id"`
	Pages     []string `json:"pages"`
	Count     int      `json:"count"`
}

// ListRunsInput is the empty input schema for the list_runs tool.
type ListRunsInput struct{}

// ListRunsOutput is the output schema for the list_runs tool.
type ListRunsOutput struct {
	Runs []domain.EmbeddingRun `json:"runs"`
}

// EventBucketsInput is the input schema for the event_buckets tool.
type EventBucketsInput struct {
	Run      string `json:"run" jsonschema:"embedding run to bucket by"`
	Interval string `json:"interval,omitempty" jsonschema:"bucket width as a Go duration (default 1h)"`
}

// EventBucketsOutput is the output schema for the event_buckets tool.
type EventBucketsOutput struct {
	Buckets []domain.EventBucket `json:"buckets"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "log_event",
		Description: "Record a browse event and cluster its page",
	}, s.handleLogEvent)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_clusters",
		Description: "List page clusters with their keyword names",
	}, s.handleListClusters)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "cluster_pages",
		Description: "List the page URLs assigned to a cluster",
	}, s.handleClusterPages)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_runs",
		Description: "List the embedding runs pages are clustered in",
	}, s.handleListRuns)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "event_buckets",
		Description: "Count browse events per time bucket and cluster",
	}, s.handleEventBuckets)
}

func (s *Server) handleLogEvent(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LogEventInput,
) (*mcp.CallToolResult, LogEventOutput, error) {
	if s.ports.Ingest == nil {
		return nil, LogEventOutput{}, ErrIngestDisabled
	}

	event := domain.BrowseEvent{
		URL:       input.URL,
		Title:     input.Title,
		TabID:     input.TabID,
		EventType: input.EventType,
	}
	if input.Content != "" {
		event.Content = &input.Content
	}

	result, err := s.ports.Ingest.LogEvent(ctx, event)
	if result == nil {
		return nil, LogEventOutput{}, err
	}
	// A partial result still reports the runs that succeeded.
	return nil, LogEventOutput{
		EventID:  result.EventID,
		Ignored:  result.Ignored,
		Skipped:  result.Skipped,
		Clusters: result.Clusters,
	}, err
}

func (s *Server) handleListClusters(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListClustersInput,
) (*mcp.CallToolResult, ListClustersOutput, error) {
	clusters, err := s.ports.Clusters.Clusters(ctx, input.Run)
	if err != nil {
		return nil, ListClustersOutput{}, err
	}
	return nil, ListClustersOutput{Clusters: clusters, Count: len(clusters)}, nil
}

func (s *Server) handleClusterPages(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ClusterPagesInput,
) (*mcp.CallToolResult, ClusterPagesOutput, error) {
	pages, err := s.ports.Clusters.Members(ctx, input.ClusterID, input.Run)
	if err != nil {
		return nil, ClusterPagesOutput{}, err
	}
	return nil, ClusterPagesOutput{ClusterID: input.ClusterID, Pages: pages, Count: len(pages)}, nil
}

func (s *Server) handleListRuns(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListRunsInput,
) (*mcp.CallToolResult, ListRunsOutput, error) {
	runs, err := s.ports.Clusters.Runs(ctx)
	if err != nil {
		return nil, ListRunsOutput{}, err
	}
	return nil, ListRunsOutput{Runs: runs}, nil
}

func (s *Server) handleEventBuckets(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EventBucketsInput,
) (*mcp.CallToolResult, EventBucketsOutput, error) {
	query := domain.BucketQuery{RunID: input.Run}
	if input.Interval != "" {
		d, err := time.ParseDuration(input.Interval)
		if err != nil {
			return nil, EventBucketsOutput{}, err
		}
		query.Interval = d
	}
	buckets, err := s.ports.Clusters.EventBuckets(ctx, query)
	if err != nil {
		return nil, EventBucketsOutput{}, err
	}
	return nil, EventBucketsOutput{Buckets: buckets}, nil
}
