package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagecluster/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/pagecluster/internal/adapters/driving/mcp"
	"github.com/custodia-labs/pagecluster/internal/logger"
)

const defaultShutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP ingestion server",
	Long: `Start the HTTP server the browser extension reports events to.

Endpoints:
  POST /log_event           record a browse event
  GET  /return_all_events   list events with their clusters
  GET  /get_event_buckets   event counts per hour and cluster (?run=)
  GET  /clusters            list clusters (?run=)
  GET  /pages               pages in a cluster (?cluster_id=&run=)
  GET  /runs                embedding runs
  GET  /metrics             Prometheus metrics
  POST /mcp                 MCP over streamable HTTP

The server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from settings)")
	serveCmd.Flags().Bool("no-mcp", false, "do not mount the MCP endpoint")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := loadServices(ctx)
	if err != nil {
		return err
	}

	cfg := httpapi.Config{
		Addr:           svc.Server.Address,
		AllowedOrigins: svc.Server.AllowedOrigins,
		Metrics:        svc.Metrics,
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" { //nolint:errcheck // registered flag
		cfg.Addr = addr
	}
	if noMCP, _ := cmd.Flags().GetBool("no-mcp"); !noMCP { //nolint:errcheck // registered flag
		mcpServer, err := mcp.NewServer(&mcp.Ports{Clusters: svc.Clusters, Ingest: svc.Ingest})
		if err != nil {
			return err
		}
		cfg.MCP = mcpServer.Handler()
	}

	server, err := httpapi.NewServer(cfg, svc.Ingest, svc.Clusters)
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return err
	}
	cmd.Printf("Listening on http://%s\n", server.Addr())

	select {
	case <-ctx.Done():
	case err := <-server.Errors():
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("shutting down")
	timeout := svc.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
