// Package cli provides the pagecluster command line.
package cli

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driving"
	"github.com/custodia-labs/pagecluster/internal/logger"
)

// version is set by SetVersion from build flags.
var version = "dev"

// Services holds the wired application services. Close releases storage
// and the embedding client.
type Services struct {
	Ingest   driving.IngestService
	Clusters driving.ClusterService
	Metrics  http.Handler
	Server   domain.ServerSettings
	Close    func() error
}

// Bootstrap wires the services from the current settings.
type Bootstrap func(ctx context.Context) (*Services, error)

var (
	settingsService driving.SettingsService
	bootstrap       Bootstrap

	servicesMu sync.Mutex
	services   *Services
)

var rootCmd = &cobra.Command{
	Use:   "pagecluster",
	Short: "Incremental semantic clustering of web pages",
	Long: `pagecluster records browse events and groups the pages they visit into
named clusters of similar content. Each enabled pipeline turns a page into an
embedding and clusters it independently.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose") //nolint:errcheck // flag is registered below
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetSettingsService sets the settings service used by settings commands.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetBootstrap sets how commands obtain services. Services are built on
// first use so settings commands work before storage is configured.
func SetBootstrap(b Bootstrap) {
	servicesMu.Lock()
	defer servicesMu.Unlock()
	bootstrap = b
	services = nil
}

// Execute runs the root command and releases services afterwards.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}

// loadServices returns the services, wiring them on first call.
func loadServices(ctx context.Context) (*Services, error) {
	servicesMu.Lock()
	defer servicesMu.Unlock()
	if services != nil {
		return services, nil
	}
	if bootstrap == nil {
		return nil, errors.New("services not configured")
	}
	s, err := bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	services = s
	return services, nil
}

func closeServices() {
	servicesMu.Lock()
	defer servicesMu.Unlock()
	if services != nil && services.Close != nil {
		if err := services.Close(); err != nil {
			logger.Warn("close services: %v", err)
		}
	}
	services = nil
}
