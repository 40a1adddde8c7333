// Command pagecluster records browse events and clusters the visited pages
// by semantic similarity.
package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/custodia-labs/pagecluster/internal/adapters/driven/ai"
	"github.com/custodia-labs/pagecluster/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pagecluster/internal/adapters/driving/cli"
	"github.com/custodia-labs/pagecluster/internal/core/services"
	"github.com/custodia-labs/pagecluster/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	logger.SetPretty(term.IsTerminal(int(os.Stderr.Fd())))

	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: open config:", err)
		os.Exit(1)
	}
	settings := services.NewSettingsService(configStore, ai.NewConfigValidator())

	cli.SetVersion(version)
	cli.SetSettingsService(settings)
	cli.SetBootstrap(newBootstrap(settings))

	// cobra reports the error itself.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
