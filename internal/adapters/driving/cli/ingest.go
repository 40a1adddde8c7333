package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagecluster/internal/connectors/filesystem"
	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driving"
	"github.com/custodia-labs/pagecluster/internal/logger"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest FILE|DIR...",
	Short: "Cluster saved HTML pages",
	Long: `Cluster saved HTML pages through every enabled pipeline.

Directories are scanned recursively for .html and .htm files. A page's URL is
taken from the "saved from url" marker or canonical link in the file, or the
file:// URL when neither is present. Use --url to set it for a single file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var ingestWatchCmd = &cobra.Command{
	Use:   "watch DIR",
	Short: "Cluster HTML pages as they are saved into a directory",
	Long: `Watch a directory and cluster every .html file created or written in it.
Existing files are ingested first unless --new-only is set. Stops on SIGINT.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngestWatch,
}

func init() {
	ingestCmd.Flags().String("url", "", "page URL for a single file")
	ingestWatchCmd.Flags().Bool("new-only", false, "skip files already in the directory")
	ingestCmd.AddCommand(ingestWatchCmd)
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	url, _ := cmd.Flags().GetString("url") //nolint:errcheck // registered flag
	if url != "" && len(args) > 1 {
		return errors.New("--url applies to a single file")
	}

	pages, err := collectPages(args)
	if err != nil {
		return err
	}
	if url != "" {
		if len(pages) != 1 {
			return errors.New("--url applies to a single file")
		}
		pages[0].URL = url
	}
	if len(pages) == 0 {
		cmd.Println("No HTML pages found.")
		return nil
	}

	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}

	results, err := svc.Ingest.IngestBatch(cmd.Context(), pages)
	for i := range results {
		printResult(cmd, &results[i])
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	cmd.Printf("Ingested %d pages.\n", len(results))
	return nil
}

// collectPages reads files and scans directories.
func collectPages(args []string) ([]domain.Page, error) {
	var pages []domain.Page
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			found, err := filesystem.Scan(arg)
			if err != nil {
				return nil, fmt.Errorf("scan %s: %w", arg, err)
			}
			pages = append(pages, found...)
			continue
		}
		page, err := filesystem.ReadPage(arg)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", arg, err)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func runIngestWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := loadServices(ctx)
	if err != nil {
		return err
	}

	if newOnly, _ := cmd.Flags().GetBool("new-only"); !newOnly { //nolint:errcheck // registered flag
		existing, err := filesystem.Scan(dir)
		if err != nil {
			return fmt.Errorf("scan %s: %w", dir, err)
		}
		if len(existing) > 0 {
			results, err := svc.Ingest.IngestBatch(ctx, existing)
			for i := range results {
				printResult(cmd, &results[i])
			}
			if err != nil {
				logger.Warn("initial ingest: %v", err)
			}
		}
	}

	watcher := filesystem.NewWatcher(dir)
	pages, err := watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	defer watcher.Close()
	cmd.Printf("Watching %s for new pages...\n", dir)

	for page := range pages {
		result, err := svc.Ingest.ProcessPage(ctx, page)
		if result != nil {
			printResult(cmd, result)
		}
		if err != nil {
			logger.Error(err, "ingest %s", page.URL)
		}
	}
	return nil
}

// printResult prints one page and its cluster per run.
func printResult(cmd *cobra.Command, r *driving.IngestResult) {
	switch {
	case r.Ignored:
		cmd.Printf("%s (ignored)\n", r.URL)
		return
	case r.Skipped:
		cmd.Printf("%s (already clustered)\n", r.URL)
		return
	}

	cmd.Println(r.URL)
	runs := make([]string, 0, len(r.Clusters))
	for run := range r.Clusters {
		runs = append(runs, run)
	}
	sort.Strings(runs)
	for _, run := range runs {
		marker := ""
		if slices.Contains(r.Founded, run) {
			marker = " (new)"
		}
		cmd.Printf("  %-20s %s%s\n", run, r.Clusters[run], marker)
	}
}
