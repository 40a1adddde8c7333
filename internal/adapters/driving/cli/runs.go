package cli

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagecluster/internal/preprocessing"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List embedding runs",
	Long: `List the embedding runs clusters live in: the enabled pipelines and any
run that still holds clusters in storage.`,
	RunE: runRuns,
}

var pipelinesCmd = &cobra.Command{
	Use:   "pipelines",
	Short: "List available preprocessing pipelines",
	RunE:  runPipelines,
}

func init() {
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(pipelinesCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}
	runs, err := svc.Clusters.Runs(cmd.Context())
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTEPS\tMODEL\tDIMENSIONS")
	for _, r := range runs {
		model, dims := r.Model, fmt.Sprint(r.Dimensions)
		if model == "" {
			model, dims = "-", "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Name, formatSteps(r.Steps), model, dims)
	}
	return w.Flush()
}

func runPipelines(cmd *cobra.Command, _ []string) error {
	var enabled []string
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			enabled = settings.Pipelines
		}
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PIPELINE\tSTEPS\tENABLED")
	for _, def := range preprocessing.DefaultDefinitions() {
		on := "no"
		if slices.Contains(enabled, def.Name) {
			on = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", def.Name, formatSteps(def.Steps), on)
	}
	return w.Flush()
}

func formatSteps(steps []string) string {
	if len(steps) == 0 {
		return "(raw)"
	}
	return strings.Join(steps, " > ")
}
