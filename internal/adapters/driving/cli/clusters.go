package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var clustersCmd = &cobra.Command{
	Use:   "clusters",
	Short: "Inspect page clusters",
}

var clustersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clusters and their names",
	RunE:  runClustersList,
}

var clustersPagesCmd = &cobra.Command{
	Use:   "pages CLUSTER_ID",
	Short: "List the pages in a cluster",
	Long: `List the pages assigned to a cluster. When --run is omitted the cluster
must exist in exactly one run.`,
	Args: cobra.ExactArgs(1),
	RunE: runClustersPages,
}

func init() {
	clustersListCmd.Flags().String("run", "", "embedding run (default all runs)")
	clustersPagesCmd.Flags().String("run", "", "embedding run holding the cluster")
	clustersCmd.AddCommand(clustersListCmd)
	clustersCmd.AddCommand(clustersPagesCmd)
	rootCmd.AddCommand(clustersCmd)
}

func runClustersList(cmd *cobra.Command, _ []string) error {
	run, _ := cmd.Flags().GetString("run") //nolint:errcheck // registered flag
	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}

	clusters, err := svc.Clusters.Clusters(cmd.Context(), run)
	if err != nil {
		return fmt.Errorf("list clusters: %w", err)
	}
	if len(clusters) == 0 {
		cmd.Println("No clusters yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tID\tNAME")
	for _, c := range clusters {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.RunID, c.ID, c.Name)
	}
	return w.Flush()
}

func runClustersPages(cmd *cobra.Command, args []string) error {
	run, _ := cmd.Flags().GetString("run") //nolint:errcheck // registered flag
	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}

	pages, err := svc.Clusters.Members(cmd.Context(), args[0], run)
	if err != nil {
		return fmt.Errorf("cluster %s: %w", args[0], err)
	}
	for _, p := range pages {
		cmd.Println(p)
	}
	return nil
}
