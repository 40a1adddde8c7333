package cli

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recorded browse events",
	RunE:  runEventsList,
}

var eventsBucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "Count events per time bucket and cluster",
	RunE:  runEventsBuckets,
}

func init() {
	eventsBucketsCmd.Flags().String("run", "", "embedding run to bucket by (required)")
	eventsBucketsCmd.Flags().Duration("interval", time.Hour, "bucket width")
	eventsBucketsCmd.Flags().Duration("since", 0, "only count events newer than this")
	eventsCmd.AddCommand(eventsBucketsCmd)
	rootCmd.AddCommand(eventsCmd)
}

func runEventsList(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}
	events, err := svc.Clusters.Events(cmd.Context())
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tTYPE\tURL\tCLUSTERS")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.Event.Timestamp.Local().Format(time.DateTime), e.Event.EventType, e.Event.URL, formatClusters(e.Clusters))
	}
	return w.Flush()
}

func runEventsBuckets(cmd *cobra.Command, _ []string) error {
	run, _ := cmd.Flags().GetString("run")              //nolint:errcheck // registered flag
	interval, _ := cmd.Flags().GetDuration("interval") //nolint:errcheck // registered flag
	since, _ := cmd.Flags().GetDuration("since")       //nolint:errcheck // registered flag

	query := domain.BucketQuery{RunID: run, Interval: interval}
	if since > 0 {
		query.From = time.Now().Add(-since)
	}

	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}
	buckets, err := svc.Clusters.EventBuckets(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("event buckets: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BUCKET\tCLUSTER\tNAME\tEVENTS")
	for _, b := range buckets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
			b.Start.Local().Format(time.DateTime), b.ClusterID, b.ClusterName, b.Count)
	}
	return w.Flush()
}

// formatClusters renders run=cluster pairs in run order.
func formatClusters(clusters map[string]string) string {
	if len(clusters) == 0 {
		return "-"
	}
	pairs := make([]string, 0, len(clusters))
	for run, id := range clusters {
		pairs = append(pairs, run+"="+id)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, " ")
}
