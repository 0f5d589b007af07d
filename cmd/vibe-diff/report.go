package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-diff/internal/duckdb"
)

func newReportCmd() *cobra.Command {
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "report [sample...]",
		Short: "Show stored per-sample reports",
		Long:  "List the conversion reports stored in the --report-db database, optionally for selected samples only.",
		Example: `  vibe-diff report --report-db runs.duckdb
  vibe-diff report --report-db runs.duckdb SRR0001 SRR0002
  vibe-diff report --report-db runs.duckdb --clear`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openReportStore()
			if err != nil {
				return err
			}
			if store == nil {
				return usageErrorf("--%s is required", keyReportDB)
			}
			defer store.Close()

			if clearAll {
				if err := store.ClearReports(); err != nil {
					return fmt.Errorf("clear reports: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "Cleared all reports")
				return nil
			}

			var reports []duckdb.SampleReport
			if len(args) == 0 {
				if reports, err = store.ListReports(); err != nil {
					return err
				}
			}
			for _, sample := range args {
				r, err := store.LookupReport(sample)
				if err != nil {
					return err
				}
				if r == nil {
					return fmt.Errorf("no report for sample %q", sample)
				}
				reports = append(reports, *r)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SAMPLE\tVARIANTS\tRECORDS\tMASKED\tLOW_DEPTH\tMIN_DEPTH\tOUTPUT\tCREATED")
			for _, r := range reports {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.4f\t%d\t%s\t%s\n",
					r.Sample, r.Variants, r.Records, r.MaskedPositions, r.LowDepthFraction,
					r.MinDepth, r.Output, r.CreatedAt.Format(time.DateTime))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&clearAll, "clear", false, "Remove all stored reports")

	return cmd
}
