package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-diff/internal/pipeline"
)

func newRemaskCmd() *cobra.Command {
	var inputPath, coverage, outputPath string

	cmd := &cobra.Command{
		Use:   "remask",
		Short: "Apply depth and static masks to an existing diff",
		Long: `Read a diff file (tab-delimited, or Arrow IPC when it ends in .arrow) and
apply the depth mask from --bedgraph and the static --mask-file. Remasking
with the masks a diff was built with leaves it unchanged.`,
		Example: `  vibe-diff remask --diff SRR0001.diff --mask-file new_mask.bed -o SRR0001.masked.diff
  vibe-diff remask --diff SRR0001.diff --bedgraph SRR0001_merged.bed --min-depth 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" {
				return usageErrorf("--diff is required")
			}
			if coverage == "" && viper.GetString(keyMaskFile) == "" {
				return usageErrorf("nothing to do: give --bedgraph or --mask-file")
			}
			c, err := newConverter()
			if err != nil {
				return err
			}

			d, err := pipeline.ReadFile(inputPath)
			if err != nil {
				return err
			}
			// A diff has no contig column; Mask falls back to --chrom.
			if _, err := c.Mask(d, "", coverage); err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), outputPath, viper.GetString(keyFormat), d)
		},
	}

	f := cmd.Flags()
	f.StringVar(&inputPath, "diff", "", "Input diff file")
	f.StringVar(&coverage, "bedgraph", "", "bedGraph coverage summary for depth masking")
	f.StringVarP(&outputPath, "output", "o", "-", "Output file")

	return cmd
}
