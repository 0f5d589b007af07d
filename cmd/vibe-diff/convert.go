package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-diff/internal/pipeline"
)

func newConvertCmd() *cobra.Command {
	var in pipeline.Input
	var outputPath string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a single-sample VCF into a masked diff",
		Long: `Encode the variant calls of a single-sample VCF as a diff, mask positions
whose depth in the bedGraph coverage summary is below --min-depth, and erase
positions covered by the static --mask-file.`,
		Example: `  vibe-diff convert --vcf SRR0001.vcf.gz --bedgraph SRR0001_merged.bed -o SRR0001.diff
  vibe-diff convert --vcf SRR0001.vcf.gz --mask-file mask.bed --chrom NC_000962.3
  vibe-diff convert --vcf SRR0001.vcf.gz -f arrow -o SRR0001.arrow`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.VCF == "" {
				return usageErrorf("--vcf is required")
			}
			if in.VCF == "-" && viper.GetString(keyReportDB) != "" {
				return usageErrorf("--%s needs a VCF file, not stdin", keyReportDB)
			}
			c, err := newConverter()
			if err != nil {
				return err
			}

			d, rep, err := c.Convert(in)
			if err != nil {
				return err
			}
			if err := writeOutput(cmd.OutOrStdout(), outputPath, viper.GetString(keyFormat), d); err != nil {
				return err
			}
			rep.Output = outputPath

			store, err := openReportStore()
			if err != nil || store == nil {
				return err
			}
			defer store.Close()
			return saveReports(store, []*pipeline.Report{rep})
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.VCF, "vcf", "", "Input single-sample VCF (plain or gzipped, '-' for stdin)")
	f.StringVar(&in.Coverage, "bedgraph", "", "bedGraph coverage summary for depth masking")
	f.StringVar(&in.Sample, "sample", "", "Sample name (default: from the VCF header)")
	f.StringVarP(&outputPath, "output", "o", "-", "Output file")

	return cmd
}
