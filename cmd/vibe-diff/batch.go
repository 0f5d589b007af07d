package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-diff/internal/duckdb"
	"github.com/inodb/vibe-diff/internal/pipeline"
)

func newBatchCmd() *cobra.Command {
	var (
		samplesPath string
		cfg         pipeline.BatchConfig
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Convert every sample in a sample list",
		Long: `Convert the VCF of every sample listed in --samples (one name per line) in
parallel. Input files are found in --vcf-dir and --bed-dir using the
vcf-pattern and bed-pattern settings, where {sample} stands for the sample
name. Samples whose diff already exists, or whose inputs are missing, are
skipped. A failed sample leaves no output behind and does not stop the
batch.`,
		Example: `  vibe-diff batch --samples samples.txt --vcf-dir vcf --bed-dir bed --out-dir diff
  vibe-diff batch --samples samples.txt --vcf-dir vcf --out-dir diff --mask-file mask.bed --workers 8
  vibe-diff batch --samples samples.txt --vcf-dir vcf --bed-dir bed --out-dir diff --report-db runs.duckdb`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if samplesPath == "" {
				return usageErrorf("--samples is required")
			}
			if cfg.VCFDir == "" || cfg.OutDir == "" {
				return usageErrorf("--vcf-dir and --out-dir are required")
			}

			samples, err := readSampleList(samplesPath)
			if err != nil {
				return err
			}
			cfg.Samples = samples
			cfg.Workers = viper.GetInt(keyWorkers)
			cfg.VCFPattern = viper.GetString(keyVCFPattern)
			cfg.BedPattern = viper.GetString(keyBedPattern)

			c, err := newConverter()
			if err != nil {
				return err
			}

			store, err := openReportStore()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
				cfg.Done = reportedDone(store)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var reports []*pipeline.Report
			sum, err := c.RunBatch(ctx, cfg, func(r pipeline.Result) error {
				if r.Report != nil {
					reports = append(reports, r.Report)
				}
				return nil
			})
			if saveErr := saveReports(store, reports); saveErr != nil && err == nil {
				err = saveErr
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Converted %d, skipped %d, failed %d of %d samples\n",
				sum.Converted, sum.Skipped, sum.Failed, len(samples))
			if err != nil {
				return err
			}
			if sum.Failed > 0 {
				return fmt.Errorf("%d of %d samples failed", sum.Failed, len(samples))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&samplesPath, "samples", "", "File listing one sample name per line")
	f.StringVar(&cfg.VCFDir, "vcf-dir", "", "Directory holding the sample VCF files")
	f.StringVar(&cfg.BedDir, "bed-dir", "", "Directory holding the bedGraph coverage files (optional)")
	f.StringVar(&cfg.OutDir, "out-dir", "", "Directory to write diffs to")
	f.BoolVar(&cfg.Force, "force", false, "Reconvert samples whose diff already exists")
	f.Int(keyWorkers, 0, "Number of parallel workers (default: number of CPUs)")
	f.String(keyVCFPattern, pipeline.DefaultVCFPattern, "VCF file name pattern")
	f.String(keyBedPattern, pipeline.DefaultBedPattern, "bedGraph file name pattern")
	for _, key := range []string{keyWorkers, keyVCFPattern, keyBedPattern} {
		viper.BindPFlag(key, f.Lookup(key))
	}

	return cmd
}

// reportedDone treats an existing diff as done only if the report database
// holds a report built from the current VCF.
func reportedDone(store *duckdb.Store) func(pipeline.Job) bool {
	return func(job pipeline.Job) bool {
		fp, err := duckdb.StatFile(job.Input.VCF)
		if err != nil {
			return false
		}
		done, err := store.Completed(job.Sample, fp)
		if err != nil {
			logger.Warn("report lookup failed", zap.String("sample", job.Sample), zap.Error(err))
			return false
		}
		return done
	}
}

// readSampleList reads sample names, one per line. Blank lines and lines
// starting with '#' are ignored.
func readSampleList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sample list: %w", err)
	}
	defer f.Close()

	var samples []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		samples = append(samples, strings.Fields(line)[0])
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read sample list: %w", err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("sample list %s is empty", path)
	}
	return samples, nil
}
