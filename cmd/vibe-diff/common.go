package main

import (
	"fmt"
	"io"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-diff/internal/diff"
	"github.com/inodb/vibe-diff/internal/duckdb"
	"github.com/inodb/vibe-diff/internal/output"
	"github.com/inodb/vibe-diff/internal/pipeline"
)

// optionsFromConfig reads conversion options from flags, environment and
// config file.
func optionsFromConfig() (pipeline.Options, error) {
	opts := pipeline.Options{
		MinDepth:        viper.GetInt(keyMinDepth),
		Chrom:           viper.GetString(keyChrom),
		Format:          viper.GetString(keyFormat),
		ReferenceLength: viper.GetInt64(keyRefLength),
	}
	if opts.MinDepth <= 0 {
		return opts, usageErrorf("--%s must be positive, got %d", keyMinDepth, opts.MinDepth)
	}
	switch opts.Format {
	case output.FormatDiff, output.FormatArrow:
	default:
		return opts, usageErrorf("unknown output format %q (want %s or %s)", opts.Format, output.FormatDiff, output.FormatArrow)
	}
	if opts.ReferenceLength < 0 {
		return opts, usageErrorf("--%s must not be negative", keyRefLength)
	}
	return opts, nil
}

// newConverter builds a converter with the configured static mask.
func newConverter() (*pipeline.Converter, error) {
	opts, err := optionsFromConfig()
	if err != nil {
		return nil, err
	}

	maskFile := viper.GetString(keyMaskFile)
	static, err := pipeline.LoadStatic(maskFile, opts.Chrom)
	if err != nil {
		return nil, err
	}
	if maskFile != "" {
		logger.Info("loaded static mask",
			zap.String("path", maskFile),
			zap.String("contig", static.Contig),
			zap.Int("intervals", len(static.Set)),
			zap.Int64("positions", static.Set.Covered()))
	}

	c := pipeline.NewConverter(opts, static)
	c.SetLogger(logger)
	return c, nil
}

// writeOutput writes d to path, or to stdout when path is "-" or empty.
func writeOutput(stdout io.Writer, path, format string, d *diff.Diff) error {
	if path == "" || path == "-" {
		w, err := output.NewWriter(format, stdout)
		if err != nil {
			return err
		}
		return output.WriteDiff(w, d)
	}
	return pipeline.WriteFile(path, format, d)
}

// openReportStore opens the configured report database. It returns nil if
// none is configured.
func openReportStore() (*duckdb.Store, error) {
	path := viper.GetString(keyReportDB)
	if path == "" {
		return nil, nil
	}
	store, err := duckdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report db: %w", err)
	}
	return store, nil
}

// saveReports stores reports in store. A nil store is a no-op.
func saveReports(store *duckdb.Store, reports []*pipeline.Report) error {
	if store == nil || len(reports) == 0 {
		return nil
	}

	rows := make([]duckdb.SampleReport, 0, len(reports))
	for _, rep := range reports {
		r, err := duckdb.NewSampleReport(rep)
		if err != nil {
			return err
		}
		rows = append(rows, r)
	}

	if err := store.WriteReports(rows); err != nil {
		return fmt.Errorf("write reports: %w", err)
	}
	logger.Info("saved reports", zap.String("path", store.Path()), zap.Int("samples", len(rows)))
	return nil
}
