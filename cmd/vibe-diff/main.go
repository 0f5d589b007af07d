// Package main provides the vibe-diff command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-diff/internal/pipeline"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Configuration keys shared by flags, environment and config file.
const (
	keyMinDepth   = "min-depth"
	keyMaskFile   = "mask-file"
	keyChrom      = "chrom"
	keyFormat     = "format"
	keyRefLength  = "reference-length"
	keyWorkers    = "workers"
	keyReportDB   = "report-db"
	keyVCFPattern = "vcf-pattern"
	keyBedPattern = "bed-pattern"
	keyVerbose    = "verbose"
)

const configName = ".vibe-diff"

var logger = zap.NewNop()

// usageError marks errors caused by invalid invocation.
type usageError struct{ error }

func usageErrorf(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)

	err := root.Execute()
	logger.Sync()
	if err == nil {
		return ExitSuccess
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(os.Stderr, "Run 'vibe-diff %s --help' for usage.\n", commandName(args))
		return ExitUsage
	}
	if errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Hint: Check that the file path is correct\n")
	}
	return ExitError
}

func commandName(args []string) string {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		return args[0]
	}
	return ""
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "vibe-diff",
		Short: "Convert single-sample VCF calls into masked reference diffs",
		Long: `vibe-diff encodes the variant calls of a single-sample VCF as a compact
reference-relative diff, masks low-depth regions from a bedGraph coverage
summary, and erases positions listed in a static mask BED file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(cfgFile); err != nil {
				return err
			}
			l, err := newLogger(viper.GetBool(keyVerbose))
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			logger = l
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default ~/.vibe-diff.yaml)")
	pf.Int(keyMinDepth, pipeline.DefaultMinDepth, "Mask positions with depth below this value")
	pf.String(keyMaskFile, "", "Static mask BED file; covered positions are erased from the diff")
	pf.String(keyChrom, "", "Only use records on this contig")
	pf.StringP(keyFormat, "f", "diff", "Output format: diff, arrow")
	pf.Int64(keyRefLength, 0, "Reference length for the low-depth fraction (default: coverage extent)")
	pf.String(keyReportDB, "", "DuckDB file to store per-sample reports in")
	pf.BoolP(keyVerbose, "v", false, "Verbose (development) logging")
	for _, key := range []string{keyMinDepth, keyMaskFile, keyChrom, keyFormat, keyRefLength, keyReportDB, keyVerbose} {
		viper.BindPFlag(key, pf.Lookup(key))
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	cmd.AddCommand(newConvertCmd())
	cmd.AddCommand(newBatchCmd())
	cmd.AddCommand(newRemaskCmd())
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// initConfig reads the config file and environment. A missing default
// config file is not an error.
func initConfig(cfgFile string) error {
	viper.SetDefault(keyWorkers, 0)
	viper.SetDefault(keyVCFPattern, pipeline.DefaultVCFPattern)
	viper.SetDefault(keyBedPattern, pipeline.DefaultBedPattern)

	viper.SetEnvPrefix("VIBE_DIFF")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
		return nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.SetConfigName(configName)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, configName+".yaml"), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vibe-diff version %s (%s) built %s\n", version, commit, date)
		},
	}
}
