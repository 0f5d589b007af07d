package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBatch(t *testing.T) BatchConfig {
	t.Helper()
	root := t.TempDir()
	cfg := BatchConfig{
		Samples:    []string{"A", "B", "C", "D"},
		VCFDir:     filepath.Join(root, "vcf"),
		VCFPattern: "{sample}.vcf",
		BedDir:     filepath.Join(root, "bed"),
		OutDir:     filepath.Join(root, "diff"),
		Workers:    2,
	}
	for _, dir := range []string{cfg.VCFDir, cfg.BedDir, cfg.OutDir} {
		require.NoError(t, os.MkdirAll(dir, 0755))
	}

	// A converts, B has no VCF, C is already done, D is malformed.
	for _, s := range []string{"A", "C"} {
		writeFile(t, cfg.VCFDir, s+".vcf", sampleVCF)
	}
	writeFile(t, cfg.VCFDir, "D.vcf", vcfHeader+"NC_000962.3\tnot-a-position\t.\tA\tG\t.\t.\t.\tGT\t1/1\n")
	for _, s := range []string{"A", "B", "C", "D"} {
		writeFile(t, cfg.BedDir, s+"_merged.bed", sampleCoverage)
	}
	writeFile(t, cfg.OutDir, "C.diff", ">C\n")
	return cfg
}

func TestRunBatch(t *testing.T) {
	cfg := setupBatch(t)
	c := NewConverter(DefaultOptions(), StaticMask{})

	var order []string
	sum, err := c.RunBatch(context.Background(), cfg, func(r Result) error {
		order = append(order, r.Job.Sample)
		switch r.Job.Sample {
		case "A":
			require.NoError(t, r.Err)
			require.NotNil(t, r.Report)
			assert.Equal(t, filepath.Join(cfg.OutDir, "A.diff"), r.Report.Output)
		case "B":
			assert.Equal(t, "vcf not found", r.Job.Skip)
		case "C":
			assert.Equal(t, "output exists", r.Job.Skip)
		case "D":
			assert.Error(t, r.Err)
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C", "D"}, order)
	assert.Equal(t, Summary{Converted: 1, Skipped: 2, Failed: 1}, sum)

	got := readString(t, filepath.Join(cfg.OutDir, "A.diff"))
	assert.Equal(t, ">A\nG\t100\t1\n-\t150\t11\nY\t200\t1\n-\t301\t3\n-\t400\t3\nC\t500\t1\n", got)
	assert.Equal(t, ">C\n", readString(t, filepath.Join(cfg.OutDir, "C.diff")), "existing output untouched")
	assert.NoFileExists(t, filepath.Join(cfg.OutDir, "D.diff"))
	assert.NoFileExists(t, filepath.Join(cfg.OutDir, "D.diff.tmp"))
}

func TestRunBatch_DoneHook(t *testing.T) {
	cfg := setupBatch(t)
	cfg.Samples = []string{"C"}
	cfg.Done = func(Job) bool { return false }

	sum, err := NewConverter(DefaultOptions(), StaticMask{}).RunBatch(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, Summary{Converted: 1}, sum)
	assert.Contains(t, readString(t, filepath.Join(cfg.OutDir, "C.diff")), "G\t100\t1\n")
}

func TestRunBatch_Force(t *testing.T) {
	cfg := setupBatch(t)
	cfg.Samples = []string{"C"}
	cfg.Force = true

	sum, err := NewConverter(DefaultOptions(), StaticMask{}).RunBatch(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Converted)
}

func TestPlan(t *testing.T) {
	cfg := setupBatch(t)
	cfg.Samples = []string{"A", "E"}
	require.NoError(t, os.WriteFile(filepath.Join(cfg.VCFDir, "E.vcf"), []byte(sampleVCF), 0644))

	opts := DefaultOptions()
	opts.Format = "arrow"
	jobs := NewConverter(opts, StaticMask{}).Plan(cfg)
	require.Len(t, jobs, 2)

	assert.Equal(t, filepath.Join(cfg.VCFDir, "A.vcf"), jobs[0].Input.VCF)
	assert.Equal(t, filepath.Join(cfg.BedDir, "A_merged.bed"), jobs[0].Input.Coverage)
	assert.Equal(t, filepath.Join(cfg.OutDir, "A.arrow"), jobs[0].Output)
	assert.Empty(t, jobs[0].Skip)

	assert.Equal(t, 1, jobs[1].Seq)
	assert.Equal(t, "coverage not found", jobs[1].Skip)

	cfg.BedDir = ""
	jobs = NewConverter(opts, StaticMask{}).Plan(cfg)
	assert.Empty(t, jobs[1].Input.Coverage)
	assert.Empty(t, jobs[1].Skip)
}

func TestRunBatch_Cancelled(t *testing.T) {
	cfg := setupBatch(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewConverter(DefaultOptions(), StaticMask{}).RunBatch(ctx, cfg, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func makeJobs(n int) <-chan Job {
	ch := make(chan Job, n)
	for i := range n {
		ch <- Job{Seq: i, Sample: fmt.Sprintf("S%d", i), Skip: "test"}
	}
	close(ch)
	return ch
}

func TestParallelConvert_OrderPreservation(t *testing.T) {
	c := NewConverter(DefaultOptions(), StaticMask{})
	results := c.ParallelConvert(makeJobs(200), 8)

	var collected []int
	err := OrderedCollect(results, func(r Result) error {
		assert.True(t, r.Skipped())
		collected = append(collected, r.Seq)
		return nil
	})
	require.NoError(t, err)

	assert.Len(t, collected, 200)
	for i, seq := range collected {
		assert.Equal(t, i, seq, "result %d out of order", i)
	}
}

func TestOrderedCollect_EarlyError(t *testing.T) {
	c := NewConverter(DefaultOptions(), StaticMask{})
	results := c.ParallelConvert(makeJobs(100), 4)

	count := 0
	err := OrderedCollect(results, func(r Result) error {
		count++
		if count == 5 {
			return fmt.Errorf("stop at 5")
		}
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 5, count)
}
