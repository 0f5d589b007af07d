package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/inodb/vibe-diff/internal/output"
)

// SamplePlaceholder is replaced by the sample name in file patterns.
const SamplePlaceholder = "{sample}"

// Default input file patterns.
const (
	DefaultVCFPattern = "{sample}.vcf.gz"
	DefaultBedPattern = "{sample}_merged.bed"
)

// BatchConfig describes a batch of samples.
type BatchConfig struct {
	Samples    []string
	VCFDir     string
	VCFPattern string
	// BedDir holds per-sample bedGraph files. Empty disables depth masking.
	BedDir     string
	BedPattern string
	OutDir     string
	Workers    int
	// Force reconverts samples whose output already exists.
	Force bool
	// Done, if set, is consulted for samples whose output exists; returning
	// false forces reconversion (e.g. the recorded inputs changed).
	Done func(Job) bool
}

// Job is one planned sample conversion.
type Job struct {
	Seq    int
	Sample string
	Input  Input
	Output string
	// Skip is the reason the job will not run, empty if it will.
	Skip string
}

// Result holds the outcome of a job.
type Result struct {
	Seq    int
	Job    Job
	Report *Report
	Err    error
}

// Skipped returns true if the job was not run.
func (r Result) Skipped() bool {
	return r.Job.Skip != ""
}

// Summary counts batch outcomes.
type Summary struct {
	Converted int
	Skipped   int
	Failed    int
}

func expand(pattern, sample string) string {
	return strings.ReplaceAll(pattern, SamplePlaceholder, sample)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Plan resolves the file names of every sample and decides which samples
// are skipped.
func (c *Converter) Plan(cfg BatchConfig) []Job {
	vcfPattern := cfg.VCFPattern
	if vcfPattern == "" {
		vcfPattern = DefaultVCFPattern
	}
	bedPattern := cfg.BedPattern
	if bedPattern == "" {
		bedPattern = DefaultBedPattern
	}
	ext := output.Extension(c.opts.Format)

	jobs := make([]Job, 0, len(cfg.Samples))
	for i, sample := range cfg.Samples {
		job := Job{
			Seq:    i,
			Sample: sample,
			Input: Input{
				Sample: sample,
				VCF:    filepath.Join(cfg.VCFDir, expand(vcfPattern, sample)),
			},
			Output: filepath.Join(cfg.OutDir, sample+ext),
		}
		if cfg.BedDir != "" {
			job.Input.Coverage = filepath.Join(cfg.BedDir, expand(bedPattern, sample))
		}

		switch {
		case !cfg.Force && exists(job.Output) && (cfg.Done == nil || cfg.Done(job)):
			job.Skip = "output exists"
		case !exists(job.Input.VCF):
			job.Skip = "vcf not found"
		case job.Input.Coverage != "" && !exists(job.Input.Coverage):
			job.Skip = "coverage not found"
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// ParallelConvert runs jobs using a pool of workers. Skipped jobs are passed
// through untouched. Results are sent in arrival order; use OrderedCollect
// to consume them in sequence-number order. If workers is 0,
// runtime.NumCPU() is used.
func (c *Converter) ParallelConvert(jobs <-chan Job, workers int) <-chan Result {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan Result, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for job := range jobs {
				results <- c.run(job)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

func (c *Converter) run(job Job) Result {
	res := Result{Seq: job.Seq, Job: job}
	if job.Skip != "" {
		c.logger.Info("skipping sample", zap.String("sample", job.Sample), zap.String("reason", job.Skip))
		return res
	}

	d, rep, err := c.Convert(job.Input)
	if err == nil {
		err = WriteFile(job.Output, c.opts.Format, d)
	}
	if err != nil {
		c.logger.Warn("conversion failed", zap.String("sample", job.Sample), zap.Error(err))
		res.Err = err
		return res
	}

	rep.Output = job.Output
	res.Report = rep
	c.logger.Info("finished",
		zap.String("sample", job.Sample),
		zap.Int("records", rep.Records),
		zap.Int64("masked_positions", rep.MaskedPositions),
		zap.Duration("elapsed", rep.Duration))
	return res
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan Result, fn func(Result) error) error {
	pending := make(map[int]Result)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}

// RunBatch plans and converts every sample in cfg, calling fn (which may be
// nil) for each result in sample-list order. A failed sample does not stop
// the batch; it is counted in the summary. Cancelling ctx stops dispatching
// new samples and returns ctx.Err().
func (c *Converter) RunBatch(ctx context.Context, cfg BatchConfig, fn func(Result) error) (Summary, error) {
	jobs := c.Plan(cfg)

	items := make(chan Job)
	go func() {
		defer close(items)
		for _, job := range jobs {
			select {
			case items <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	var sum Summary
	err := OrderedCollect(c.ParallelConvert(items, cfg.Workers), func(r Result) error {
		switch {
		case r.Skipped():
			sum.Skipped++
		case r.Err != nil:
			sum.Failed++
		default:
			sum.Converted++
		}
		if fn != nil {
			return fn(r)
		}
		return nil
	})
	if err != nil {
		return sum, err
	}
	return sum, ctx.Err()
}
