// Package pipeline converts single-sample VCF files into masked diffs.
package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/inodb/vibe-diff/internal/bed"
	"github.com/inodb/vibe-diff/internal/diff"
	"github.com/inodb/vibe-diff/internal/mask"
	"github.com/inodb/vibe-diff/internal/output"
	"github.com/inodb/vibe-diff/internal/vcf"
)

// DefaultMinDepth is the coverage below which a position is masked.
const DefaultMinDepth = 10

// ErrMultipleContigs is returned when variants from more than one contig
// reach the encoder. The diff format has no contig column.
var ErrMultipleContigs = errors.New("variants span more than one contig")

// Options controls a conversion.
type Options struct {
	// MinDepth is the depth threshold; regions with lower depth are masked.
	MinDepth int
	// Chrom restricts VCF, coverage and mask input to one contig.
	Chrom string
	// Format is the output format, see output.FormatDiff and output.FormatArrow.
	Format string
	// ReferenceLength overrides the reference length used for the
	// low-depth fraction. Zero means the extent of the coverage summary.
	ReferenceLength int64
}

// DefaultOptions returns options with the standard depth threshold and the
// tab-delimited format.
func DefaultOptions() Options {
	return Options{MinDepth: DefaultMinDepth, Format: output.FormatDiff}
}

// Input names the files for one sample.
type Input struct {
	// Sample overrides the sample name from the VCF header.
	Sample   string
	VCF      string
	Coverage string // optional bedGraph
}

// Report summarizes one sample conversion.
type Report struct {
	Sample           string
	VCF              string
	Coverage         string
	Output           string
	Variants         int
	Records          int
	MaskedPositions  int64
	LowDepthFraction float64
	ReferenceLength  int64
	MinDepth         int
	Duration         time.Duration
}

// ErrContigMismatch is returned when the coverage summary or static mask
// names a different contig than the variants.
var ErrContigMismatch = errors.New("inputs name different contigs")

// StaticMask is a static mask together with the contig its BED file
// covers. Contig is empty for an empty mask.
type StaticMask struct {
	Contig string
	Set    mask.Set
}

// Converter turns variant calls into masked diffs. It is safe for
// concurrent use; the static mask is shared read-only.
type Converter struct {
	opts   Options
	static StaticMask
	logger *zap.Logger
}

// NewConverter creates a converter. static may be empty.
func NewConverter(opts Options, static StaticMask) *Converter {
	if opts.MinDepth == 0 {
		opts.MinDepth = DefaultMinDepth
	}
	return &Converter{
		opts:   opts,
		static: static,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for warning and info messages.
func (c *Converter) SetLogger(l *zap.Logger) {
	c.logger = l
}

// Options returns the converter options.
func (c *Converter) Options() Options {
	return c.opts
}

// LoadStatic reads a static mask BED file. An empty path gives an empty
// mask. Without chrom the file must hold a single contig.
func LoadStatic(path, chrom string) (StaticMask, error) {
	if path == "" {
		return StaticMask{}, nil
	}
	regions, err := bed.ReadRegionsFile(path, chrom)
	if err != nil {
		return StaticMask{}, fmt.Errorf("read mask file: %w", err)
	}
	set, err := mask.BuildStatic(regions)
	if err != nil {
		return StaticMask{}, fmt.Errorf("build static mask: %w", err)
	}
	sm := StaticMask{Set: set}
	if len(regions) > 0 {
		sm.Contig = regions[0].Chrom
	}
	return sm, nil
}

// Convert encodes a VCF file and applies the depth and static masks.
func (c *Converter) Convert(in Input) (*diff.Diff, *Report, error) {
	start := time.Now()

	p, err := vcf.NewParser(in.VCF)
	if err != nil {
		return nil, nil, err
	}
	defer p.Close()

	sample := in.Sample
	if sample == "" {
		sample = p.SampleName()
	}

	enc, err := EncodeVariants(p, c.opts.Chrom)
	if err != nil {
		return nil, nil, fmt.Errorf("encode %s: %w", in.VCF, err)
	}
	c.logger.Debug("encoded variants",
		zap.String("sample", sample),
		zap.String("contig", enc.Contig),
		zap.Int("variants", enc.Variants),
		zap.Int("records", len(enc.Records)))

	d := &diff.Diff{Sample: sample, Records: enc.Records}
	rep, err := c.Mask(d, enc.Contig, in.Coverage)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", in.VCF, err)
	}
	rep.VCF = in.VCF
	rep.Variants = enc.Variants
	rep.Duration = time.Since(start)
	return d, rep, nil
}

// Mask applies the depth mask built from coveragePath (if set) and the
// static mask to d in place. contig is the contig the diff was called on;
// when empty it falls back to the contig filter, then to the coverage
// summary. Coverage or a static mask on another contig fails with
// ErrContigMismatch. Masking an already masked diff with the same inputs
// leaves it unchanged.
func (c *Converter) Mask(d *diff.Diff, contig, coveragePath string) (*Report, error) {
	rep := &Report{Sample: d.Sample, Coverage: coveragePath, MinDepth: c.opts.MinDepth}
	records := d.Records
	if contig == "" {
		contig = c.opts.Chrom
	}

	var (
		cov   []bed.Coverage
		depth mask.Set
		err   error
	)
	if coveragePath != "" {
		cov, err = bed.ReadCoverageFile(coveragePath, c.opts.Chrom)
		if err != nil {
			return nil, fmt.Errorf("read coverage: %w", err)
		}
		if len(cov) > 0 {
			if err = checkContig(contig, cov[0].Chrom, coveragePath); err != nil {
				return nil, err
			}
			contig = cov[0].Chrom
		}
	}
	if err = checkContig(contig, c.static.Contig, "static mask"); err != nil {
		return nil, err
	}

	if coveragePath != "" {
		depth, err = mask.BuildDepth(cov, c.opts.MinDepth)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", coveragePath, err)
		}

		rep.ReferenceLength = c.opts.ReferenceLength
		if rep.ReferenceLength == 0 {
			rep.ReferenceLength = mask.ReferenceLength(cov)
		}
		rep.LowDepthFraction = mask.LowDepthFraction(depth, rep.ReferenceLength)
		c.logger.Info("built depth mask",
			zap.String("sample", d.Sample),
			zap.Int("intervals", len(depth)),
			zap.Int64("masked_positions", depth.Covered()),
			zap.Float64("low_depth_fraction", rep.LowDepthFraction))

		records, err = mask.ApplyDepth(records, depth)
		if err != nil {
			return nil, fmt.Errorf("apply depth mask: %w", err)
		}
	} else {
		records, err = diff.Coalesce(records)
		if err != nil {
			return nil, err
		}
	}

	if len(c.static.Set) > 0 {
		records, err = mask.EraseReference(records, c.static.Set)
		if err != nil {
			return nil, fmt.Errorf("apply static mask: %w", err)
		}
	}

	d.Records = records
	rep.Records = len(records)
	rep.MaskedPositions = d.Covered(diff.Masked)
	return rep, nil
}

// checkContig reports a mismatch between the diff contig and the contig of
// a mask input. An empty name on either side matches anything.
func checkContig(want, got, source string) error {
	if want == "" || got == "" || want == got {
		return nil
	}
	return fmt.Errorf("%w: %s is on %s, variants on %s", ErrContigMismatch, source, got, want)
}

// Encoding is the outcome of EncodeVariants.
type Encoding struct {
	// Contig is the contig of the variants read, empty when none were.
	Contig   string
	Variants int
	Records  []diff.Record
}

// EncodeVariants reads every variant from p, keeping only chrom when it is
// set, and returns the start-sorted records with the number of variants
// read. Positions must not decrease.
func EncodeVariants(p vcf.VariantParser, chrom string) (*Encoding, error) {
	var (
		records []diff.Record
		contig  string
		lastPos int64
		n       int
	)

	for {
		v, err := p.Next()
		if err != nil {
			return nil, err
		}
		if v == nil {
			break
		}
		if chrom != "" && v.Chrom != chrom {
			continue
		}

		if n == 0 {
			contig = v.Chrom
		} else if v.Chrom != contig {
			return nil, fmt.Errorf("%w: %s and %s (line %d)", ErrMultipleContigs, contig, v.Chrom, p.LineNumber())
		}
		if v.Pos < lastPos {
			return nil, fmt.Errorf("%w: line %d: position %d follows %d",
				diff.ErrInvariant, p.LineNumber(), v.Pos, lastPos)
		}
		lastPos = v.Pos
		n++

		recs, err := diff.Encode(v)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", p.LineNumber(), err)
		}
		records = append(records, recs...)
	}

	// Records of neighbouring variants may interleave, never reorder a
	// single variant's own output.
	sort.SliceStable(records, func(i, j int) bool { return records[i].Start < records[j].Start })
	return &Encoding{Contig: contig, Variants: n, Records: records}, nil
}
