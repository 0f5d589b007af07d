// Package bed reads BED region lists and bedGraph coverage summaries.
// Coordinates are kept exactly as written: 0-based, half-open.
package bed

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// ErrMultipleContigs is returned when a file without a contig filter holds
// lines from more than one contig.
var ErrMultipleContigs = errors.New("bed file spans more than one contig")

// Region is a BED interval [Start, End) in 0-based coordinates.
type Region struct {
	Chrom string
	Start int64
	End   int64
}

// Coverage is one bedGraph line: every position of the region has Depth reads.
type Coverage struct {
	Region
	Depth int
}

// Reader reads BED-like lines from a file.
type Reader struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	chrom      string
	contig     string // contig of the first data line
}

// NewReader opens a plain or gzipped BED/bedGraph file.
func NewReader(path string) (*Reader, error) {
	if path == "-" {
		return NewReaderFromReader(os.Stdin), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bed file: %w", err)
	}

	r := &Reader{file: file}

	buf := make([]byte, 2)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		file.Close()
		return nil, fmt.Errorf("read bed file: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek bed file: %w", err)
	}

	if n == 2 && buf[0] == 0x1f && buf[1] == 0x8b {
		r.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r.reader = bufio.NewReader(r.gzipReader)
	} else {
		r.reader = bufio.NewReader(file)
	}
	return r, nil
}

// NewReaderFromReader creates a reader from an io.Reader.
func NewReaderFromReader(rd io.Reader) *Reader {
	return &Reader{reader: bufio.NewReader(rd)}
}

// SetChrom restricts the reader to lines of a single contig. Without a
// filter every line must be on the same contig; a second contig fails with
// ErrMultipleContigs.
func (r *Reader) SetChrom(chrom string) {
	r.chrom = chrom
}

// fields returns the whitespace-separated columns of the next data line, or
// nil at EOF. Comment, track and browser lines are skipped.
func (r *Reader) fields() ([]string, error) {
	for {
		line, err := r.reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				return nil, fmt.Errorf("read bed line: %w", err)
			}
			if line == "" {
				return nil, nil
			}
		}
		r.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 0 || (r.chrom != "" && fields[0] != r.chrom) {
			continue
		}
		switch {
		case r.contig == "":
			r.contig = fields[0]
		case fields[0] != r.contig:
			return nil, fmt.Errorf("%w: %s at line %d after %s (select one with a chromosome filter)",
				ErrMultipleContigs, fields[0], r.lineNumber, r.contig)
		}
		return fields, nil
	}
}

func (r *Reader) parseRegion(fields []string) (Region, error) {
	if len(fields) < 3 {
		return Region{}, &ParseError{
			Line:    r.lineNumber,
			Message: fmt.Sprintf("expected at least 3 columns, found %d", len(fields)),
		}
	}
	start, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || start < 0 {
		return Region{}, &ParseError{Line: r.lineNumber, Message: fmt.Sprintf("invalid start: %s", fields[1])}
	}
	end, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil || end < start {
		return Region{}, &ParseError{Line: r.lineNumber, Message: fmt.Sprintf("invalid end: %s", fields[2])}
	}
	return Region{Chrom: fields[0], Start: start, End: end}, nil
}

// NextRegion reads the next BED region. Returns nil, nil at EOF.
func (r *Reader) NextRegion() (*Region, error) {
	fields, err := r.fields()
	if err != nil || fields == nil {
		return nil, err
	}
	reg, err := r.parseRegion(fields)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// NextCoverage reads the next bedGraph line. Returns nil, nil at EOF.
func (r *Reader) NextCoverage() (*Coverage, error) {
	fields, err := r.fields()
	if err != nil || fields == nil {
		return nil, err
	}
	reg, err := r.parseRegion(fields)
	if err != nil {
		return nil, err
	}
	if len(fields) < 4 {
		return nil, &ParseError{Line: r.lineNumber, Message: "missing depth column"}
	}
	depth, err := strconv.ParseFloat(fields[3], 64)
	if err != nil || depth < 0 {
		return nil, &ParseError{Line: r.lineNumber, Message: fmt.Sprintf("invalid depth: %s", fields[3])}
	}
	return &Coverage{Region: reg, Depth: int(depth)}, nil
}

// ReadRegions reads all remaining BED regions.
func (r *Reader) ReadRegions() ([]Region, error) {
	var out []Region
	for {
		reg, err := r.NextRegion()
		if err != nil {
			return nil, err
		}
		if reg == nil {
			return out, nil
		}
		out = append(out, *reg)
	}
}

// ReadCoverage reads all remaining bedGraph lines.
func (r *Reader) ReadCoverage() ([]Coverage, error) {
	var out []Coverage
	for {
		c, err := r.NextCoverage()
		if err != nil {
			return nil, err
		}
		if c == nil {
			return out, nil
		}
		out = append(out, *c)
	}
}

// Contig returns the contig of the lines read so far, empty before the
// first data line.
func (r *Reader) Contig() string {
	return r.contig
}

// LineNumber returns the current line number being processed.
func (r *Reader) LineNumber() int {
	return r.lineNumber
}

// Close closes the reader and underlying file.
func (r *Reader) Close() error {
	if r.gzipReader != nil {
		r.gzipReader.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ParseError represents an error during BED parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bed parse error at line %d: %s", e.Line, e.Message)
}

// ReadRegionsFile reads every region of a BED file.
func ReadRegionsFile(path, chrom string) ([]Region, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	r.SetChrom(chrom)
	return r.ReadRegions()
}

// ReadCoverageFile reads every line of a bedGraph file.
func ReadCoverageFile(path, chrom string) ([]Coverage, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	r.SetChrom(chrom)
	return r.ReadCoverage()
}
