// Package vcf provides single-sample VCF file parsing functionality.
package vcf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Parser reads variants from a single-sample VCF file.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	header     []string
	sampleName string // sample name from #CHROM header line
}

// NewParser creates a new VCF parser for the given file.
// Supports both plain VCF and gzipped VCF (.vcf.gz) files.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	p := &Parser{file: file}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	_, err = io.ReadFull(file, buf)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("read vcf header: %w", err)
	}

	// Seek back to beginning
	_, err = file.Seek(0, io.SeekStart)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("seek vcf file: %w", err)
	}

	// Check for gzip magic number (0x1f, 0x8b). bgzip output is a valid
	// multi-member gzip stream.
	if buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = bufio.NewReader(file)
	}

	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
func NewParserFromReader(r io.Reader) (*Parser, error) {
	p := &Parser{
		reader: bufio.NewReader(r),
	}

	if err := p.parseHeader(); err != nil {
		return nil, err
	}

	return p, nil
}

// parseHeader reads and stores VCF header lines.
func (p *Parser) parseHeader() error {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("read header: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")

		if strings.HasPrefix(line, "##") {
			p.header = append(p.header, line)
			continue
		}

		if strings.HasPrefix(line, "#CHROM") {
			p.header = append(p.header, line)
			fields := strings.Split(line, "\t")
			switch {
			case len(fields) < 10:
				return &ParseError{
					Line:    p.lineNumber,
					Message: "no sample column in #CHROM header line",
				}
			case len(fields) > 10:
				return &ParseError{
					Line:    p.lineNumber,
					Message: fmt.Sprintf("expected a single-sample VCF, found %d samples", len(fields)-9),
				}
			}
			p.sampleName = fields[9]
			return nil
		}

		// Non-header line encountered without #CHROM
		return &ParseError{
			Line:    p.lineNumber,
			Message: "expected #CHROM header line",
		}
	}

	return &ParseError{
		Line:    p.lineNumber,
		Message: "no #CHROM header line found",
	}
}

// Next reads the next variant from the VCF file.
// Returns nil, nil when there are no more variants.
func (p *Parser) Next() (*Variant, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				return nil, fmt.Errorf("read variant line: %w", err)
			}
			if line == "" {
				return nil, nil
			}
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue // Skip empty lines
		}

		return p.parseLine(line)
	}
}

// parseLine parses a single VCF data line into a Variant.
func (p *Parser) parseLine(line string) (*Variant, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 10 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected 10 columns, found %d", len(fields)),
		}
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || pos < 1 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid position: %s", fields[1]),
		}
	}

	if fields[3] == "" || fields[3] == "." {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: "missing reference allele",
		}
	}

	var alts []string
	if fields[4] != "." && fields[4] != "" {
		alts = strings.Split(fields[4], ",")
	}

	gt, err := sampleGenotype(fields[8], fields[9])
	if err != nil {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: err.Error(),
		}
	}

	return &Variant{
		Chrom:    fields[0],
		Pos:      pos,
		ID:       fields[2],
		Ref:      fields[3],
		Alts:     alts,
		Genotype: gt,
	}, nil
}

// sampleGenotype extracts and parses the GT entry of a sample column.
// Trailing FORMAT fields may be dropped from the sample column, in which
// case GT is missing.
func sampleGenotype(format, sample string) (Genotype, error) {
	gtIdx := -1
	for i, key := range strings.Split(format, ":") {
		if key == "GT" {
			gtIdx = i
			break
		}
	}
	if gtIdx < 0 {
		return Genotype{}, fmt.Errorf("FORMAT %q has no GT field", format)
	}

	values := strings.Split(sample, ":")
	if gtIdx >= len(values) {
		return ParseGenotype(".")
	}
	return ParseGenotype(values[gtIdx])
}

// Header returns the VCF header lines.
func (p *Parser) Header() []string {
	return p.header
}

// SampleName returns the sample name from the #CHROM header line.
func (p *Parser) SampleName() string {
	return p.sampleName
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// ParseError represents an error during VCF parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}
