// Package output provides diff output formatters.
package output

import (
	"fmt"
	"io"

	"github.com/inodb/vibe-diff/internal/diff"
)

// Output formats accepted by NewWriter.
const (
	FormatDiff  = "diff"
	FormatArrow = "arrow"
)

// Writer is implemented by every diff formatter. WriteHeader must be called
// once before any Write. Flush must be called after the last record.
type Writer interface {
	WriteHeader(sample string) error
	Write(r diff.Record) error
	Flush() error
}

// NewWriter returns a writer for the named format.
func NewWriter(format string, w io.Writer) (Writer, error) {
	switch format {
	case FormatDiff, "":
		return NewDiffWriter(w), nil
	case FormatArrow:
		return NewArrowWriter(w, DefaultChunkSize), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want %s or %s)", format, FormatDiff, FormatArrow)
	}
}

// Extension returns the conventional file extension for a format.
func Extension(format string) string {
	if format == FormatArrow {
		return ".arrow"
	}
	return ".diff"
}

// WriteDiff writes a whole diff and flushes the writer.
func WriteDiff(w Writer, d *diff.Diff) error {
	if err := w.WriteHeader(d.Sample); err != nil {
		return err
	}
	for _, r := range d.Records {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return w.Flush()
}
