package output

import (
	"bufio"
	"io"
	"strconv"

	"github.com/inodb/vibe-diff/internal/diff"
)

// DiffWriter writes the tab-delimited diff format: a ">sample" header line
// followed by one "symbol<TAB>start<TAB>length" line per record.
type DiffWriter struct {
	w   *bufio.Writer
	buf []byte
}

// NewDiffWriter creates a new diff writer.
func NewDiffWriter(w io.Writer) *DiffWriter {
	return &DiffWriter{
		w:   bufio.NewWriter(w),
		buf: make([]byte, 0, 32),
	}
}

// WriteHeader writes the sample header line.
func (dw *DiffWriter) WriteHeader(sample string) error {
	_, err := dw.w.WriteString(">" + sample + "\n")
	return err
}

// Write writes a single record.
func (dw *DiffWriter) Write(r diff.Record) error {
	b := dw.buf[:0]
	b = append(b, r.Symbol, '\t')
	b = strconv.AppendInt(b, r.Start, 10)
	b = append(b, '\t')
	b = strconv.AppendInt(b, r.Length, 10)
	b = append(b, '\n')
	dw.buf = b
	_, err := dw.w.Write(b)
	return err
}

// Flush flushes any buffered data.
func (dw *DiffWriter) Flush() error {
	return dw.w.Flush()
}
