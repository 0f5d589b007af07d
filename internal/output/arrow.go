package output

import (
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/inodb/vibe-diff/internal/diff"
)

// DefaultChunkSize is the number of records per Arrow record batch.
const DefaultChunkSize = 64 * 1024

// SampleMetadataKey is the schema metadata key holding the sample name.
const SampleMetadataKey = "sample"

// ArrowWriter writes diff records to an Arrow IPC file with columns
// symbol (utf8), start (int64) and length (int64). The sample name is stored
// in the schema metadata, so the file is not created until WriteHeader.
type ArrowWriter struct {
	out       io.Writer
	schema    *arrow.Schema
	writer    *ipc.FileWriter
	pool      *memory.GoAllocator
	symbols   *array.StringBuilder
	starts    *array.Int64Builder
	lengths   *array.Int64Builder
	chunkSize int
	rows      int
}

// NewArrowWriter creates a writer that emits a record batch every chunkSize
// records.
func NewArrowWriter(w io.Writer, chunkSize int) *ArrowWriter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &ArrowWriter{
		out:       w,
		pool:      memory.NewGoAllocator(),
		chunkSize: chunkSize,
	}
}

// DiffSchema returns the Arrow schema of a diff file for sample.
func DiffSchema(sample string) *arrow.Schema {
	md := arrow.NewMetadata([]string{SampleMetadataKey}, []string{sample})
	return arrow.NewSchema([]arrow.Field{
		{Name: "symbol", Type: arrow.BinaryTypes.String},
		{Name: "start", Type: arrow.PrimitiveTypes.Int64},
		{Name: "length", Type: arrow.PrimitiveTypes.Int64},
	}, &md)
}

// WriteHeader fixes the schema and opens the IPC stream.
func (aw *ArrowWriter) WriteHeader(sample string) error {
	if aw.writer != nil {
		return errors.New("arrow header already written")
	}
	aw.schema = DiffSchema(sample)
	writer, err := ipc.NewFileWriter(aw.out, ipc.WithSchema(aw.schema), ipc.WithAllocator(aw.pool))
	if err != nil {
		return err
	}
	aw.writer = writer
	aw.symbols = array.NewStringBuilder(aw.pool)
	aw.starts = array.NewInt64Builder(aw.pool)
	aw.lengths = array.NewInt64Builder(aw.pool)
	return nil
}

// Write buffers a record, writing a batch when the chunk is full.
func (aw *ArrowWriter) Write(r diff.Record) error {
	if aw.writer == nil {
		return errors.New("arrow header not written")
	}
	aw.symbols.Append(string(r.Symbol))
	aw.starts.Append(r.Start)
	aw.lengths.Append(r.Length)
	aw.rows++

	if aw.rows == aw.chunkSize {
		return aw.writeChunk()
	}
	return nil
}

func (aw *ArrowWriter) writeChunk() error {
	// NewArray resets each builder for the next chunk.
	cols := []arrow.Array{aw.symbols.NewArray(), aw.starts.NewArray(), aw.lengths.NewArray()}
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()

	record := array.NewRecord(aw.schema, cols, int64(aw.rows))
	defer record.Release()

	if err := aw.writer.Write(record); err != nil {
		return err
	}
	aw.rows = 0
	return nil
}

// Flush writes the remaining records and the file footer. The writer
// accepts no records afterwards.
func (aw *ArrowWriter) Flush() error {
	if aw.writer == nil {
		return errors.New("arrow header not written")
	}
	if aw.rows > 0 {
		if err := aw.writeChunk(); err != nil {
			return err
		}
	}
	err := aw.writer.Close()
	aw.symbols.Release()
	aw.starts.Release()
	aw.lengths.Release()
	aw.writer = nil
	return err
}

// ReadArrow reads a diff written by ArrowWriter.
func ReadArrow(r ipc.ReadAtSeeker) (*diff.Diff, error) {
	reader, err := ipc.NewFileReader(r)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	d := &diff.Diff{}
	md := reader.Schema().Metadata()
	if i := md.FindKey(SampleMetadataKey); i >= 0 {
		d.Sample = md.Values()[i]
	}

	for i := 0; i < reader.NumRecords(); i++ {
		record, err := reader.Record(i)
		if err != nil {
			return nil, err
		}
		if record.NumCols() != 3 {
			return nil, fmt.Errorf("arrow batch %d has %d columns, want 3", i, record.NumCols())
		}
		symbols, ok1 := record.Column(0).(*array.String)
		starts, ok2 := record.Column(1).(*array.Int64)
		lengths, ok3 := record.Column(2).(*array.Int64)
		if !ok1 || !ok2 || !ok3 {
			return nil, fmt.Errorf("arrow batch %d does not match the diff schema", i)
		}
		for row := 0; row < symbols.Len(); row++ {
			sym := symbols.Value(row)
			if len(sym) != 1 {
				return nil, fmt.Errorf("arrow batch %d row %d: invalid symbol %q", i, row, sym)
			}
			d.Records = append(d.Records, diff.Record{
				Symbol: sym[0],
				Start:  starts.Value(row),
				Length: lengths.Value(row),
			})
		}
	}
	return d, nil
}
