package diff

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Read parses a diff file: a ">sample" header line followed by
// "symbol\tposition\tlength" lines. A diff holds one sample; a second
// header is a parse error.
func Read(r io.Reader) (*Diff, error) {
	sc := bufio.NewScanner(r)
	lineNumber := 0
	var d *Diff

	for sc.Scan() {
		lineNumber++
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ">") {
			if d != nil {
				return nil, &ParseError{Line: lineNumber, Message: fmt.Sprintf("unexpected second sample header %q", line)}
			}
			d = &Diff{Sample: line[1:]}
			continue
		}
		if d == nil {
			return nil, &ParseError{Line: lineNumber, Message: "expected >sample header line"}
		}

		rec, err := parseRecord(line)
		if err != nil {
			return nil, &ParseError{Line: lineNumber, Message: err.Error()}
		}
		d.Records = append(d.Records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read diff: %w", err)
	}
	if d == nil {
		return nil, &ParseError{Line: lineNumber, Message: "no >sample header line found"}
	}
	return d, nil
}

func parseRecord(line string) (Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 3 {
		return Record{}, fmt.Errorf("expected 3 columns, found %d", len(fields))
	}
	if len(fields[0]) != 1 {
		return Record{}, fmt.Errorf("invalid symbol: %q", fields[0])
	}
	start, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || start < 1 {
		return Record{}, fmt.Errorf("invalid position: %s", fields[1])
	}
	length, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil || length < 1 {
		return Record{}, fmt.Errorf("invalid length: %s", fields[2])
	}
	return Record{Symbol: fields[0][0], Start: start, Length: length}, nil
}

// ParseError represents an error during diff parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("diff parse error at line %d: %s", e.Line, e.Message)
}
