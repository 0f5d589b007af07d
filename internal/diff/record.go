// Package diff implements the reference-relative diff encoding: runs of
// (symbol, start, length) listing only the positions where a sample differs
// from the reference genome.
package diff

import (
	"errors"
	"fmt"
)

// Masked is the symbol for masked, indeterminate or deleted positions.
const Masked byte = '-'

// ErrInvariant reports a broken ordering or span contract on records or
// intervals handed to a sweep. It signals an upstream bug, never bad luck.
var ErrInvariant = errors.New("sweep invariant violation")

// Record covers reference positions [Start, Start+Length) with Symbol.
// Start is 1-based.
type Record struct {
	Symbol byte
	Start  int64
	Length int64
}

// End returns the exclusive end of the record.
func (r Record) End() int64 {
	return r.Start + r.Length
}

// IsMasked returns true for '-' records.
func (r Record) IsMasked() bool {
	return r.Symbol == Masked
}

func (r Record) String() string {
	return fmt.Sprintf("%c\t%d\t%d", r.Symbol, r.Start, r.Length)
}

// Diff is a sample's header plus its position records.
type Diff struct {
	Sample  string
	Records []Record
}

// Covered returns the number of positions covered by records with the given
// symbol.
func (d *Diff) Covered(symbol byte) int64 {
	var n int64
	for _, r := range d.Records {
		if r.Symbol == symbol {
			n += r.Length
		}
	}
	return n
}

// Validate checks that records are position-sorted, positive-length and
// pairwise non-overlapping.
func Validate(records []Record) error {
	for i, r := range records {
		if r.Start < 1 || r.Length < 1 {
			return fmt.Errorf("%w: record %d (%s) has an empty or negative span", ErrInvariant, i, r)
		}
		if i > 0 && records[i-1].End() > r.Start {
			return fmt.Errorf("%w: record %d (%s) overlaps or precedes record %d (%s)",
				ErrInvariant, i, r, i-1, records[i-1])
		}
	}
	return nil
}
