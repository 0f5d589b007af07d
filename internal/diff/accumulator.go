package diff

import "fmt"

// Accumulator collects records in position order and coalesces touching
// runs of the same symbol. The last emitted record stays open so that the
// next emission can extend it instead of appending.
//
// Emissions that overlap the open record are resolved position by position:
// agreeing symbols are kept, disagreeing ones become Masked.
type Accumulator struct {
	out  []Record
	last Record
	open bool
}

// NewAccumulator returns an accumulator with room for n records.
func NewAccumulator(n int) *Accumulator {
	return &Accumulator{out: make([]Record, 0, n)}
}

// Emit adds r. It fails if r has no span or starts before the open record.
func (a *Accumulator) Emit(r Record) error {
	if r.Length < 1 || r.Start < 1 {
		return fmt.Errorf("%w: emitted record %s has an empty span", ErrInvariant, r)
	}
	if !a.open {
		a.last, a.open = r, true
		return nil
	}

	last := a.last
	switch {
	case r.Start < last.Start:
		return fmt.Errorf("%w: record %s is not position-sorted after %s", ErrInvariant, r, last)

	case r.Start > last.End():
		a.out = append(a.out, last)
		a.last = r

	case r.Start == last.End():
		if r.Symbol == last.Symbol {
			a.last.Length += r.Length
			return nil
		}
		a.out = append(a.out, last)
		a.last = r

	default:
		return a.resolveOverlap(r)
	}
	return nil
}

// resolveOverlap handles r.Start in [last.Start, last.End()).
func (a *Accumulator) resolveOverlap(r Record) error {
	last := a.last
	if r.Symbol == last.Symbol {
		if r.End() > last.End() {
			a.last.Length = r.End() - last.Start
		}
		return nil
	}

	overlapEnd := min(r.End(), last.End())
	pieces := make([]Record, 0, 3)
	pieces = append(pieces, Record{Symbol: Masked, Start: r.Start, Length: overlapEnd - r.Start})
	switch {
	case last.End() > overlapEnd:
		pieces = append(pieces, Record{Symbol: last.Symbol, Start: overlapEnd, Length: last.End() - overlapEnd})
	case r.End() > overlapEnd:
		pieces = append(pieces, Record{Symbol: r.Symbol, Start: overlapEnd, Length: r.End() - overlapEnd})
	}

	if r.Start > last.Start {
		a.last.Length = r.Start - last.Start
	} else {
		a.open = false
		if n := len(a.out); n > 0 {
			// Reopen the previous record so a Masked head can coalesce with it.
			a.last, a.open = a.out[n-1], true
			a.out = a.out[:n-1]
		}
	}
	// Pieces are sorted and start at or after the open record's end.
	for _, p := range pieces {
		if err := a.Emit(p); err != nil {
			return fmt.Errorf("resolve overlap of %s with %s: %w", r, last, err)
		}
	}
	return nil
}

// Records flushes the open record and returns everything emitted so far.
func (a *Accumulator) Records() []Record {
	if a.open {
		a.out = append(a.out, a.last)
		a.open = false
	}
	return a.out
}

// Coalesce normalizes a start-sorted record sequence: touching same-symbol
// runs are merged and overlaps are resolved as in Accumulator.Emit. The
// result satisfies Validate.
func Coalesce(records []Record) ([]Record, error) {
	acc := NewAccumulator(len(records))
	for _, r := range records {
		if err := acc.Emit(r); err != nil {
			return nil, err
		}
	}
	return acc.Records(), nil
}
