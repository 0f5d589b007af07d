// Package mask builds masking interval sets and sweeps diff records against
// them: depth masks rewrite covered positions to '-', static masks erase
// covered positions from the diff.
package mask

import (
	"errors"
	"fmt"
	"sort"

	"github.com/inodb/vibe-diff/internal/diff"
)

// ErrInvariant is returned when intervals or records break the sweep
// ordering contract.
var ErrInvariant = diff.ErrInvariant

// ErrNoCoverage reports coverage input that cannot yield a depth mask.
// It means the wrong reference or sample was supplied, which is different
// from a sample that has no low-depth sites.
var ErrNoCoverage = errors.New("no usable coverage information")

// Interval is a half-open [Start, End) span in 1-based coordinates.
type Interval struct {
	Start int64
	End   int64
}

// Len returns the number of positions in the interval.
func (i Interval) Len() int64 {
	return i.End - i.Start
}

func (i Interval) String() string {
	return fmt.Sprintf("[%d, %d)", i.Start, i.End)
}

// Set is a sorted list of intervals that neither overlap nor touch.
type Set []Interval

// Build coalesces an ascending sequence of intervals into a Set. Touching
// or overlapping inputs are merged.
func Build(in []Interval) (Set, error) {
	var out Set
	var prev Interval
	open := false

	for i, iv := range in {
		if iv.Start >= iv.End {
			return nil, fmt.Errorf("%w: interval %d %s is empty", ErrInvariant, i, iv)
		}
		switch {
		case !open:
			prev, open = iv, true
		case iv.Start < prev.Start:
			return nil, fmt.Errorf("%w: interval %d %s starts before %s", ErrInvariant, i, iv, prev)
		case iv.Start <= prev.End:
			prev.End = max(prev.End, iv.End)
		default:
			out = append(out, prev)
			prev = iv
		}
	}
	if open {
		out = append(out, prev)
	}
	return out, nil
}

// Validate checks the Set invariant. Sets produced by Build always pass.
func (s Set) Validate() error {
	for i, iv := range s {
		if iv.Start >= iv.End {
			return fmt.Errorf("%w: mask interval %d %s is empty", ErrInvariant, i, iv)
		}
		if i > 0 && s[i-1].End >= iv.Start {
			return fmt.Errorf("%w: mask interval %d %s is not disjoint from %s", ErrInvariant, i, iv, s[i-1])
		}
	}
	return nil
}

// Covered returns the total number of positions in the set.
func (s Set) Covered() int64 {
	var n int64
	for _, iv := range s {
		n += iv.Len()
	}
	return n
}

// Contains reports whether pos lies inside an interval of the set.
func (s Set) Contains(pos int64) bool {
	i := sort.Search(len(s), func(i int) bool { return s[i].End > pos })
	return i < len(s) && s[i].Start <= pos
}
