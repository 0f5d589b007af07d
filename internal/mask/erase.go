package mask

import (
	"github.com/inodb/vibe-diff/internal/diff"
)

// EraseReference removes every position covered by the static mask from
// the records. Erased positions are assumed to match the reference and are
// not replaced. Records straddling an interval boundary are split and the
// surviving fragments keep their symbol.
//
// records must be sorted and non-overlapping, as produced by ApplyDepth or
// diff.Coalesce.
func EraseReference(records []diff.Record, static Set) ([]diff.Record, error) {
	if err := static.Validate(); err != nil {
		return nil, err
	}
	if err := diff.Validate(records); err != nil {
		return nil, err
	}

	acc := diff.NewAccumulator(len(records))
	i, j := 0, 0
	var cur diff.Record
	if len(records) > 0 {
		cur = records[0]
	}
	next := func() {
		i++
		if i < len(records) {
			cur = records[i]
		}
	}

	// Intervals left over once the records run out cannot produce output.
	for i < len(records) {
		if j == len(static) {
			if err := acc.Emit(cur); err != nil {
				return nil, err
			}
			next()
			continue
		}

		m := static[j]
		switch {
		case cur.End() <= m.Start:
			if err := acc.Emit(cur); err != nil {
				return nil, err
			}
			next()

		case m.End <= cur.Start:
			j++

		case cur.Start >= m.Start && cur.End() <= m.End:
			// Record entirely erased.
			next()

		default:
			if cur.Start < m.Start {
				head := diff.Record{Symbol: cur.Symbol, Start: cur.Start, Length: m.Start - cur.Start}
				if err := acc.Emit(head); err != nil {
					return nil, err
				}
			}
			if cur.End() <= m.End {
				next()
				continue
			}
			cur = diff.Record{Symbol: cur.Symbol, Start: m.End, Length: cur.End() - m.End}
			j++
		}
	}
	return acc.Records(), nil
}
