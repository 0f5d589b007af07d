package mask

import (
	"github.com/inodb/vibe-diff/internal/diff"
)

// ApplyDepth masks diff records with a depth mask. Every position covered
// by the mask comes out as '-', every other position keeps its symbol, and
// the output covers exactly the union of the records and the mask.
//
// Records are normalized with diff.Coalesce first, so they need only be
// sorted by start. A record straddling a mask boundary is split: the part
// outside keeps its symbol and the part inside is masked. Touching runs of
// the same symbol are coalesced on output.
func ApplyDepth(records []diff.Record, depth Set) ([]diff.Record, error) {
	if err := depth.Validate(); err != nil {
		return nil, err
	}
	recs, err := diff.Coalesce(records)
	if err != nil {
		return nil, err
	}

	acc := diff.NewAccumulator(len(recs) + len(depth))
	emitMask := func(m Interval) error {
		return acc.Emit(diff.Record{Symbol: diff.Masked, Start: m.Start, Length: m.Len()})
	}

	i, j := 0, 0
	var cur diff.Record
	if len(recs) > 0 {
		cur = recs[0]
	}
	next := func() {
		i++
		if i < len(recs) {
			cur = recs[i]
		}
	}

	for i < len(recs) && j < len(depth) {
		m := depth[j]
		switch {
		case cur.End() <= m.Start:
			// Record entirely before the interval.
			if err := acc.Emit(cur); err != nil {
				return nil, err
			}
			next()

		case m.End <= cur.Start:
			// Interval entirely before the record.
			if err := emitMask(m); err != nil {
				return nil, err
			}
			j++

		case cur.Start >= m.Start && cur.End() <= m.End:
			// Record inside the interval; the interval is emitted once it ends.
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
			// Record runs past the interval: close the interval and keep
			// sweeping with the tail.
			if err := emitMask(m); err != nil {
				return nil, err
			}
			cur = diff.Record{Symbol: cur.Symbol, Start: m.End, Length: cur.End() - m.End}
			j++
		}
	}

	for ; i < len(recs); next() {
		if err := acc.Emit(cur); err != nil {
			return nil, err
		}
	}
	for ; j < len(depth); j++ {
		if err := emitMask(depth[j]); err != nil {
			return nil, err
		}
	}
	return acc.Records(), nil
}
