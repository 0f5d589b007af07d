package mask

import (
	"fmt"
	"sort"

	"github.com/inodb/vibe-diff/internal/bed"
)

// shift converts a 0-based half-open BED region to the 1-based half-open
// convention of variant positions. The length is unchanged.
func shift(r bed.Region) Interval {
	return Interval{Start: r.Start + 1, End: r.End + 1}
}

// BuildDepth builds the depth mask: every bedGraph region with depth below
// minDepth, shifted to 1-based coordinates and coalesced.
//
// Coverage with no entries at all, or none below the threshold, fails with
// ErrNoCoverage.
func BuildDepth(cov []bed.Coverage, minDepth int) (Set, error) {
	if minDepth <= 0 {
		return nil, fmt.Errorf("minimum depth must be positive, got %d", minDepth)
	}
	if len(cov) == 0 {
		return nil, fmt.Errorf("%w: coverage summary is empty", ErrNoCoverage)
	}

	low := make([]Interval, 0, len(cov)/4)
	for _, c := range cov {
		if c.End == c.Start {
			continue
		}
		if c.Depth < minDepth {
			low = append(low, shift(c.Region))
		}
	}
	if len(low) == 0 {
		return nil, fmt.Errorf("%w: no region below depth %d (coverage does not match the reference?)",
			ErrNoCoverage, minDepth)
	}
	return Build(low)
}

// BuildStatic builds the static mask from a BED region list. The list is
// sorted first, so it may be given in any order. An empty list gives an
// empty set.
func BuildStatic(regions []bed.Region) (Set, error) {
	in := make([]Interval, 0, len(regions))
	for _, r := range regions {
		if r.End == r.Start {
			continue
		}
		in = append(in, shift(r))
	}
	sort.SliceStable(in, func(i, j int) bool { return in[i].Start < in[j].Start })
	return Build(in)
}

// ReferenceLength returns the extent of a coverage summary, i.e. the largest
// end coordinate. A genome-wide bedGraph covers the whole reference.
func ReferenceLength(cov []bed.Coverage) int64 {
	var n int64
	for _, c := range cov {
		n = max(n, c.End)
	}
	return n
}

// LowDepthFraction returns the fraction of a reference of length refLen
// covered by the depth mask.
func LowDepthFraction(depth Set, refLen int64) float64 {
	if refLen <= 0 {
		return 0
	}
	return float64(depth.Covered()) / float64(refLen)
}
