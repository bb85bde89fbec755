package split

import (
	"fmt"
	"math"
)

// Segment is one planned slice of the source, with a 1-based index.
type Segment struct {
	Index int
	Start float64 // Seconds.
	End   float64 // Seconds.
}

// Duration returns the length of the segment in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// String returns a human-readable representation for logging.
func (s Segment) String() string {
	return fmt.Sprintf("segment %d: %.2fs-%.2fs", s.Index, s.Start, s.End)
}

// MaxSegmentDuration returns how many seconds fit into sizeBudget bytes.
// A non-positive or undefined result means the budget does not constrain
// the plan and +Inf is returned.
func MaxSegmentDuration(sizeBudget int64, bytesPerSecond float64) float64 {
	d := float64(sizeBudget) / bytesPerSecond
	if math.IsNaN(d) || d <= 0 {
		return math.Inf(1)
	}
	return d
}

// Plan computes the ordered segment boundaries for a file.
//
// Each boundary starts from the size-driven target min(current+max, duration)
// and moves to the closest silence point within tolerance of it. Silence
// points must be sorted ascending. With no silence points the end of the
// file is the only candidate, so a target within tolerance of it snaps there.
// The first segment starts at 0, every segment starts where the previous
// one ended, and the last one ends at duration.
func Plan(duration, bytesPerSecond float64, sizeBudget int64, silencePoints []float64, tolerance float64) []Segment {
	if !(duration > 0) {
		return nil
	}

	maxDuration := MaxSegmentDuration(sizeBudget, bytesPerSecond)
	if len(silencePoints) == 0 {
		silencePoints = []float64{duration}
	}

	var plan []Segment
	current := 0.0
	for current < duration {
		target := min(current+maxDuration, duration)

		cut := nextCutPoint(current, target, silencePoints, tolerance)
		if cut <= current || cut > duration {
			cut = duration
		}

		plan = append(plan, Segment{Index: len(plan) + 1, Start: current, End: cut})
		current = cut
	}

	return plan
}

// nextCutPoint returns the candidate closest to target within tolerance,
// ignoring candidates at or before current. The first of several equally
// close candidates wins. Returns target when nothing qualifies.
func nextCutPoint(current, target float64, candidates []float64, tolerance float64) float64 {
	best := target
	minDiff := math.MaxFloat64
	for _, ts := range candidates {
		if ts <= current {
			continue
		}
		diff := math.Abs(ts - target)
		if diff <= tolerance && diff < minDiff {
			best = ts
			minDiff = diff
		}
		// Candidates are sorted: nothing further can be within tolerance.
		if ts > target+tolerance {
			break
		}
	}
	return best
}
