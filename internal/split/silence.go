package split

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
)

// Silence detection defaults shared by every front end.
const (
	DefaultMinSilence = 1.0 // Seconds.
	DefaultTolerance  = 5.0 // Seconds.
)

// silenceEndRe matches the end marker of a detected silence interval:
//
//	[silencedetect @ 0x...] silence_end: 43.456 | silence_duration: 1.333
var silenceEndRe = regexp.MustCompile(`silence_end:\s*(\d+(?:\.\d+)?)`)

// Detector finds candidate cut points at the end of silent intervals.
type Detector struct {
	tool       MediaTool
	noiseDB    float64
	minSilence float64
}

// NewDetector creates a Detector. noiseDB is the noise floor (e.g. -40),
// minSilence the minimum silence length in seconds.
func NewDetector(tool MediaTool, noiseDB, minSilence float64) *Detector {
	return &Detector{tool: tool, noiseDB: noiseDB, minSilence: minSilence}
}

// Detect returns silence end timestamps in ascending order.
// An empty result is not an error.
func (d *Detector) Detect(ctx context.Context, path string) ([]float64, error) {
	out, err := d.tool.DetectSilence(ctx, path, d.noiseDB, d.minSilence)
	if err != nil {
		return nil, fmt.Errorf("silence detection: %w", err)
	}
	return ParseSilenceEnds(out), nil
}

// ParseSilenceEnds extracts every silence_end timestamp from a diagnostic
// stream. The result is sorted ascending; duplicates are kept.
func ParseSilenceEnds(diagnostic string) []float64 {
	var points []float64
	for _, m := range silenceEndRe.FindAllStringSubmatch(diagnostic, -1) {
		ts, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		points = append(points, ts)
	}
	slices.Sort(points)
	return points
}
