package split

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultBitrateKbps is used when the bitrate query yields no usable number.
const DefaultBitrateKbps = 128.0

// SourceMedia describes a probed source file. It is immutable once probed.
type SourceMedia struct {
	Path        string
	Duration    float64 // Seconds.
	BitrateKbps float64
}

// BytesPerSecond converts the bitrate to the byte rate used for planning.
func (m SourceMedia) BytesPerSecond() float64 {
	return m.BitrateKbps * 1000 / 8
}

// Prober queries duration and bitrate through the media tool.
type Prober struct {
	tool MediaTool
}

// NewProber creates a Prober backed by tool.
func NewProber(tool MediaTool) *Prober {
	return &Prober{tool: tool}
}

// Probe returns the duration and bitrate of path.
// A duration that cannot be parsed, or any non-positive value, fails with
// ErrProbeFailed. An unparseable bitrate falls back to DefaultBitrateKbps.
func (p *Prober) Probe(ctx context.Context, path string) (SourceMedia, error) {
	media := SourceMedia{Path: path}

	out, err := p.tool.ProbeDuration(ctx, path)
	if err != nil {
		return media, fmt.Errorf("%w: duration query: %v", ErrProbeFailed, err)
	}
	duration, ok := parseNumber(out)
	if !ok || duration <= 0 {
		return media, fmt.Errorf("%w: duration %q", ErrProbeFailed, strings.TrimSpace(out))
	}
	media.Duration = duration

	media.BitrateKbps = DefaultBitrateKbps
	if out, err := p.tool.ProbeBitrate(ctx, path); err == nil {
		if bps, ok := parseNumber(out); ok {
			media.BitrateKbps = bps / 1000
		}
	}
	if media.BitrateKbps <= 0 {
		return media, fmt.Errorf("%w: bitrate %.0f kbps", ErrProbeFailed, media.BitrateKbps)
	}

	return media, nil
}

// parseNumber parses a probe result as a finite, non-negative number.
func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}
