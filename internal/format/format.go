package format

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Binary size units.
const (
	KB int64 = 1024
	MB       = 1024 * KB
	GB       = 1024 * MB
)

// ErrInvalidSize indicates a size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size")

// Presets lists the size budgets offered to batch jobs, smallest first.
var Presets = []int64{10 * MB, 50 * MB, 100 * MB, 250 * MB, 500 * MB, GB}

// DefaultPreset is used when no preset, or an unknown one, is selected.
const DefaultPreset = 100 * MB

// Seconds formats an offset in seconds for media tool arguments.
// Always uses a dot separator regardless of locale.
func Seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// Size formats a size in bytes for human display, e.g. "1.5 GB", "100 MB".
func Size(bytes int64) string {
	units := []string{"B", "KB", "MB", "GB"}
	size := float64(bytes)
	order := 0
	for size >= 1024 && order < len(units)-1 {
		order++
		size /= 1024
	}
	s := strconv.FormatFloat(size, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	return s + " " + units[order]
}

// ParseSize parses a size such as "100MB", "1 GB", "512kb" or "1048576".
// Units are binary (1 KB = 1024 bytes).
func ParseSize(s string) (int64, error) {
	raw := strings.ToUpper(strings.TrimSpace(s))
	if raw == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidSize)
	}

	multiplier := int64(1)
	for _, u := range []struct {
		suffix string
		mult   int64
	}{
		{"GB", GB}, {"MB", MB}, {"KB", KB}, {"G", GB}, {"M", MB}, {"K", KB}, {"B", 1},
	} {
		if strings.HasSuffix(raw, u.suffix) {
			multiplier = u.mult
			raw = strings.TrimSpace(strings.TrimSuffix(raw, u.suffix))
			break
		}
	}

	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	return int64(n * float64(multiplier)), nil
}

// Preset resolves a batch size selection to one of Presets.
// Anything unparseable or outside the preset list yields DefaultPreset.
func Preset(s string) int64 {
	size, err := ParseSize(s)
	if err != nil || !slices.Contains(Presets, size) {
		return DefaultPreset
	}
	return size
}
