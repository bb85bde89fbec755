// Package manifest records the segments produced from one source file as
// a YAML document written next to the source.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alnah/go-audiosplit/internal/split"
)

// Manifest describes one split run.
type Manifest struct {
	Source      string    `yaml:"source"`
	Duration    float64   `yaml:"duration_seconds"`
	BitrateKbps float64   `yaml:"bitrate_kbps"`
	Segments    []Segment `yaml:"segments"`
	Published   []string  `yaml:"published,omitempty"`
}

// Segment is one planned segment and what happened to it.
// Segments that were never attempted have an empty outcome.
type Segment struct {
	Index    int     `yaml:"index"`
	Start    float64 `yaml:"start"`
	End      float64 `yaml:"end"`
	Output   string  `yaml:"output"`
	Outcome  string  `yaml:"outcome,omitempty"`
	ExitCode int     `yaml:"exit_code"`
}

// PathFor returns {dir}/{basename}_parts.yaml for source.
func PathFor(source string) string {
	ext := filepath.Ext(source)
	base := strings.TrimSuffix(filepath.Base(source), ext)
	return filepath.Join(filepath.Dir(source), base+"_parts.yaml")
}

// Build converts a split summary into a manifest.
func Build(summary split.Summary) Manifest {
	m := Manifest{
		Source:      summary.Source.Path,
		Duration:    summary.Source.Duration,
		BitrateKbps: summary.Source.BitrateKbps,
		Segments:    make([]Segment, len(summary.Plan)),
	}
	for i, seg := range summary.Plan {
		m.Segments[i] = Segment{
			Index:  seg.Index,
			Start:  seg.Start,
			End:    seg.End,
			Output: filepath.Base(split.OutputPath(summary.Source.Path, seg.Index)),
		}
	}
	for _, res := range summary.Results {
		if i := res.Index - 1; i >= 0 && i < len(m.Segments) {
			m.Segments[i].Outcome = res.Outcome.String()
			m.Segments[i].ExitCode = res.ExitCode
		}
	}
	return m
}

// Write builds the manifest of summary, records the published segment
// URLs and saves it to path.
func Write(path string, summary split.Summary, published ...string) error {
	m := Build(summary)
	m.Published = published
	return Save(path, m)
}

// Save writes m to path as YAML, replacing any previous file.
func Save(path string, m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil { // #nosec G306 -- manifest sits next to user media
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// Read loads a manifest from path.
func Read(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path) // #nosec G304 -- user-selected manifest
	if err != nil {
		return m, fmt.Errorf("failed to read manifest: %w", err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return m, nil
}
