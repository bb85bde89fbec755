package split_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/alnah/go-audiosplit/internal/split"
)

// ---------------------------------------------------------------------------
// fakeTool - canned-output MediaTool
// ---------------------------------------------------------------------------

type fakeTool struct {
	Duration      string
	DurationErr   error
	Bitrate       string
	BitrateErr    error
	Silence       string
	SilenceErr    error
	ExtractFunc   func(req split.Extraction) (split.Invocation, error)
	OnExtract     func(req split.Extraction) // called before ExtractFunc
	silenceParams []float64

	mu       sync.Mutex
	extracts []split.Extraction
}

func (f *fakeTool) ProbeDuration(_ context.Context, _ string) (string, error) {
	return f.Duration, f.DurationErr
}

func (f *fakeTool) ProbeBitrate(_ context.Context, _ string) (string, error) {
	return f.Bitrate, f.BitrateErr
}

func (f *fakeTool) DetectSilence(_ context.Context, _ string, noiseDB, minSilence float64) (string, error) {
	f.mu.Lock()
	f.silenceParams = []float64{noiseDB, minSilence}
	f.mu.Unlock()
	return f.Silence, f.SilenceErr
}

func (f *fakeTool) ExtractSegment(_ context.Context, req split.Extraction) (split.Invocation, error) {
	f.mu.Lock()
	f.extracts = append(f.extracts, req)
	f.mu.Unlock()

	if f.OnExtract != nil {
		f.OnExtract(req)
	}
	if f.ExtractFunc != nil {
		return f.ExtractFunc(req)
	}
	return split.Invocation{}, nil
}

func (f *fakeTool) Extracts() []split.Extraction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]split.Extraction(nil), f.extracts...)
}

func (f *fakeTool) SilenceParams() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.silenceParams
}

// ---------------------------------------------------------------------------
// recordingSink - captures progress lines
// ---------------------------------------------------------------------------

type recordingSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *recordingSink) Println(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
}

func (s *recordingSink) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.lines, "\n")
}

// ---------------------------------------------------------------------------
// fakeStatter - in-memory set of existing files
// ---------------------------------------------------------------------------

type fakeStatter struct {
	mu    sync.Mutex
	files map[string]bool
}

func newFakeStatter(existing ...string) *fakeStatter {
	s := &fakeStatter{files: make(map[string]bool)}
	for _, p := range existing {
		s.files[p] = true
	}
	return s
}

func (s *fakeStatter) Add(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = true
}

func (s *fakeStatter) Stat(name string) (os.FileInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.files[name] {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return fakeFileInfo{name: name}, nil
}

type fakeFileInfo struct{ name string }

func (f fakeFileInfo) Name() string       { return f.name }
func (f fakeFileInfo) Size() int64        { return 1 }
func (f fakeFileInfo) Mode() os.FileMode  { return 0644 }
func (f fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (f fakeFileInfo) IsDir() bool        { return false }
func (f fakeFileInfo) Sys() any           { return nil }

var errToolMissing = errors.New("exec: \"ffmpeg\": executable file not found in $PATH")
