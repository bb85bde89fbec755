package cli

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/alnah/go-audiosplit/internal/config"
	"github.com/alnah/go-audiosplit/internal/ffmpeg"
	"github.com/alnah/go-audiosplit/internal/split"
	"github.com/alnah/go-audiosplit/internal/storage"
)

// ---------------------------------------------------------------------------
// Mock ToolResolver
// ---------------------------------------------------------------------------

type mockToolResolver struct {
	ResolveFunc        func(ctx context.Context) (ffmpeg.Binaries, error)
	CheckInstalledFunc func(ctx context.Context, ffmpegPath string) error

	mu           sync.Mutex
	resolveCalls int
	checkCalls   []string
}

func (m *mockToolResolver) Resolve(ctx context.Context) (ffmpeg.Binaries, error) {
	m.mu.Lock()
	m.resolveCalls++
	m.mu.Unlock()

	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx)
	}
	return ffmpeg.Binaries{FFmpeg: "/usr/bin/ffmpeg", FFprobe: "/usr/bin/ffprobe"}, nil
}

func (m *mockToolResolver) CheckInstalled(ctx context.Context, ffmpegPath string) error {
	m.mu.Lock()
	m.checkCalls = append(m.checkCalls, ffmpegPath)
	m.mu.Unlock()

	if m.CheckInstalledFunc != nil {
		return m.CheckInstalledFunc(ctx, ffmpegPath)
	}
	return nil
}

func (m *mockToolResolver) ResolveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveCalls
}

func (m *mockToolResolver) CheckCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.checkCalls...)
}

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func(ctx context.Context, base config.Settings) (config.Settings, error)

	mu    sync.Mutex
	bases []config.Settings
}

func (m *mockConfigLoader) Load(ctx context.Context, base config.Settings) (config.Settings, error) {
	m.mu.Lock()
	m.bases = append(m.bases, base)
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, base)
	}
	return base, nil
}

func (m *mockConfigLoader) Bases() []config.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]config.Settings(nil), m.bases...)
}

// ---------------------------------------------------------------------------
// Mock SplitterFactory + Splitter
// ---------------------------------------------------------------------------

type mockSplitterFactory struct {
	mockSplitter *mockSplitter

	mu      sync.Mutex
	options []split.Options
	bins    []ffmpeg.Binaries
}

func (m *mockSplitterFactory) NewSplitter(bins ffmpeg.Binaries, sink split.Sink, opts split.Options) Splitter {
	m.mu.Lock()
	m.options = append(m.options, opts)
	m.bins = append(m.bins, bins)
	m.mu.Unlock()

	if m.mockSplitter == nil {
		m.mockSplitter = &mockSplitter{}
	}
	m.mockSplitter.sink = sink
	return m.mockSplitter
}

func (m *mockSplitterFactory) Options() []split.Options {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]split.Options(nil), m.options...)
}

func (m *mockSplitterFactory) Binaries() []ffmpeg.Binaries {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ffmpeg.Binaries(nil), m.bins...)
}

// mockSplitter returns oneSegmentSummary unless SplitFunc is set.
type mockSplitter struct {
	SplitFunc func(ctx context.Context, path string) (split.Summary, error)

	sink split.Sink

	mu    sync.Mutex
	calls []string
}

func (m *mockSplitter) Split(ctx context.Context, path string) (split.Summary, error) {
	m.mu.Lock()
	m.calls = append(m.calls, path)
	m.mu.Unlock()

	if m.sink != nil {
		m.sink.Println("Splitting completed.")
	}
	if m.SplitFunc != nil {
		return m.SplitFunc(ctx, path)
	}
	return oneSegmentSummary(path), nil
}

func (m *mockSplitter) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// oneSegmentSummary describes a 10 s file written as a single segment.
func oneSegmentSummary(path string) split.Summary {
	seg := split.Segment{Index: 1, Start: 0, End: 10}
	return split.Summary{
		Source: split.SourceMedia{Path: path, Duration: 10, BitrateKbps: 128},
		Plan:   []split.Segment{seg},
		Results: []split.Result{{
			Segment:    seg,
			OutputPath: split.OutputPath(path, 1),
			Outcome:    split.Success,
		}},
	}
}

// ---------------------------------------------------------------------------
// Mock PublisherFactory + Publisher
// ---------------------------------------------------------------------------

type mockPublisherFactory struct {
	mockPublisher *mockPublisher
	Err           error

	mu      sync.Mutex
	configs []storage.S3Config
}

func (m *mockPublisherFactory) NewPublisher(cfg storage.S3Config) (Publisher, error) {
	m.mu.Lock()
	m.configs = append(m.configs, cfg)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if m.mockPublisher == nil {
		m.mockPublisher = &mockPublisher{}
	}
	return m.mockPublisher, nil
}

func (m *mockPublisherFactory) Configs() []storage.S3Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]storage.S3Config(nil), m.configs...)
}

type publishCall struct {
	Prefix string
	Files  []string
}

type mockPublisher struct {
	PublishFunc func(ctx context.Context, prefix string, files []string) ([]string, error)

	mu    sync.Mutex
	calls []publishCall
}

func (m *mockPublisher) Publish(ctx context.Context, prefix string, files []string) ([]string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, publishCall{Prefix: prefix, Files: append([]string(nil), files...)})
	m.mu.Unlock()

	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, prefix, files)
	}
	urls := make([]string, len(files))
	for i, f := range files {
		urls[i] = "s3://test/" + prefix + "/" + filepath.Base(f)
	}
	return urls, nil
}

func (m *mockPublisher) Calls() []publishCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]publishCall(nil), m.calls...)
}

// Compile-time interface verification.
var (
	_ ToolResolver     = (*mockToolResolver)(nil)
	_ ConfigLoader     = (*mockConfigLoader)(nil)
	_ SplitterFactory  = (*mockSplitterFactory)(nil)
	_ Splitter         = (*mockSplitter)(nil)
	_ PublisherFactory = (*mockPublisherFactory)(nil)
	_ Publisher        = (*mockPublisher)(nil)
)
