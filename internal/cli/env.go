package cli

import (
	"context"
	"io"
	"os"

	"github.com/alnah/go-audiosplit/internal/config"
	"github.com/alnah/go-audiosplit/internal/ffmpeg"
	"github.com/alnah/go-audiosplit/internal/split"
	"github.com/alnah/go-audiosplit/internal/storage"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	// Factories for domain objects
	ToolResolver     ToolResolver
	ConfigLoader     ConfigLoader
	SplitterFactory  SplitterFactory
	PublisherFactory PublisherFactory
}

// ToolResolver locates the media tools and checks that they run.
type ToolResolver interface {
	Resolve(ctx context.Context) (ffmpeg.Binaries, error)
	CheckInstalled(ctx context.Context, ffmpegPath string) error
}

// ConfigLoader merges persisted and environment settings over base.
type ConfigLoader interface {
	Load(ctx context.Context, base config.Settings) (config.Settings, error)
}

// Splitter splits one file.
type Splitter interface {
	Split(ctx context.Context, path string) (split.Summary, error)
}

// SplitterFactory creates splitters bound to resolved tool binaries.
type SplitterFactory interface {
	NewSplitter(bins ffmpeg.Binaries, sink split.Sink, opts split.Options) Splitter
}

// Publisher uploads produced segments and returns their URLs.
type Publisher interface {
	Publish(ctx context.Context, prefix string, files []string) ([]string, error)
}

// PublisherFactory creates publishers.
type PublisherFactory interface {
	NewPublisher(cfg storage.S3Config) (Publisher, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdin sets the reader used for interactive prompts.
func WithStdin(r io.Reader) EnvOption {
	return func(e *Env) {
		e.Stdin = r
	}
}

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithToolResolver sets the media tool resolver.
func WithToolResolver(r ToolResolver) EnvOption {
	return func(e *Env) {
		e.ToolResolver = r
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithSplitterFactory sets the splitter factory.
func WithSplitterFactory(f SplitterFactory) EnvOption {
	return func(e *Env) {
		e.SplitterFactory = f
	}
}

// WithPublisherFactory sets the publisher factory.
func WithPublisherFactory(f PublisherFactory) EnvOption {
	return func(e *Env) {
		e.PublisherFactory = f
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdin:            os.Stdin,
		Stdout:           os.Stdout,
		Stderr:           os.Stderr,
		Getenv:           os.Getenv,
		ToolResolver:     &defaultToolResolver{},
		ConfigLoader:     &defaultConfigLoader{},
		SplitterFactory:  &defaultSplitterFactory{},
		PublisherFactory: &defaultPublisherFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultToolResolver implements ToolResolver using the ffmpeg package.
type defaultToolResolver struct{}

func (defaultToolResolver) Resolve(ctx context.Context) (ffmpeg.Binaries, error) {
	return ffmpeg.NewResolver().Resolve(ctx)
}

func (defaultToolResolver) CheckInstalled(ctx context.Context, ffmpegPath string) error {
	return ffmpeg.CheckInstalled(ctx, ffmpegPath)
}

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load(ctx context.Context, base config.Settings) (config.Settings, error) {
	return config.Load(ctx, base)
}

// defaultSplitterFactory wires the ffmpeg tool into the splitting pipeline.
// Command lines are logged through the same sink as progress.
type defaultSplitterFactory struct{}

func (defaultSplitterFactory) NewSplitter(bins ffmpeg.Binaries, sink split.Sink, opts split.Options) Splitter {
	tool := ffmpeg.NewTool(bins, ffmpeg.WithCommandLog(sink))
	return split.NewSplitter(tool, sink, opts)
}

// defaultPublisherFactory implements PublisherFactory using S3.
type defaultPublisherFactory struct{}

func (defaultPublisherFactory) NewPublisher(cfg storage.S3Config) (Publisher, error) {
	p, err := storage.NewS3Publisher(cfg)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Compile-time interface verification.
var (
	_ ToolResolver     = (*defaultToolResolver)(nil)
	_ ConfigLoader     = (*defaultConfigLoader)(nil)
	_ SplitterFactory  = (*defaultSplitterFactory)(nil)
	_ PublisherFactory = (*defaultPublisherFactory)(nil)
	_ Splitter         = (*split.Splitter)(nil)
	_ Publisher        = (*storage.S3Publisher)(nil)
)
