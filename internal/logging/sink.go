// Package logging provides the line-oriented progress sink shared by the
// splitting pipeline and the command-line front ends.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Sink writes whole lines to a console writer and, optionally, to a log
// file. Lines are written under a mutex, so concurrent writers never
// interleave partial lines. Safe for concurrent use.
type Sink struct {
	mu   sync.Mutex
	out  io.Writer
	file *os.File
	now  func() time.Time
}

// Option configures a Sink.
type Option func(*Sink)

// WithClock sets the clock used to timestamp log file lines.
func WithClock(now func() time.Time) Option {
	return func(s *Sink) { s.now = now }
}

// New creates a Sink writing to out. A nil out discards console output.
func New(out io.Writer, opts ...Option) *Sink {
	if out == nil {
		out = io.Discard
	}
	s := &Sink{out: out, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenFile tees every following line to path, opened in append mode.
// The parent directory is created if needed.
func (s *Sink) OpenFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) // #nosec G304 -- user-selected log file
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file != nil {
		_ = s.file.Close()
	}
	s.file = f
	return nil
}

// Close closes the log file if one was opened.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// Println writes line followed by a newline. A multi-line payload is
// written as one unit.
func (s *Sink) Println(line string) {
	line = strings.TrimRight(line, "\n") + "\n"

	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(s.out, line)
	if s.file != nil {
		_, _ = io.WriteString(s.file, s.now().Format("2006-01-02 15:04:05")+" "+line)
	}
}

// Printf formats according to a format specifier and writes one line.
func (s *Sink) Printf(format string, args ...any) {
	s.Println(fmt.Sprintf(format, args...))
}
