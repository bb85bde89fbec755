package cli

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-audiosplit/internal/config"
	"github.com/alnah/go-audiosplit/internal/format"
	"github.com/alnah/go-audiosplit/internal/logging"
	"github.com/alnah/go-audiosplit/internal/manifest"
	"github.com/alnah/go-audiosplit/internal/split"
	"github.com/alnah/go-audiosplit/internal/storage"
)

// registerSettingsFlags adds one flag per config key except the S3
// credentials, which stay out of shell history. Flag names equal config keys
// so applyFlags can route changed flags through Settings.Apply.
func registerSettingsFlags(cmd *cobra.Command, defaults config.Settings) {
	f := cmd.Flags()
	f.StringP(config.KeySize, "s", format.Size(defaults.SizeBudget), "Maximum segment size (e.g. 100MB, 1.5GB)")
	f.Float64P(config.KeyNoiseDB, "n", defaults.NoiseDB, "Silence noise floor in dB")
	f.Float64(config.KeyMinSilence, defaults.MinSilence, "Minimum silence length in seconds")
	f.Float64(config.KeyTolerance, defaults.Tolerance, "Maximum distance in seconds between a cut and its size target")
	f.String(config.KeyLogFile, "", "Also append progress to this file")
	f.String(config.KeyS3Bucket, "", "Upload segments to this S3 bucket")
	f.String(config.KeyS3Region, "", "Region of the S3 bucket")
	f.String(config.KeyS3Prefix, "", "Key prefix for uploaded segments")
	f.String(config.KeyS3Endpoint, "", "Custom S3-compatible endpoint URL")
}

// applyFlags overrides s with every flag the user set explicitly.
// Keys listed in skip are left to the caller.
func applyFlags(cmd *cobra.Command, s *config.Settings, skip ...string) error {
	for _, key := range config.Keys() {
		fl := cmd.Flags().Lookup(key)
		if fl == nil || !fl.Changed || slices.Contains(skip, key) {
			continue
		}
		if err := s.Apply(key, fl.Value.String()); err != nil {
			return fmt.Errorf("--%s: %w", key, err)
		}
	}
	return nil
}

// loadSettings merges defaults, environment, config file and flags, in
// increasing precedence. A config that cannot be loaded is reported as a
// warning; a bad flag value is an error.
func loadSettings(cmd *cobra.Command, env *Env, defaults config.Settings, skip ...string) (config.Settings, error) {
	settings, err := env.ConfigLoader.Load(cmd.Context(), defaults)
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}
	if err := applyFlags(cmd, &settings, skip...); err != nil {
		return settings, err
	}
	return settings, nil
}

// session holds the resolved tools and collaborators shared by every file
// processed in one command invocation.
type session struct {
	settings  config.Settings
	manifest  bool
	sink      *logging.Sink
	splitter  Splitter
	publisher Publisher
}

// newSession resolves the media tools, checks that they run and wires the
// splitter, log sink and optional publisher. The caller must Close it.
func newSession(ctx context.Context, env *Env, settings config.Settings, writeManifest bool) (*session, error) {
	bins, err := env.ToolResolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if err := env.ToolResolver.CheckInstalled(ctx, bins.FFmpeg); err != nil {
		return nil, err
	}

	sink := logging.New(env.Stdout)
	if settings.LogFile != "" {
		if err := sink.OpenFile(settings.LogFile); err != nil {
			return nil, err
		}
	}

	s := &session{
		settings: settings,
		manifest: writeManifest,
		sink:     sink,
	}

	if settings.S3Enabled() {
		p, err := env.PublisherFactory.NewPublisher(storage.S3Config{
			Bucket:   settings.S3Bucket,
			Region:   settings.S3Region,
			Endpoint: settings.S3Endpoint,

			AccessKeyID:     settings.S3AccessKeyID,
			SecretAccessKey: settings.S3SecretAccessKey,
		})
		if err != nil {
			_ = sink.Close()
			return nil, fmt.Errorf("s3 publisher: %w", err)
		}
		s.publisher = p
	}

	s.splitter = env.SplitterFactory.NewSplitter(bins, sink, split.Options{
		SizeBudget: settings.SizeBudget,
		NoiseDB:    settings.NoiseDB,
		MinSilence: settings.MinSilence,
		Tolerance:  settings.Tolerance,
	})
	return s, nil
}

// Close releases the log file.
func (s *session) Close() error {
	return s.sink.Close()
}

// splitFile splits file, then publishes the produced segments and writes
// the manifest when enabled.
func (s *session) splitFile(ctx context.Context, file string) error {
	summary, err := s.splitter.Split(ctx, file)
	if err != nil {
		return err
	}

	var urls []string
	if outputs := summary.Outputs(); s.publisher != nil && len(outputs) > 0 {
		prefix := path.Join(s.settings.S3Prefix, baseName(file))
		urls, err = s.publisher.Publish(ctx, prefix, outputs)
		if err != nil {
			return fmt.Errorf("publish segments of %s: %w", filepath.Base(file), err)
		}
		for _, u := range urls {
			s.sink.Println("Uploaded: " + u)
		}
	}

	if s.manifest {
		p := manifest.PathFor(file)
		if err := manifest.Write(p, summary, urls...); err != nil {
			return err
		}
		s.sink.Println("Manifest written: " + p)
	}
	return nil
}

// baseName returns the file name of p without its extension.
func baseName(p string) string {
	name := filepath.Base(p)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
