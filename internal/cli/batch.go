package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/alnah/go-audiosplit/internal/batch"
	"github.com/alnah/go-audiosplit/internal/config"
	"github.com/alnah/go-audiosplit/internal/format"
	"github.com/alnah/go-audiosplit/internal/split"
)

// DefaultBatchNoiseDB is the noise floor of the batch command.
const DefaultBatchNoiseDB = -40.0

// batchDefaults returns the settings used when nothing else is configured.
func batchDefaults() config.Settings {
	return config.Settings{
		NoiseDB:    DefaultBatchNoiseDB,
		MinSilence: split.DefaultMinSilence,
		Tolerance:  split.DefaultTolerance,
		SizeBudget: format.DefaultPreset,
	}
}

// BatchCmd creates the batch command.
// The env parameter provides injectable dependencies for testing.
func BatchCmd(env *Env) *cobra.Command {
	var writeManifest bool

	cmd := &cobra.Command{
		Use:   "batch <audio-file>...",
		Short: "Split several audio files one after another",
		Long: `Split several audio files with a preset size limit.

Files are processed one at a time. A file that fails does not stop the
others; the command reports every failure at the end.

Size presets: 10MB, 50MB, 100MB, 250MB, 500MB, 1GB. Any other value
selects 100MB.`,
		Example: `  audiosplit batch *.mp3
  audiosplit batch a.wav b.wav --size 250MB
  audiosplit batch episodes/*.m4a --manifest`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, env, args, writeManifest)
		},
	}

	registerSettingsFlags(cmd, batchDefaults())
	cmd.Flags().BoolVar(&writeManifest, "manifest", false, "Write <name>_parts.yaml next to each input")

	return cmd
}

// runBatch splits files in order and reports progress after each one.
func runBatch(cmd *cobra.Command, env *Env, files []string, writeManifest bool) error {
	ctx := cmd.Context()

	settings, err := loadSettings(cmd, env, batchDefaults(), config.KeySize)
	if err != nil {
		return err
	}
	if fl := cmd.Flags().Lookup(config.KeySize); fl.Changed {
		settings.SizeBudget = format.Preset(fl.Value.String())
	} else if !slices.Contains(format.Presets, settings.SizeBudget) {
		fmt.Fprintf(env.Stderr, "Warning: configured size %s is not a preset, using %s\n",
			format.Size(settings.SizeBudget), format.Size(format.DefaultPreset))
		settings.SizeBudget = format.DefaultPreset
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	sess, err := newSession(ctx, env, settings, writeManifest)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	sess.sink.Printf("Files to process (%d):", len(files))
	for _, f := range files {
		sess.sink.Println("  " + describeFile(f))
	}
	sess.sink.Printf("Segment size limit: %s", format.Size(settings.SizeBudget))

	report := batch.Run(ctx, files, sess.splitFile, func(p batch.Progress) {
		if p.Err != nil {
			sess.sink.Printf("Error processing %s: %v", filepath.Base(p.Path), p.Err)
		}
		sess.sink.Printf("Processed %d of %d files", p.Done, p.Total)
	})

	if report.Stopped != nil {
		return fmt.Errorf("batch stopped, %d of %d files succeeded: %w", report.Succeeded(), len(files), report.Stopped)
	}
	if n := report.Failed(); n > 0 {
		return fmt.Errorf("%w: %d of %d files failed: %w", ErrBatchFailed, n, len(files), report.Err())
	}
	sess.sink.Println("All files processed.")
	return nil
}

// describeFile renders a file list entry: name and human size.
func describeFile(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return filepath.Base(path) + " (missing)"
	}
	return fmt.Sprintf("%s (%s)", filepath.Base(path), format.Size(info.Size()))
}
