package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-audiosplit/internal/config"
	"github.com/alnah/go-audiosplit/internal/format"
	"github.com/alnah/go-audiosplit/internal/split"
)

// Defaults of the split command.
const (
	DefaultSplitSize    = 500 * format.MB
	DefaultSplitNoiseDB = -60.0
)

// splitDefaults returns the settings used when nothing else is configured.
func splitDefaults() config.Settings {
	return config.Settings{
		NoiseDB:    DefaultSplitNoiseDB,
		MinSilence: split.DefaultMinSilence,
		Tolerance:  split.DefaultTolerance,
		SizeBudget: DefaultSplitSize,
	}
}

// SplitCmd creates the split command.
// The env parameter provides injectable dependencies for testing.
func SplitCmd(env *Env) *cobra.Command {
	var writeManifest bool

	cmd := &cobra.Command{
		Use:   "split [input-file]",
		Short: "Split an audio file into size-bounded segments",
		Long: `Split an audio file into segments no larger than the size limit.

Cuts are placed at detected silences when one lies close enough to the
size target, so segments rarely end mid-word. Segments are written next to
the input as <name>_part<N><ext>, copying the audio stream without
re-encoding. A segment that cannot be stream-copied is re-extracted as PCM.

Without an argument, the input path is read from standard input.`,
		Example: `  audiosplit split podcast.mp3
  audiosplit split lecture.m4a --size 100MB --noise-db=-40
  audiosplit split show.wav --manifest --s3-bucket media --s3-region eu-west-1`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			return runSplit(cmd, env, input, writeManifest)
		},
	}

	registerSettingsFlags(cmd, splitDefaults())
	cmd.Flags().BoolVar(&writeManifest, "manifest", false, "Write <name>_parts.yaml describing the segments")

	return cmd
}

// runSplit splits one file.
// Validation order: input path -> file exists -> settings -> media tools
func runSplit(cmd *cobra.Command, env *Env, input string, writeManifest bool) error {
	ctx := cmd.Context()

	if input == "" {
		var err error
		if input, err = promptInput(env); err != nil {
			return err
		}
	}

	if _, err := os.Stat(input); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, input)
		}
		return fmt.Errorf("cannot access input file: %w", err)
	}

	settings, err := loadSettings(cmd, env, splitDefaults())
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	sess, err := newSession(ctx, env, settings, writeManifest)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	return sess.splitFile(ctx, input)
}

// promptInput prints the usage line and reads one path from stdin.
// Surrounding quotes, as left by drag-and-drop in some terminals, are removed.
func promptInput(env *Env) (string, error) {
	fmt.Fprintln(env.Stderr, "Usage: audiosplit split <input_file>")
	if env.Stdin == nil {
		return "", ErrNoInput
	}
	fmt.Fprint(env.Stderr, "Input file: ")

	line, err := bufio.NewReader(env.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input path: %w", err)
	}
	input := strings.Trim(strings.TrimSpace(line), `"'`)
	if input == "" {
		return "", ErrNoInput
	}
	return input, nil
}
