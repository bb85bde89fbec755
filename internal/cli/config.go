package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-audiosplit/internal/config"
)

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Configuration is stored in ~/.config/go-audiosplit/config.
Settings can also be provided via AUDIOSPLIT_* environment variables;
the config file wins over the environment, and flags win over both.

Supported settings:
  noise-db      Silence noise floor in dB, at most 0 (env: AUDIOSPLIT_NOISE_DB)
  min-silence   Minimum silence length in seconds (env: AUDIOSPLIT_MIN_SILENCE)
  tolerance     Maximum cut deviation in seconds (env: AUDIOSPLIT_TOLERANCE)
  size          Segment size limit, e.g. 100MB (env: AUDIOSPLIT_SIZE)
  log-file      Append progress to this file (env: AUDIOSPLIT_LOG_FILE)
  s3-bucket     Publish segments to this bucket (env: AUDIOSPLIT_S3_BUCKET)
  s3-region     Bucket region (env: AUDIOSPLIT_S3_REGION)
  s3-prefix     Object key prefix (env: AUDIOSPLIT_S3_PREFIX)
  s3-endpoint   S3-compatible endpoint URL (env: AUDIOSPLIT_S3_ENDPOINT)
  s3-access-key-id      Static access key (env: AUDIOSPLIT_S3_ACCESS_KEY_ID)
  s3-secret-access-key  Static secret key, masked in output
                        (env: AUDIOSPLIT_S3_SECRET_ACCESS_KEY)

Without static keys the default AWS credential chain is used.`,
		Example: `  audiosplit config set size 250MB
  audiosplit config get noise-db
  audiosplit config list`,
	}

	cmd.AddCommand(configSetCmd(env))
	cmd.AddCommand(configGetCmd(env))
	cmd.AddCommand(configListCmd(env))

	return cmd
}

// configSetCmd creates the "config set" subcommand.
func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value.

The value is checked before it is saved.`,
		Example: `  audiosplit config set min-silence 0.5
  audiosplit config set log-file ~/audiosplit.log`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			return runConfigSet(env, key, value)
		},
	}
}

// configGetCmd creates the "config get" subcommand.
func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value.

Prints the value to stdout, or nothing if not set.`,
		Example: `  audiosplit config get size`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(env, args[0])
		},
	}
}

// configListCmd creates the "config list" subcommand.
func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `List all configuration values.

Shows both values from the config file and environment variable overrides.`,
		Example: `  audiosplit config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

// runConfigSet handles the "config set" command.
func runConfigSet(env *Env, key, value string) error {
	if key == config.KeyLogFile {
		value = config.ExpandPath(value)
	}
	if err := config.Save(key, value); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, config.Mask(key, value))
	return nil
}

// runConfigGet handles the "config get" command.
func runConfigGet(env *Env, key string) error {
	value, err := config.Get(key)
	if err != nil {
		return err
	}

	// Environment variable fallback.
	if value == "" {
		value = env.Getenv(config.EnvName(key))
	}

	if value != "" {
		fmt.Fprintln(env.Stdout, value)
	}

	return nil
}

// runConfigList handles the "config list" command.
func runConfigList(env *Env) error {
	data, err := config.List()
	if err != nil {
		return err
	}

	var lines []string
	for _, key := range config.Keys() {
		if v, ok := data[key]; ok {
			lines = append(lines, fmt.Sprintf("%s=%s", key, config.Mask(key, v)))
			continue
		}
		if v := env.Getenv(config.EnvName(key)); v != "" {
			lines = append(lines, fmt.Sprintf("%s=%s (from env)", key, config.Mask(key, v)))
		}
	}

	if len(lines) == 0 {
		fmt.Fprintln(env.Stdout, "No configuration set.")
		fmt.Fprintln(env.Stdout, "\nAvailable settings:")
		for _, key := range config.Keys() {
			fmt.Fprintf(env.Stdout, "  %-20s (env: %s)\n", key, config.EnvName(key))
		}
		return nil
	}

	fmt.Fprintln(env.Stdout, strings.Join(lines, "\n"))
	return nil
}
