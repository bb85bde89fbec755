package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"

	"github.com/alnah/go-audiosplit/internal/format"
)

// Config keys.
const (
	KeyNoiseDB    = "noise-db"
	KeyMinSilence = "min-silence"
	KeyTolerance  = "tolerance"
	KeySize       = "size"
	KeyLogFile    = "log-file"
	KeyS3Bucket   = "s3-bucket"
	KeyS3Region   = "s3-region"
	KeyS3Prefix   = "s3-prefix"
	KeyS3Endpoint = "s3-endpoint"

	KeyS3AccessKeyID     = "s3-access-key-id"
	KeyS3SecretAccessKey = "s3-secret-access-key"
)

// EnvPrefix prefixes every environment variable fallback,
// e.g. AUDIOSPLIT_NOISE_DB for noise-db.
const EnvPrefix = "AUDIOSPLIT_"

// ErrUnknownKey indicates a key outside Keys().
var ErrUnknownKey = errors.New("unknown config key")

// ErrInvalid indicates a value that cannot be parsed or fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Keys returns every supported key in display order.
func Keys() []string {
	return []string{
		KeyNoiseDB, KeyMinSilence, KeyTolerance, KeySize, KeyLogFile,
		KeyS3Bucket, KeyS3Region, KeyS3Prefix, KeyS3Endpoint,
		KeyS3AccessKeyID, KeyS3SecretAccessKey,
	}
}

// EnvName returns the environment variable read for key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// Settings holds tunable values after merging every configuration source.
type Settings struct {
	NoiseDB    float64 `validate:"lte=0"`
	MinSilence float64 `validate:"gt=0"`
	Tolerance  float64 `validate:"gte=0"`
	SizeBudget int64   `validate:"gt=0"`
	LogFile    string
	S3Bucket   string
	S3Region   string `validate:"required_with=S3Bucket"`
	S3Prefix   string
	S3Endpoint string `validate:"omitempty,url"`

	// Static credentials; both or neither. Without them the default AWS
	// credential chain is used.
	S3AccessKeyID     string `validate:"required_with=S3SecretAccessKey"`
	S3SecretAccessKey string `validate:"required_with=S3AccessKeyID"`
}

// S3Enabled reports whether segments should be published.
func (s Settings) S3Enabled() bool {
	return s.S3Bucket != ""
}

// fieldKeys maps struct fields to config keys for error messages.
var fieldKeys = map[string]string{
	"NoiseDB":    KeyNoiseDB,
	"MinSilence": KeyMinSilence,
	"Tolerance":  KeyTolerance,
	"SizeBudget": KeySize,
	"S3Region":   KeyS3Region,
	"S3Endpoint": KeyS3Endpoint,

	"S3AccessKeyID":     KeyS3AccessKeyID,
	"S3SecretAccessKey": KeyS3SecretAccessKey,
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks value ranges: noise floor <= 0 dB, minimum silence > 0,
// tolerance >= 0, size budget > 0, and a region whenever a bucket is set.
func (s Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		key := fieldKeys[fe.Field()]
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", key, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s fails %s", key, fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// Apply parses value and stores it under key in s.
func (s *Settings) Apply(key, value string) error {
	value = strings.TrimSpace(value)
	var err error
	switch key {
	case KeyNoiseDB:
		s.NoiseDB, err = parseFloat(key, value)
	case KeyMinSilence:
		s.MinSilence, err = parseFloat(key, value)
	case KeyTolerance:
		s.Tolerance, err = parseFloat(key, value)
	case KeySize:
		var n int64
		if n, err = format.ParseSize(value); err != nil {
			err = fmt.Errorf("%w: %s: %v", ErrInvalid, key, err)
		} else {
			s.SizeBudget = n
		}
	case KeyLogFile:
		s.LogFile = ExpandPath(value)
	case KeyS3Bucket:
		s.S3Bucket = value
	case KeyS3Region:
		s.S3Region = value
	case KeyS3Prefix:
		s.S3Prefix = strings.Trim(value, "/")
	case KeyS3Endpoint:
		s.S3Endpoint = value
	case KeyS3AccessKeyID:
		s.S3AccessKeyID = value
	case KeyS3SecretAccessKey:
		s.S3SecretAccessKey = value
	default:
		err = fmt.Errorf("%w %q (valid keys: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}
	return err
}

func parseFloat(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q is not a number", ErrInvalid, key, value)
	}
	return v, nil
}

// CheckValue reports whether value is acceptable for key on its own.
func CheckValue(key, value string) error {
	var s Settings
	return s.Apply(key, value)
}

// IsSecret reports whether values of key must not be displayed.
func IsSecret(key string) bool {
	return key == KeyS3SecretAccessKey
}

// Mask hides a secret value for display, keeping its last 4 characters.
// Values of other keys are returned unchanged.
func Mask(key, value string) string {
	if !IsSecret(key) || value == "" {
		return value
	}
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}

// IsKey reports whether key is supported.
func IsKey(key string) bool {
	return slices.Contains(Keys(), key)
}

// ---------------------------------------------------------------------------
// Environment fallbacks
// ---------------------------------------------------------------------------

// envSettings mirrors Settings for go-envconfig. Numeric fields are
// pointers so an unset variable leaves the lower-precedence value alone.
type envSettings struct {
	NoiseDB    *float64 `env:"NOISE_DB, noinit"`
	MinSilence *float64 `env:"MIN_SILENCE, noinit"`
	Tolerance  *float64 `env:"TOLERANCE, noinit"`
	Size       string   `env:"SIZE"`
	LogFile    string   `env:"LOG_FILE"`
	S3Bucket   string   `env:"S3_BUCKET"`
	S3Region   string   `env:"S3_REGION"`
	S3Prefix   string   `env:"S3_PREFIX"`
	S3Endpoint string   `env:"S3_ENDPOINT"`

	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
}

func (e envSettings) applyTo(s *Settings) error {
	if e.NoiseDB != nil {
		s.NoiseDB = *e.NoiseDB
	}
	if e.MinSilence != nil {
		s.MinSilence = *e.MinSilence
	}
	if e.Tolerance != nil {
		s.Tolerance = *e.Tolerance
	}
	for key, v := range map[string]string{
		KeySize:       e.Size,
		KeyLogFile:    e.LogFile,
		KeyS3Bucket:   e.S3Bucket,
		KeyS3Region:   e.S3Region,
		KeyS3Prefix:   e.S3Prefix,
		KeyS3Endpoint: e.S3Endpoint,

		KeyS3AccessKeyID:     e.S3AccessKeyID,
		KeyS3SecretAccessKey: e.S3SecretAccessKey,
	} {
		if v == "" {
			continue
		}
		if err := s.Apply(key, v); err != nil {
			return fmt.Errorf("%s: %w", EnvName(key), err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load merges configuration over base, the caller's defaults.
// Precedence: config file values, then AUDIOSPLIT_* environment variables,
// then base. A missing config file is not an error. The result is not
// validated, since command-line flags may still override it.
func Load(ctx context.Context, base Settings) (Settings, error) {
	return LoadWith(ctx, base, envconfig.OsLookuper())
}

// LoadWith is Load with an explicit environment lookuper.
func LoadWith(ctx context.Context, base Settings, lookuper envconfig.Lookuper) (Settings, error) {
	cfg := base

	var env envSettings
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &env,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, lookuper),
	}); err != nil {
		return cfg, fmt.Errorf("%w: environment: %v", ErrInvalid, err)
	}
	if err := env.applyTo(&cfg); err != nil {
		return cfg, err
	}

	p, err := path()
	if err != nil {
		return cfg, err
	}
	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	for _, key := range Keys() {
		if v, ok := data[key]; ok && v != "" {
			if err := cfg.Apply(key, v); err != nil {
				return cfg, fmt.Errorf("%s: %w", p, err)
			}
		}
	}
	return cfg, nil
}

// ---------------------------------------------------------------------------
// Config file
// ---------------------------------------------------------------------------

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/go-audiosplit.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "go-audiosplit"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "go-audiosplit"), nil
}

// path returns the full path to the config file.
func path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config"), nil
}

// parseFile reads a key=value config file.
// Format: one key=value per line, # comments, empty lines ignored.
func parseFile(p string) (map[string]string, error) {
	f, err := os.Open(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid syntax at line %d: %q", lineNum, line)
		}
		data[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return data, nil
}

// Save writes a single key=value to the config file, creating it if needed.
// The key and value are checked first. Existing pairs are preserved,
// comments are not.
func Save(key, value string) error {
	if err := CheckValue(key, value); err != nil {
		return err
	}

	p, err := path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	existing, _ := parseFile(p)
	if existing == nil {
		existing = make(map[string]string)
	}
	existing[key] = strings.TrimSpace(value)

	return writeFile(p, existing)
}

// writeFile writes the config map to a file, keys sorted.
func writeFile(p string, data map[string]string) error {
	// #nosec G302 G304 -- config file with standard permissions, path from home dir
	f, err := os.OpenFile(p, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	w := bufio.NewWriter(f)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s=%s\n", k, data[k]); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Get reads a single value from the config file.
// Returns empty string if the key doesn't exist.
func Get(key string) (string, error) {
	if !IsKey(key) {
		return "", fmt.Errorf("%w %q (valid keys: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}

	p, err := path()
	if err != nil {
		return "", err
	}
	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return data[key], nil
}

// List returns all config file values as a map.
func List() (map[string]string, error) {
	p, err := path()
	if err != nil {
		return nil, err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	return data, nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[2:])
	}
	return p
}

// Dir returns the configuration directory path.
func Dir() (string, error) {
	return dir()
}
