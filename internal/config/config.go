package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "RICHFMT_"

// Config is the complete richfmt configuration.
type Config struct {
	Log    LogConfig    `toml:"log" yaml:"log" envPrefix:"LOG_"`
	Engine EngineConfig `toml:"engine" yaml:"engine" envPrefix:"ENGINE_"`
	Output OutputConfig `toml:"output" yaml:"output" envPrefix:"OUTPUT_"`
	Script ScriptConfig `toml:"script" yaml:"script" envPrefix:"SCRIPT_"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" yaml:"level" env:"LEVEL"`
	// File receives the log; empty means stderr.
	File string `toml:"file" yaml:"file" env:"FILE"`
	// Format is text or json.
	Format string `toml:"format" yaml:"format" env:"FORMAT"`
	// MaxSizeMB is the size at which the log file rotates.
	MaxSizeMB int `toml:"max_size_mb" yaml:"max_size_mb" env:"MAX_SIZE_MB"`
	// MaxBackups is the number of rotated files kept.
	MaxBackups int `toml:"max_backups" yaml:"max_backups" env:"MAX_BACKUPS"`
	// MaxAgeDays is how long rotated files are kept.
	MaxAgeDays int `toml:"max_age_days" yaml:"max_age_days" env:"MAX_AGE_DAYS"`
}

// EngineConfig controls the headless document engine.
type EngineConfig struct {
	// ListInParagraph nests new lists inside their paragraph.
	ListInParagraph bool `toml:"list_in_paragraph" yaml:"list_in_paragraph" env:"LIST_IN_PARAGRAPH"`
	// Separator is the initial paragraph separator, p or div.
	Separator string `toml:"separator" yaml:"separator" env:"SEPARATOR"`
}

// OutputConfig controls how documents are written.
type OutputConfig struct {
	// Markers keeps selection markers in written documents.
	Markers bool `toml:"markers" yaml:"markers" env:"MARKERS"`
}

// ScriptConfig controls Lua script runs.
type ScriptConfig struct {
	// Timeout bounds a single script run. Zero disables it.
	Timeout Duration `toml:"timeout" yaml:"timeout" env:"TIMEOUT"`
	// Debounce delays re-runs in watch mode.
	Debounce Duration `toml:"debounce" yaml:"debounce" env:"DEBOUNCE"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		Engine: EngineConfig{
			Separator: "p",
		},
		Output: OutputConfig{
			Markers: true,
		},
		Script: ScriptConfig{
			Timeout:  Duration(30 * time.Second),
			Debounce: Duration(200 * time.Millisecond),
		},
	}
}

var (
	validLevels     = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validFormats    = map[string]bool{"text": true, "json": true}
	validSeparators = map[string]bool{"p": true, "div": true}
)

// Validate checks every setting and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrValidationFailed}, args...)...))
	}

	if !validLevels[strings.ToLower(c.Log.Level)] {
		invalid("log.level %q", c.Log.Level)
	}
	if !validFormats[strings.ToLower(c.Log.Format)] {
		invalid("log.format %q", c.Log.Format)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		invalid("log rotation limits must not be negative")
	}
	if !validSeparators[strings.ToLower(c.Engine.Separator)] {
		invalid("engine.separator %q", c.Engine.Separator)
	}
	if c.Script.Timeout < 0 || c.Script.Debounce < 0 {
		invalid("script durations must not be negative")
	}
	return errors.Join(errs...)
}

// Duration is a time.Duration written as a string such as "250ms".
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String implements fmt.Stringer.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}
