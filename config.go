package huffbit

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/larsko/huffbit/engine"
)

// Config carries the pipeline settings shared by compression and
// decompression. The zero value is not usable; start from DefaultConfig.
type Config struct {
	// Key is the obfuscation key applied byte-wise to the bundle.
	// It must match between the compressing and decompressing run.
	Key byte `yaml:"key"`

	// CounterWidth is the width in bits of a frequency counter (1-32).
	CounterWidth int `yaml:"counter_width"`

	// AckTimeout bounds the wait for an engine acknowledge. Accepts
	// duration strings such as "100ms" in YAML.
	AckTimeout Duration `yaml:"ack_timeout"`

	// Sentinel selects explicit segment framing for written bundles.
	// Reading auto-detects either framing.
	Sentinel bool `yaml:"sentinel"`

	// KeepArtifacts persists the intermediate stage outputs (frequency
	// report, fixed-width table helpers) next to the main output.
	KeepArtifacts bool `yaml:"keep_artifacts"`

	// Logger is used for structured progress logging. If nil,
	// slog.Default() is used.
	Logger *slog.Logger `yaml:"-"`
}

// Duration wraps time.Duration for YAML duration-string decoding.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("failed to parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// DefaultConfig returns the reference settings: key 0x5A, 24-bit counters,
// a 100ms acknowledge budget, and explicit sentinel framing.
func DefaultConfig() Config {
	return Config{
		Key:          DefaultKey,
		CounterWidth: DefaultCounterWidth,
		AckTimeout:   Duration(engine.DefaultAckTimeout),
		Sentinel:     true,
	}
}

// LoadConfig loads settings from a YAML file, filling unset fields with the
// defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.CounterWidth < 1 || c.CounterWidth > 32 {
		return fmt.Errorf("counter_width %d outside 1-32", c.CounterWidth)
	}
	if c.AckTimeout <= 0 {
		return fmt.Errorf("ack_timeout must be positive")
	}
	return nil
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
