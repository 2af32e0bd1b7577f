package config

import (
	"os"
	"time"

	"github.com/Tomasito665/mtv-rhythm-generator/meter"
	"github.com/Tomasito665/mtv-rhythm-generator/space"
	"github.com/Tomasito665/mtv-rhythm-generator/unit"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config represents options that configure the global behavior of the program
type Config struct {
	// The meter the first space is built for, e.g. "6/8"
	TimeSignature string `yaml:"time_signature"`

	// Step resolution, by name ("eighth") or fraction ("1/8")
	StepUnit string `yaml:"step_unit"`

	// Spaces with more steps than this are refused, the fill grows with 2^steps
	MaxDimensions int `yaml:"max_dimensions"`

	// Standard deviation of the distance drawn by random queries
	DistanceSD float64 `yaml:"distance_sd"`

	// Seed for random queries, 0 picks one at startup
	Seed uint64 `yaml:"seed"`

	// Minimum time between two progress reports while filling
	ProgressInterval Duration `yaml:"progress_interval"`

	LogLevel string `yaml:"log_level"`

	OSC OSCConfig `yaml:"osc"`

	// Named meter and step unit combinations
	Presets map[string]Preset `yaml:"presets"`
}

// OSCConfig configures the OSC query endpoint.
type OSCConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
	ReplyAddr  string `yaml:"reply_addr"`
}

// Duration is a time.Duration written as "50ms" in config files.
type Duration time.Duration

func (d Duration) Duration() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(ErrInvalidConfig, "line %d: bad duration %q", node.Line, s)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Create a new Config object with reasonable defaults for real usage
func NewConfig() (Config, error) {
	return Config{
		TimeSignature:    meter.Default().String(),
		StepUnit:         unit.Eighth.Name(),
		MaxDimensions:    space.DefaultMaxDimensions,
		DistanceSD:       0.1,
		ProgressInterval: Duration(50 * time.Millisecond),
		LogLevel:         logrus.InfoLevel.String(),
		OSC: OSCConfig{
			ListenAddr: "127.0.0.1:8765",
			ReplyAddr:  "127.0.0.1:8766",
		},
		Presets: initializeMeterPresets(),
	}, nil
}

// Load reads a YAML config file on top of the defaults. Presets in the file are added to the
// built-in ones.
func Load(path string) (Config, error) {
	cfg, err := NewConfig()
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config %s", path)
	}

	builtin := cfg.Presets
	cfg.Presets = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(ErrInvalidConfig, "parsing %s: %v", path, err)
	}
	for name, preset := range cfg.Presets {
		builtin[name] = preset
	}
	cfg.Presets = builtin

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every option, wrapping ErrInvalidConfig on failure.
func (c Config) Validate() error {
	if _, _, err := c.Meter(); err != nil {
		return err
	}

	if c.MaxDimensions < 1 || c.MaxDimensions > space.HardMaxDimensions {
		return errors.Wrapf(ErrInvalidConfig, "max_dimensions %d outside [1, %d]", c.MaxDimensions, space.HardMaxDimensions)
	}
	if c.DistanceSD < 0 {
		return errors.Wrapf(ErrInvalidConfig, "distance_sd %v is negative", c.DistanceSD)
	}
	if c.ProgressInterval < 0 {
		return errors.Wrapf(ErrInvalidConfig, "progress_interval %s is negative", c.ProgressInterval.Duration())
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "log_level %q", c.LogLevel)
	}
	if c.OSC.Enabled && (c.OSC.ListenAddr == "" || c.OSC.ReplyAddr == "") {
		return errors.Wrap(ErrInvalidConfig, "osc needs both listen_addr and reply_addr")
	}

	for name, preset := range c.Presets {
		if _, _, err := preset.Meter(); err != nil {
			return errors.Wrapf(err, "preset %q", name)
		}
	}
	return nil
}

// Meter resolves the configured time signature and step unit.
func (c Config) Meter() (meter.TimeSignature, unit.Unit, error) {
	return resolveMeter(c.TimeSignature, c.StepUnit)
}

// ApplyPreset replaces the time signature and step unit with the ones of a named preset.
func (c *Config) ApplyPreset(name string) error {
	preset, ok := c.Presets[name]
	if !ok {
		return errors.Wrapf(ErrInvalidConfig, "unknown preset %q", name)
	}
	c.TimeSignature = preset.TimeSignature
	c.StepUnit = preset.StepUnit
	return nil
}

func resolveMeter(ts, stepUnit string) (meter.TimeSignature, unit.Unit, error) {
	parsed, err := meter.Parse(ts)
	if err != nil {
		return meter.TimeSignature{}, unit.Unit{}, errors.Wrapf(ErrInvalidConfig, "time_signature: %v", err)
	}

	u, ok := unit.Parse(stepUnit)
	if !ok {
		return meter.TimeSignature{}, unit.Unit{}, errors.Wrapf(ErrInvalidConfig, "unknown step_unit %q", stepUnit)
	}

	if err := parsed.CheckStepUnit(u); err != nil {
		return meter.TimeSignature{}, unit.Unit{}, errors.Wrapf(ErrInvalidConfig, "%v", err)
	}
	return parsed, u, nil
}
