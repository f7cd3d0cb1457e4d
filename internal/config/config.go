package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultEnergy      = 0.0253e-6 // MeV, thermal neutron
	DefaultTemperature = 293.6     // K
	DefaultEvents      = 1000
	DefaultWorkers     = 4
	DefaultVerbose     = 1
	DefaultMaterial    = "gdls"
)

// ErrUnknownKey is returned by ModeConfig.Set for an unrecognised setting.
var ErrUnknownKey = errors.New("config: unknown setting")

var validate = validator.New()

// ModeConfig is the capture model configuration. It is mutated only through
// explicit configuration calls and read through Snapshot during reactions.
type ModeConfig struct {
	CaptureMode CaptureMode `yaml:"capture_mode" validate:"gte=0,lte=3"`
	CascadeMode CascadeMode `yaml:"cascade_mode" validate:"gte=0,lte=3"`
	DataFile155 string      `yaml:"data_file_155,omitempty"`
	DataFile157 string      `yaml:"data_file_157,omitempty"`
	Verbose     int         `yaml:"verbose" validate:"gte=0,lte=3"`
}

// DefaultModeConfig returns natural capture with the full cascade.
func DefaultModeConfig() ModeConfig {
	return ModeConfig{
		CaptureMode: CaptureNatural,
		CascadeMode: CascadeAll,
		Verbose:     DefaultVerbose,
	}
}

// Snapshot returns a normalised copy in which unset modes take their
// defaults.
func (m ModeConfig) Snapshot() ModeConfig {
	if !m.CaptureMode.Valid() {
		m.CaptureMode = CaptureNatural
	}
	if !m.CascadeMode.Valid() {
		m.CascadeMode = CascadeAll
	}
	return m
}

// Set applies one key/value setting, as issued from the command interface.
// Keys: verbose, captureMode, cascadeMode, dataFile155, dataFile157.
func (m *ModeConfig) Set(key, value string) error {
	switch strings.ToLower(key) {
	case "verbose":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 || n > 3 {
			return fmt.Errorf("config: verbose must be 0-3, got %q", value)
		}
		m.Verbose = n
	case "capturemode", "capture_mode":
		mode, err := ParseCaptureMode(value)
		if err != nil {
			return err
		}
		m.CaptureMode = mode
	case "cascademode", "cascade_mode":
		mode, err := ParseCascadeMode(value)
		if err != nil {
			return err
		}
		m.CascadeMode = mode
	case "datafile155", "data_file_155":
		m.DataFile155 = value
	case "datafile157", "data_file_157":
		m.DataFile157 = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return nil
}

// LogLevel maps the verbosity onto a slog level.
func (m ModeConfig) LogLevel() slog.Level {
	switch {
	case m.Verbose <= 0:
		return slog.LevelWarn
	case m.Verbose == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// Config is the run configuration loaded from YAML.
type Config struct {
	Material    string     `yaml:"material" validate:"required"`
	Energy      float64    `yaml:"energy_mev" validate:"gt=0,lte=20"`
	Direction   [3]float64 `yaml:"direction"`
	Temperature float64    `yaml:"temperature_k" validate:"gte=0"`
	Events      int        `yaml:"events" validate:"gt=0"`
	Workers     int        `yaml:"workers" validate:"gt=0,lte=1024"`
	Seed        int64      `yaml:"seed"`
	ScaleGammas bool       `yaml:"scale_gammas"`
	Mode        ModeConfig `yaml:"mode"`
}

func DefaultConfig() *Config {
	return &Config{
		Material:    DefaultMaterial,
		Energy:      DefaultEnergy,
		Direction:   [3]float64{0, 0, 1},
		Temperature: DefaultTemperature,
		Events:      DefaultEvents,
		Workers:     DefaultWorkers,
		ScaleGammas: true,
		Mode:        DefaultModeConfig(),
	}
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Direction == [3]float64{} {
		return fmt.Errorf("config: direction must be non-zero")
	}
	return nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
