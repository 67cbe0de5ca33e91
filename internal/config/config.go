package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/san-kum/tearsim/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSeed     = 1
	DefaultFPS      = 60
	DefaultDataDir  = "runs"
	DefaultScenario = "poke"
)

// Environment variables read by ApplyEnv.
const (
	EnvDataDir = "TEARSIM_DATA"
	EnvSeed    = "TEARSIM_SEED"
	EnvPreset  = "TEARSIM_PRESET"
	EnvFPS     = "TEARSIM_FPS"
)

type Config struct {
	Seed     int64         `yaml:"seed"`
	FPS      int           `yaml:"fps"`
	DataDir  string        `yaml:"data_dir"`
	Scenario string        `yaml:"scenario"`
	Preset   string        `yaml:"preset,omitempty"`
	Params   dynamo.Params `yaml:"params"`
}

func DefaultConfig() *Config {
	return &Config{
		Seed:     DefaultSeed,
		FPS:      DefaultFPS,
		DataDir:  DefaultDataDir,
		Scenario: DefaultScenario,
		Params:   dynamo.DefaultParams(),
	}
}

// Load reads a YAML config on top of the defaults. A named preset is applied
// before the file's own params so explicit values win.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var head struct {
		Preset string `yaml:"preset"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if head.Preset != "" {
		if err := ApplyPreset(&cfg.Params, head.Preset); err != nil {
			return nil, err
		}
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

func (c *Config) Validate() error {
	if c.FPS <= 0 {
		return &dynamo.ConfigError{Field: "fps", Value: c.FPS, Reason: "must be positive"}
	}
	return c.Params.Validate()
}

// FrameMs is the wall time budget of one rendered frame.
func (c *Config) FrameMs() float64 {
	return 1000 / float64(c.FPS)
}

// LoadEnv loads .env style files into the process environment. With no
// arguments it reads ./.env, and a missing file is not an error.
func LoadEnv(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// ApplyEnv overrides cfg from TEARSIM_* variables.
func ApplyEnv(cfg *Config) error {
	cfg.DataDir = getEnv(EnvDataDir, cfg.DataDir)

	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return &dynamo.ConfigError{Field: EnvSeed, Value: v, Reason: "not an integer"}
		}
		cfg.Seed = seed
	}

	if v := os.Getenv(EnvFPS); v != "" {
		fps, err := strconv.Atoi(v)
		if err != nil || fps <= 0 {
			return &dynamo.ConfigError{Field: EnvFPS, Value: v, Reason: "not a positive integer"}
		}
		cfg.FPS = fps
	}

	if v := os.Getenv(EnvPreset); v != "" {
		if err := ApplyPreset(&cfg.Params, v); err != nil {
			return err
		}
		cfg.Preset = v
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
