package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/davidruble/fuzle/internal/logging"
	"github.com/davidruble/fuzle/internal/probe"
	"github.com/davidruble/fuzle/pkg/fuzle"
)

// Output formats of the duration command
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Config holds the CLI settings that can be stored in a YAML file
type Config struct {
	Mode       string   `yaml:"mode"`
	Workers    int      `yaml:"workers"`
	Extensions []string `yaml:"extensions"`
	ErrorsDir  string   `yaml:"errors_dir"` // failed inputs are copied here when set
	Output     string   `yaml:"output"`
	LogLevel   string   `yaml:"log_level"`
	LogFormat  string   `yaml:"log_format"`
}

// Default returns the settings used when no config file is given
func Default() *Config {
	return &Config{
		Mode:       fuzle.ModeAuto.String(),
		Workers:    runtime.NumCPU(),
		Extensions: append([]string(nil), probe.Extensions...),
		Output:     OutputText,
		LogLevel:   logging.LevelInfo,
		LogFormat:  logging.FormatText,
	}
}

// Load reads the YAML file at path over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// an empty file keeps the defaults
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("error parsing config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that every setting holds a supported value
func (c *Config) Validate() error {
	if _, err := fuzle.ParseMode(c.Mode); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if len(c.Extensions) == 0 {
		return errors.New("at least one extension is required")
	}
	switch c.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("unknown output %q (expected text, json or yaml)", c.Output)
	}
	switch c.LogLevel {
	case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError:
	default:
		return fmt.Errorf("unknown log level %q (expected debug, info, warn or error)", c.LogLevel)
	}
	switch c.LogFormat {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("unknown log format %q (expected text or json)", c.LogFormat)
	}
	return nil
}

// ParsedMode returns Mode as a fuzle.Mode. Validate must have succeeded.
func (c *Config) ParsedMode() fuzle.Mode {
	mode, _ := fuzle.ParseMode(c.Mode)
	return mode
}

// LogOpts returns the logging options of the config
func (c *Config) LogOpts() *logging.Opts {
	return &logging.Opts{
		Level:  c.LogLevel,
		Format: c.LogFormat,
	}
}
