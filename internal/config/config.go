package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "idlsdk.yaml"

// Defaults match the layout produced by `anchor build`.
const (
	DefaultInput     = "./target/idl/clubhouse.json"
	DefaultOutputDir = "./target/idl-sdk"
	DefaultIndent    = 2
)

// Environment variables that override the config file.
const (
	EnvInput     = "IDLSDK_INPUT"
	EnvOutputDir = "IDLSDK_OUTPUT_DIR"
	EnvDB        = "IDLSDK_DB"
)

type Config struct {
	// Input is the IDL JSON file to transform.
	Input string `yaml:"input"`

	// OutputDir is created if missing.
	OutputDir string `yaml:"output_dir"`

	// OutputName is the file name written inside OutputDir.
	// Empty means the base name of Input.
	OutputName string `yaml:"output_name,omitempty"`

	// Indent is the number of spaces per nesting level in the output.
	Indent int `yaml:"indent"`

	// DB is an optional SQLite path for run history.
	DB string `yaml:"db,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Input:     DefaultInput,
		OutputDir: DefaultOutputDir,
		Indent:    DefaultIndent,
	}
}

// Load reads the YAML config at path on top of the defaults, then applies
// .env and environment overrides. A missing file is only an error when
// required is true.
func Load(path string, required bool) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !required:
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// 3. Override with Environment Variables if present
	if v := os.Getenv(EnvInput); v != "" {
		cfg.Input = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv(EnvDB); v != "" {
		cfg.DB = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.Input == "" {
		return errors.New("config: input must not be empty")
	}
	if c.OutputDir == "" {
		return errors.New("config: output_dir must not be empty")
	}
	if c.Indent < 0 || c.Indent > 8 {
		return fmt.Errorf("config: indent must be between 0 and 8, got %d", c.Indent)
	}
	if c.OutputName != "" && filepath.Base(c.OutputName) != c.OutputName {
		return fmt.Errorf("config: output_name must be a file name, got %q", c.OutputName)
	}
	return nil
}

// OutputPath is the file the transformed document is written to.
func (c *Config) OutputPath() string {
	name := c.OutputName
	if name == "" {
		name = filepath.Base(c.Input)
	}
	return filepath.Join(c.OutputDir, name)
}
