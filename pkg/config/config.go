// Package config implements BigLisp configuration loading.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/thomasrohde/biglisp/go/pkg/evaluator"
)

const (
	// ProjectFile is looked up in the working directory.
	ProjectFile = ".biglisp.toml"
	// UserFile is looked up under the home directory.
	UserFile = ".biglisp/config.toml"
)

// Config holds CLI settings and evaluation limits.
type Config struct {
	LogLevel      string `toml:"log_level"`
	LogFile       string `toml:"log_file,omitempty"`
	MaxDepth      int    `toml:"max_depth"`
	MaxIterations int64  `toml:"max_iterations"`
	TimeMs        int64  `toml:"time_ms"`
	HistoryFile   string `toml:"history_file,omitempty"`
	Pretty        bool   `toml:"pretty"`

	// Source is the file the configuration was read from; empty for defaults.
	Source string `toml:"-"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		LogLevel: "none",
		MaxDepth: evaluator.DefaultMaxDepth,
		Pretty:   true,
	}
}

// Budget converts the limits into an evaluator budget.
func (c *Config) Budget() evaluator.Budget {
	return evaluator.Budget{
		MaxDepth:      c.MaxDepth,
		MaxIterations: c.MaxIterations,
		TimeMs:        c.TimeMs,
	}
}

// HistoryPath returns the REPL history file, defaulting to ~/.biglisp/history.
func (c *Config) HistoryPath() string {
	if c.HistoryFile != "" {
		return expandHome(c.HistoryFile)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".biglisp", "history")
}

// Load reads configuration from project and user files.
// Precedence: project (.biglisp.toml) → user (~/.biglisp/config.toml) → defaults.
// A missing file falls through to the next source; a malformed one is an error.
func Load(projectDir string) (*Config, error) {
	// Try project config
	projectPath := filepath.Join(projectDir, ProjectFile)
	cfg, err := LoadFile(projectPath)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	// Try user config
	if homeDir, err := os.UserHomeDir(); err == nil {
		cfg, err := LoadFile(filepath.Join(homeDir, UserFile))
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return Default(), nil
}

// LoadFile reads one TOML file over the defaults. Unknown keys are rejected.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Source = path
	return cfg, nil
}

// Validate rejects negative limits and unknown log levels.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "trace", "debug", "info", "warn", "error", "none":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if c.MaxDepth < 0 || c.MaxIterations < 0 || c.TimeMs < 0 {
		return errors.New("limits must not be negative")
	}
	return nil
}

// Encode writes the configuration as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
