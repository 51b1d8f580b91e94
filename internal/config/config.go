// Package config loads the lox.yaml settings file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "lox.yaml"

// Config holds interpreter and REPL settings.
type Config struct {
	MaxCallDepth int    `yaml:"max_call_depth"`
	LogLevel     string `yaml:"log_level"`
	REPL         REPL   `yaml:"repl"`

	// Path is the file the config was read from, empty for defaults.
	Path string `yaml:"-"`
}

// REPL configures the interactive prompt.
type REPL struct {
	HistoryFile string `yaml:"history_file"`
	Color       bool   `yaml:"color"`
	Prompt      string `yaml:"prompt"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		MaxCallDepth: 2048,
		LogLevel:     "warn",
		REPL: REPL{
			HistoryFile: "~/.lox_history",
			Color:       true,
			Prompt:      "lox> ",
		},
	}
}

// ValidationError aggregates config validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Load reads the config at path. An empty path falls back to lox.yaml in
// the working directory, and a missing lox.yaml yields the defaults. An
// explicit path that does not exist is an error.
func Load(path string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	file, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			logger.Debug("no config file, using defaults", "path", path)
			return Default(), nil
		}
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	cfg, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		cfg.Path = abs
	} else {
		cfg.Path = path
	}
	logger.Debug("config loaded", "path", cfg.Path)
	return cfg, nil
}

// Decode parses YAML on top of the defaults and validates the result.
// Unknown keys are rejected.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs ValidationError
	if c.MaxCallDepth <= 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("max_call_depth must be positive, got %d", c.MaxCallDepth))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs.Issues = append(errs.Issues, err.Error())
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", name)
	}
}

// HistoryPath expands a leading ~ in the history file. It returns "" when
// history is disabled.
func (r REPL) HistoryPath() string {
	p := r.HistoryFile
	if p == "" {
		return ""
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		p = filepath.Join(home, strings.TrimPrefix(p[1:], "/"))
	}
	return p
}
