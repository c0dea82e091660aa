package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fakeyudi/refhistory/internal/history"
)

// Config holds all configurable refhistory settings.
type Config struct {
	Capacity      *int   `json:"capacity,omitempty"`     // nil = unbounded
	Clone         string `json:"clone"`                  // "none" | "deep"
	BoundFuture   *bool  `json:"bound_future,omitempty"` // nil = true
	DefaultFormat string `json:"default_format"`         // "markdown" | "json" | "html"
	LogLevel      string `json:"log_level"`              // "debug" | "info" | "warn" | "error"
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		Clone:         "none",
		DefaultFormat: "markdown",
		LogLevel:      "warn",
	}
}

// LoadGlobal reads ~/.config/refhistory/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", "refhistory", "config.json")
	return loadFile(path, true)
}

// LoadProject reads .refhistoryconfig in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(".refhistoryconfig", false)
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()
	for _, layer := range []*Config{global, project} {
		if layer == nil {
			continue
		}
		if layer.Capacity != nil {
			n := *layer.Capacity
			result.Capacity = &n
		}
		if layer.Clone != "" {
			result.Clone = layer.Clone
		}
		if layer.BoundFuture != nil {
			b := *layer.BoundFuture
			result.BoundFuture = &b
		}
		if layer.DefaultFormat != "" {
			result.DefaultFormat = layer.DefaultFormat
		}
		if layer.LogLevel != "" {
			result.LogLevel = layer.LogLevel
		}
	}
	return result
}

// HistoryOptions converts the config into controller options. capacity, when
// non-nil, replaces the configured capacity.
func (c Config) HistoryOptions(capacity history.Capacity) ([]history.Option, error) {
	policy, err := history.ParseClonePolicy(c.Clone)
	if err != nil {
		return nil, err
	}
	opts := []history.Option{history.WithClone(policy)}

	switch {
	case capacity != nil:
		opts = append(opts, history.WithCapacity(capacity))
	case c.Capacity != nil:
		opts = append(opts, history.WithCapacity(history.Fixed(*c.Capacity)))
	}
	if c.BoundFuture != nil && !*c.BoundFuture {
		opts = append(opts, history.WithUnboundedFuture())
	}
	return opts, nil
}

// ParseLogLevel maps a level name to a slog.Level. Empty means warn.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelWarn, fmt.Errorf("unknown log level %q", s)
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
