package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sergev/minion/lang"
)

// Config holds the optional settings read from ~/.minion.yaml.
type Config struct {
	Prompt             string `yaml:"prompt"`
	ContinuationPrompt string `yaml:"continuation_prompt"`
	HistoryFile        string `yaml:"history_file"`
	MaxDepth           int    `yaml:"max_depth"`
	LogLevel           string `yaml:"log_level"`
}

func defaultConfig() Config {
	return Config{
		Prompt:             "minion> ",
		ContinuationPrompt: "....... ",
		HistoryFile:        "~/.minion_history",
		MaxDepth:           lang.DefaultMaxDepth,
		LogLevel:           "info",
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".minion.yaml")
}

// loadConfig decodes path over the defaults. A missing file is only an
// error when the user named it explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.MaxDepth < 0 {
		return cfg, fmt.Errorf("%s: max_depth must not be negative", path)
	}
	if _, err := cfg.level(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

// historyPath expands a leading ~ in the configured history file.
func (c Config) historyPath() string {
	path := c.HistoryFile
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			return ""
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}
