package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	xdgAppName = "prodsync"
	configFile = "config.json"
)

// Config holds the sync engine's settings. Missing fields fall back
// to defaults, so a partial config file is fine.
type Config struct {
	// Calendar is the Google Calendar summary to sync against.
	Calendar string `json:"calendar"`

	// DefaultArea and DefaultWeek fill missing fields on imported
	// candidates.
	DefaultArea string `json:"defaultArea"`
	DefaultWeek string `json:"defaultWeek"`

	// InboundCreateUnmatched controls what inbound sync does with a
	// remote event it cannot resolve to a task: false skips it (the
	// default), true creates a minimal task.
	InboundCreateUnmatched bool `json:"inboundCreateUnmatched"`

	// EventDurationMinutes is the duration of created events when the
	// task carries no explicit end.
	EventDurationMinutes int `json:"eventDurationMinutes"`

	// Workers bounds the per-item parallelism of a sync batch.
	Workers int `json:"workers"`
}

func defaults() *Config {
	return &Config{
		Calendar:             "Production",
		DefaultArea:          "General",
		DefaultWeek:          "W1",
		EventDurationMinutes: 60,
		Workers:              4,
	}
}

func GetConfigPath() (string, error) {
	xdgHome, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(xdgHome, ".config", xdgAppName, configFile), nil
}

func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults(), nil
		}
		return nil, err
	}
	defer f.Close()

	cfg := defaults()
	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Calendar == "" {
		cfg.Calendar = "Production"
	}
	if cfg.EventDurationMinutes <= 0 {
		cfg.EventDurationMinutes = 60
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return cfg, nil
}

func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}
