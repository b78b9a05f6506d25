package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the application configuration
type Config struct {
	Tracker TrackerConfig `json:"tracker"`
	FitZone FitZoneConfig `json:"fitzone"`
	Runner  RunnerConfig  `json:"runner"`
}

// TrackerConfig holds the tracker platform's OAuth client credentials
type TrackerConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// FitZoneConfig holds the booking site settings
type FitZoneConfig struct {
	BaseURL      string `json:"base_url"`
	WebDriverURL string `json:"webdriver_url"`
	Headless     *bool  `json:"headless,omitempty"`
}

// RunnerConfig holds batch execution settings
type RunnerConfig struct {
	WindowHours int `json:"window_hours"`
	Parallel    int `json:"parallel"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	headless := true
	return Config{
		FitZone: FitZoneConfig{
			BaseURL:      "https://booking.fitzone.example",
			WebDriverURL: "http://localhost:9515",
			Headless:     &headless,
		},
		Runner: RunnerConfig{
			WindowHours: 168,
			Parallel:    1,
		},
	}
}

// Load reads the configuration from ~/.fitagent/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply defaults for missing values
	defaults := DefaultConfig()
	if cfg.FitZone.BaseURL == "" {
		cfg.FitZone.BaseURL = defaults.FitZone.BaseURL
	}
	if cfg.FitZone.WebDriverURL == "" {
		cfg.FitZone.WebDriverURL = defaults.FitZone.WebDriverURL
	}
	if cfg.FitZone.Headless == nil {
		cfg.FitZone.Headless = defaults.FitZone.Headless
	}
	if cfg.Runner.WindowHours == 0 {
		cfg.Runner.WindowHours = defaults.Runner.WindowHours
	}
	if cfg.Runner.Parallel == 0 {
		cfg.Runner.Parallel = defaults.Runner.Parallel
	}

	return &cfg, nil
}

// Save writes the configuration to ~/.fitagent/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Tracker = TrackerConfig{
		ClientID:     "YOUR_CLIENT_ID",
		ClientSecret: "YOUR_CLIENT_SECRET",
	}

	return Save(&example)
}

// Validate checks if the config has required fields
func (c *Config) Validate() error {
	if c.Tracker.ClientID == "" || c.Tracker.ClientID == "YOUR_CLIENT_ID" {
		return errors.New("tracker.client_id is required - get it from your tracker's API settings page")
	}
	if c.Tracker.ClientSecret == "" || c.Tracker.ClientSecret == "YOUR_CLIENT_SECRET" {
		return errors.New("tracker.client_secret is required - get it from your tracker's API settings page")
	}

	if c.Runner.WindowHours < 0 {
		return fmt.Errorf("runner.window_hours must not be negative, got %d", c.Runner.WindowHours)
	}
	if c.Runner.Parallel < 0 {
		return fmt.Errorf("runner.parallel must not be negative, got %d", c.Runner.Parallel)
	}

	return nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".fitagent", "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".fitagent"), nil
}
