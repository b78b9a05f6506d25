package config

import (
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.FitZone.BaseURL == "" {
		t.Error("FitZone.BaseURL should have a default")
	}
	if cfg.FitZone.WebDriverURL == "" {
		t.Error("FitZone.WebDriverURL should have a default")
	}
	if cfg.FitZone.Headless == nil || !*cfg.FitZone.Headless {
		t.Error("FitZone.Headless should default to true")
	}
	if cfg.Runner.WindowHours != 168 {
		t.Errorf("Runner.WindowHours = %d, want 168", cfg.Runner.WindowHours)
	}
	if cfg.Runner.Parallel != 1 {
		t.Errorf("Runner.Parallel = %d, want 1", cfg.Runner.Parallel)
	}

	// Tracker credentials should be empty by default
	if cfg.Tracker.ClientID != "" {
		t.Errorf("Tracker.ClientID should be empty, got %q", cfg.Tracker.ClientID)
	}
	if cfg.Tracker.ClientSecret != "" {
		t.Errorf("Tracker.ClientSecret should be empty, got %q", cfg.Tracker.ClientSecret)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := TrackerConfig{ClientID: "12345", ClientSecret: "abc123secret"}

	tests := []struct {
		name        string
		config      Config
		expectError bool
		errContains string
	}{
		{
			name:        "valid config",
			config:      Config{Tracker: valid},
			expectError: false,
		},
		{
			name: "empty client ID",
			config: Config{
				Tracker: TrackerConfig{ClientID: "", ClientSecret: "abc123secret"},
			},
			expectError: true,
			errContains: "client_id",
		},
		{
			name: "placeholder client ID",
			config: Config{
				Tracker: TrackerConfig{ClientID: "YOUR_CLIENT_ID", ClientSecret: "abc123secret"},
			},
			expectError: true,
			errContains: "client_id",
		},
		{
			name: "empty client secret",
			config: Config{
				Tracker: TrackerConfig{ClientID: "12345", ClientSecret: ""},
			},
			expectError: true,
			errContains: "client_secret",
		},
		{
			name: "placeholder client secret",
			config: Config{
				Tracker: TrackerConfig{ClientID: "12345", ClientSecret: "YOUR_CLIENT_SECRET"},
			},
			expectError: true,
			errContains: "client_secret",
		},
		{
			name: "negative window",
			config: Config{
				Tracker: valid,
				Runner:  RunnerConfig{WindowHours: -1},
			},
			expectError: true,
			errContains: "window_hours",
		},
		{
			name: "negative parallel",
			config: Config{
				Tracker: valid,
				Runner:  RunnerConfig{Parallel: -2},
			},
			expectError: true,
			errContains: "parallel",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError {
				if err == nil {
					t.Error("expected error, got nil")
				} else if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}
