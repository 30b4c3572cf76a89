package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TUNNELDASH_HOME", dir)
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(wd)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Polling.HealthInterval != 10*time.Second {
		t.Errorf("HealthInterval = %v, want 10s", cfg.Polling.HealthInterval)
	}
	if cfg.Polling.StatusInterval != 120*time.Second {
		t.Errorf("StatusInterval = %v, want 120s", cfg.Polling.StatusInterval)
	}
	if cfg.Polling.ProbeDelay != time.Second {
		t.Errorf("ProbeDelay = %v, want 1s", cfg.Polling.ProbeDelay)
	}
	if cfg.Notifications.TTL != 3*time.Second {
		t.Errorf("TTL = %v, want 3s", cfg.Notifications.TTL)
	}
	if cfg.Backend.BaseURL != "http://127.0.0.1:8000" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Server.Address != ":8080" {
		t.Errorf("Address = %q", cfg.Server.Address)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  address: "127.0.0.1:9090"
backend:
  base_url: "http://orchestrator:8000"
  timeout: 2s
polling:
  health_interval: 5s
  status_interval: 1m
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Address != "127.0.0.1:9090" {
		t.Errorf("Address = %q", cfg.Server.Address)
	}
	if cfg.Backend.Timeout != 2*time.Second {
		t.Errorf("Timeout = %v, want 2s", cfg.Backend.Timeout)
	}
	if cfg.Polling.HealthInterval != 5*time.Second {
		t.Errorf("HealthInterval = %v, want 5s", cfg.Polling.HealthInterval)
	}
	if cfg.Polling.StatusInterval != time.Minute {
		t.Errorf("StatusInterval = %v, want 1m", cfg.Polling.StatusInterval)
	}
	// untouched keys keep their defaults
	if cfg.Polling.ProbeDelay != time.Second {
		t.Errorf("ProbeDelay = %v, want 1s", cfg.Polling.ProbeDelay)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: info\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TUNNELDASH_BACKEND_BASE_URL", "http://env-backend:8000")
	t.Setenv("TUNNELDASH_POLLING_HEALTH_INTERVAL", "3s")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Backend.BaseURL != "http://env-backend:8000" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Polling.HealthInterval != 3*time.Second {
		t.Errorf("HealthInterval = %v, want 3s", cfg.Polling.HealthInterval)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *AppConfig)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *AppConfig) {}},
		{name: "zero health interval", mutate: func(c *AppConfig) { c.Polling.HealthInterval = 0 }, wantErr: true},
		{name: "zero status interval", mutate: func(c *AppConfig) { c.Polling.StatusInterval = 0 }, wantErr: true},
		{name: "negative probe delay", mutate: func(c *AppConfig) { c.Polling.ProbeDelay = -time.Second }, wantErr: true},
		{name: "zero ttl", mutate: func(c *AppConfig) { c.Notifications.TTL = 0 }, wantErr: true},
		{name: "bad network", mutate: func(c *AppConfig) { c.Backend.Network = "udp" }, wantErr: true},
		{name: "bad gin mode", mutate: func(c *AppConfig) { c.Server.Mode = "prod" }, wantErr: true},
		{name: "unix fills socket path", mutate: func(c *AppConfig) { c.Backend.Network = "unix" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := AppConfig{
				Backend:       BackendConfig{Network: "tcp"},
				Polling:       PollingConfig{HealthInterval: time.Second, StatusInterval: time.Minute, ProbeDelay: time.Second},
				Notifications: NotificationConfig{TTL: time.Second},
			}
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if cfg.Backend.Network == "unix" && cfg.Backend.Address == "" {
				t.Error("unix network should get a default socket address")
			}
		})
	}
}
