package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	config := DefaultConfig()

	if err := config.Validate(); err != nil {
		t.Errorf("default configuration must validate: %v", err)
	}
}

func TestConfig_ValidateFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port too low", func(c *Config) { c.API.Port = 80 }},
		{"missing root dir", func(c *Config) { c.Logger.RootDir = "" }},
		{"bad console level", func(c *Config) { c.Logger.ConsoleLevel = "verbose" }},
		{"storage without path", func(c *Config) {
			c.Storage.Enabled = true
			c.Storage.Path = ""
		}},
		{"search without index path", func(c *Config) {
			c.Search.Enabled = true
			c.Search.IndexPath = ""
		}},
		{"tls without cert", func(c *Config) {
			c.API.TLS.Enabled = true
			c.API.TLS.CertFile = ""
		}},
		{"retention cleanup too short", func(c *Config) { c.Retention.CleanupInterval = time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)

			if err := config.Validate(); err == nil {
				t.Error("expected validation to fail")
			}
		})
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "errorlog.yaml")

	yamlContent := `
logger:
  root_dir: /var/log/myapp
  console_level: warn
  recent_count: 25
  snapshot_tail: 100
storage:
  enabled: true
  path: /var/log/myapp/errors.db
api:
  enabled: true
  port: 9000
  requests_per_minute: 120
  burst_size: 20
retention:
  default_days: 60
  cleanup_interval: 2h
`
	if err := os.WriteFile(path, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("ERRORLOG_CONFIG", path)
	t.Setenv("ERRORLOG_ROOT", "")
	t.Setenv("ERRORLOG_DB_PATH", "")

	config, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if config.Logger.RootDir != "/var/log/myapp" {
		t.Errorf("unexpected root dir: %s", config.Logger.RootDir)
	}
	if config.Logger.ConsoleLevel != "warn" {
		t.Errorf("unexpected console level: %s", config.Logger.ConsoleLevel)
	}
	if !config.Storage.Enabled || config.Storage.Path != "/var/log/myapp/errors.db" {
		t.Errorf("unexpected storage config: %+v", config.Storage)
	}
	if config.API.Port != 9000 {
		t.Errorf("unexpected api port: %d", config.API.Port)
	}
	if config.Retention.DefaultDays != 60 {
		t.Errorf("unexpected retention days: %d", config.Retention.DefaultDays)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("ERRORLOG_CONFIG", "")
	t.Setenv("HOME", dir)
	t.Setenv("ERRORLOG_ROOT", dir)
	t.Setenv("ERRORLOG_CONSOLE_LEVEL", "error")
	t.Setenv("ERRORLOG_API_PORT", "9100")
	t.Setenv("ERRORLOG_DB_PATH", filepath.Join(dir, "errors.db"))
	t.Setenv("ERRORLOG_SEARCH_INDEX", "")

	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	defer os.Chdir(wd)

	config, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if config.Logger.RootDir != dir {
		t.Errorf("ERRORLOG_ROOT not applied: %s", config.Logger.RootDir)
	}
	if config.Logger.ConsoleLevel != "error" {
		t.Errorf("ERRORLOG_CONSOLE_LEVEL not applied: %s", config.Logger.ConsoleLevel)
	}
	if config.API.Port != 9100 {
		t.Errorf("ERRORLOG_API_PORT not applied: %d", config.API.Port)
	}
	if !config.Storage.Enabled {
		t.Error("ERRORLOG_DB_PATH must enable storage")
	}
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	config := DefaultConfig()
	config.Logger.RecentCount = 42

	if err := config.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loaded := DefaultConfig()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile failed: %v", err)
	}

	if loaded.Logger.RecentCount != 42 {
		t.Errorf("expected recent_count 42, got %d", loaded.Logger.RecentCount)
	}
}
