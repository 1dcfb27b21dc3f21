package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	tlsconf "github.com/kerlexov/errorlog/pkg/tls"
)

// LoggerConfig contains error logger configuration
type LoggerConfig struct {
	RootDir      string `yaml:"root_dir" validate:"required"`
	ConsoleLevel string `yaml:"console_level" validate:"omitempty,oneof=debug info warn error"`
	RecentCount  int    `yaml:"recent_count" validate:"min=1,max=100"`
	SnapshotTail int    `yaml:"snapshot_tail" validate:"min=1,max=1000"`
}

// StorageConfig contains the optional queryable error index configuration
type StorageConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// SearchConfig contains full-text search indexing configuration
type SearchConfig struct {
	Enabled   bool   `yaml:"enabled"`
	IndexPath string `yaml:"index_path"`
}

// RetentionConfig contains error record retention policies
type RetentionConfig struct {
	DefaultDays     int            `yaml:"default_days" validate:"min=1,max=3650"`
	BySeverity      map[string]int `yaml:"by_severity"`
	CleanupInterval time.Duration  `yaml:"cleanup_interval" validate:"min=1m,max=24h"`
}

// APIConfig contains the read-only inspection API configuration
type APIConfig struct {
	Enabled           bool           `yaml:"enabled"`
	Port              int            `yaml:"port" validate:"required,min=1024,max=65535"`
	RequestsPerMinute int            `yaml:"requests_per_minute" validate:"min=1,max=100000"`
	BurstSize         int            `yaml:"burst_size" validate:"min=1,max=10000"`
	AuthTokensFile    string         `yaml:"auth_tokens_file"`
	TLS               tlsconf.Config `yaml:"tls"`
}

// Config represents the complete application configuration
type Config struct {
	Logger    LoggerConfig    `yaml:"logger" validate:"required"`
	Storage   StorageConfig   `yaml:"storage"`
	Search    SearchConfig    `yaml:"search"`
	Retention RetentionConfig `yaml:"retention" validate:"required"`
	API       APIConfig       `yaml:"api" validate:"required"`
}

// Validate validates the configuration using struct tags
func (c *Config) Validate() error {
	validate := validator.New()

	if c.Storage.Enabled && c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required when storage is enabled")
	}
	if c.Search.Enabled && c.Search.IndexPath == "" {
		return fmt.Errorf("search.index_path is required when search is enabled")
	}
	if err := c.API.TLS.Validate(); err != nil {
		return fmt.Errorf("invalid api.tls configuration: %w", err)
	}

	return validate.Struct(c)
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Logger: LoggerConfig{
			RootDir:      ".",
			ConsoleLevel: "info",
			RecentCount:  10,
			SnapshotTail: 50,
		},
		Storage: StorageConfig{
			Enabled: false,
			Path:    "./errors/errors.db",
		},
		Search: SearchConfig{
			Enabled:   false,
			IndexPath: "./errors/search.bleve",
		},
		Retention: RetentionConfig{
			DefaultDays: 30,
			BySeverity: map[string]int{
				"info":     7,
				"warning":  30,
				"error":    90,
				"critical": 365,
			},
			CleanupInterval: time.Hour,
		},
		API: APIConfig{
			Enabled:           false,
			Port:              8085,
			RequestsPerMinute: 600,
			BurstSize:         60,
			TLS:               *tlsconf.DefaultConfig(),
		},
	}
}

// Load loads configuration from file or environment variables
func Load() (*Config, error) {
	config := DefaultConfig()

	configPath := os.Getenv("ERRORLOG_CONFIG")
	if configPath == "" {
		possiblePaths := []string{
			"./errorlog.yaml",
			"./errorlog.yml",
			"/etc/errorlog/config.yaml",
			filepath.Join(os.Getenv("HOME"), ".errorlog", "config.yaml"),
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configPath = path
				break
			}
		}
	}

	if configPath != "" {
		if err := loadFromFile(config, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", configPath, err)
		}
	}

	loadFromEnv(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, config)
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(config *Config) {
	if root := os.Getenv("ERRORLOG_ROOT"); root != "" {
		config.Logger.RootDir = root
	}

	if level := os.Getenv("ERRORLOG_CONSOLE_LEVEL"); level != "" {
		config.Logger.ConsoleLevel = level
	}

	if port := os.Getenv("ERRORLOG_API_PORT"); port != "" {
		if p, err := parsePort(port); err == nil {
			config.API.Port = p
		}
	}

	if dbPath := os.Getenv("ERRORLOG_DB_PATH"); dbPath != "" {
		config.Storage.Enabled = true
		config.Storage.Path = dbPath
	}

	if indexPath := os.Getenv("ERRORLOG_SEARCH_INDEX"); indexPath != "" {
		config.Search.Enabled = true
		config.Search.IndexPath = indexPath
	}
}

// parsePort parses a port string to int with validation
func parsePort(portStr string) (int, error) {
	var port int
	if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
		return 0, err
	}
	if port < 1024 || port > 65535 {
		return 0, fmt.Errorf("port must be between 1024 and 65535")
	}
	return port, nil
}

// SaveToFile saves the configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
