package tls

import (
	"crypto/tls"
	"fmt"
	"os"
)

// Config holds the TLS settings for the inspection API listener.
// Disabled by default; deployments usually terminate TLS at a reverse
// proxy in front of the process.
type Config struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	CertFile   string `yaml:"cert_file" json:"cert_file"`
	KeyFile    string `yaml:"key_file" json:"key_file"`
	MinVersion string `yaml:"min_version" json:"min_version"`
}

// DefaultConfig returns the default TLS configuration
func DefaultConfig() *Config {
	return &Config{
		Enabled:    false,
		CertFile:   "./certs/api.crt",
		KeyFile:    "./certs/api.key",
		MinVersion: "TLS1.2",
	}
}

// Build converts the configuration into a tls.Config ready for the
// HTTP server. Returns nil when TLS is disabled.
func (c *Config) Build() (*tls.Config, error) {
	if !c.Enabled {
		return nil, nil
	}

	if _, err := os.Stat(c.CertFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("certificate file not found: %s", c.CertFile)
	}
	if _, err := os.Stat(c.KeyFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("key file not found: %s", c.KeyFile)
	}

	cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificate: %w", err)
	}

	minVersion, err := c.parseMinVersion()
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   minVersion,
	}, nil
}

// Validate checks the configuration without loading key material
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.CertFile == "" {
		return fmt.Errorf("cert_file is required when TLS is enabled")
	}
	if c.KeyFile == "" {
		return fmt.Errorf("key_file is required when TLS is enabled")
	}

	_, err := c.parseMinVersion()
	return err
}

func (c *Config) parseMinVersion() (uint16, error) {
	switch c.MinVersion {
	case "", "TLS1.2":
		return tls.VersionTLS12, nil
	case "TLS1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("unsupported minimum TLS version: %s", c.MinVersion)
	}
}
