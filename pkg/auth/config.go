package auth

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadTokenConfig loads the access token configuration from a YAML
// file. A missing path returns an open configuration; a missing file is
// created with auth disabled so the operator has a file to edit.
func LoadTokenConfig(path string) (*TokenConfig, error) {
	if path == "" {
		return &TokenConfig{
			Required: false,
			Tokens:   make(map[string]TokenInfo),
		}, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		config := &TokenConfig{
			Required: false,
			Tokens:   make(map[string]TokenInfo),
		}

		if err := SaveTokenConfig(path, config); err != nil {
			return nil, fmt.Errorf("failed to create default token config: %w", err)
		}

		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token config: %w", err)
	}

	var config TokenConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse token config: %w", err)
	}

	if config.Tokens == nil {
		config.Tokens = make(map[string]TokenInfo)
	}

	return &config, nil
}

// SaveTokenConfig saves the access token configuration to a YAML file
func SaveTokenConfig(path string, config *TokenConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create token config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal token config: %w", err)
	}

	// Hashes only, but the file still names every client.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token config: %w", err)
	}

	return nil
}
