package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Scope represents an access scope that can be granted to a token
type Scope string

const (
	// ScopeRead grants access to the read endpoints: summaries, digests,
	// recent errors and searches.
	ScopeRead Scope = "read"
	// ScopeReport grants access to the error reporting endpoint.
	ScopeReport Scope = "report"
	// ScopeAdmin grants every scope.
	ScopeAdmin Scope = "admin"
)

// TokenInfo describes a configured access token. The token value itself
// is never stored; tokens are keyed by their SHA-256 hash.
type TokenInfo struct {
	Name      string     `yaml:"name" json:"name"`
	Scopes    []Scope    `yaml:"scopes" json:"scopes"`
	ExpiresAt *time.Time `yaml:"expires_at,omitempty" json:"expires_at,omitempty"`
	CreatedAt time.Time  `yaml:"created_at" json:"created_at"`
	LastUsed  *time.Time `yaml:"last_used,omitempty" json:"last_used,omitempty"`
	Active    bool       `yaml:"active" json:"active"`
}

// TokenConfig is the access token configuration for the inspection API
type TokenConfig struct {
	Required bool                 `yaml:"required" json:"required"`
	Tokens   map[string]TokenInfo `yaml:"tokens" json:"tokens"`
}

// TokenManager validates access tokens against the configured set
type TokenManager struct {
	config *TokenConfig
}

// NewTokenManager creates a token manager. A nil config disables
// authentication entirely.
func NewTokenManager(config *TokenConfig) *TokenManager {
	if config == nil {
		config = &TokenConfig{
			Required: false,
			Tokens:   make(map[string]TokenInfo),
		}
	}
	if config.Tokens == nil {
		config.Tokens = make(map[string]TokenInfo)
	}
	return &TokenManager{config: config}
}

// Required reports whether requests must present a token
func (m *TokenManager) Required() bool {
	return m.config.Required
}

// GenerateToken generates a new secure access token
func (m *TokenManager) GenerateToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return "elt_" + hex.EncodeToString(raw), nil
}

// HashToken returns the SHA-256 hex digest used to key stored tokens
func (m *TokenManager) HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Validate checks a presented token and returns its info
func (m *TokenManager) Validate(token string) (*TokenInfo, bool) {
	if !m.config.Required {
		return &TokenInfo{
			Name:   "no-auth",
			Scopes: []Scope{ScopeRead, ScopeReport},
			Active: true,
		}, true
	}

	info, exists := m.config.Tokens[m.HashToken(token)]
	if !exists {
		return nil, false
	}

	if !info.Active {
		return nil, false
	}

	if info.ExpiresAt != nil && info.ExpiresAt.Before(time.Now()) {
		return nil, false
	}

	return &info, true
}

// HasScope checks whether the token grants a scope. Admin grants all.
func (m *TokenManager) HasScope(info *TokenInfo, scope Scope) bool {
	if info == nil {
		return false
	}

	for _, s := range info.Scopes {
		if s == ScopeAdmin || s == scope {
			return true
		}
	}

	return false
}

// Touch updates the last used timestamp for a token
func (m *TokenManager) Touch(token string) {
	if !m.config.Required {
		return
	}

	hashed := m.HashToken(token)
	if info, exists := m.config.Tokens[hashed]; exists {
		now := time.Now()
		info.LastUsed = &now
		m.config.Tokens[hashed] = info
	}
}

// CreateToken generates a token, registers its hash and returns the
// token value. The value cannot be recovered later.
func (m *TokenManager) CreateToken(name string, scopes []Scope, expiresAt *time.Time) (string, error) {
	token, err := m.GenerateToken()
	if err != nil {
		return "", err
	}

	m.config.Tokens[m.HashToken(token)] = TokenInfo{
		Name:      name,
		Scopes:    scopes,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
		Active:    true,
	}

	return token, nil
}

// RevokeToken marks a token inactive
func (m *TokenManager) RevokeToken(token string) bool {
	hashed := m.HashToken(token)
	if info, exists := m.config.Tokens[hashed]; exists {
		info.Active = false
		m.config.Tokens[hashed] = info
		return true
	}
	return false
}

// ListTokens returns the configured tokens without their values
func (m *TokenManager) ListTokens() []TokenInfo {
	tokens := make([]TokenInfo, 0, len(m.config.Tokens))
	for _, info := range m.config.Tokens {
		tokens = append(tokens, info)
	}
	return tokens
}

// Config returns the current token configuration
func (m *TokenManager) Config() *TokenConfig {
	return m.config
}
