package security

import (
	"github.com/gin-gonic/gin"
)

// HeadersConfig represents security headers configuration for the
// inspection API. The API serves operational error data only, so the
// defaults forbid framing, sniffing and indexing.
type HeadersConfig struct {
	Enabled               bool   `yaml:"enabled" json:"enabled"`
	ContentTypeOptions    string `yaml:"content_type_options" json:"content_type_options"`
	FrameOptions          string `yaml:"frame_options" json:"frame_options"`
	ContentSecurityPolicy string `yaml:"content_security_policy" json:"content_security_policy"`
	ReferrerPolicy        string `yaml:"referrer_policy" json:"referrer_policy"`
}

// DefaultHeadersConfig returns default security headers configuration
func DefaultHeadersConfig() *HeadersConfig {
	return &HeadersConfig{
		Enabled:               true,
		ContentTypeOptions:    "nosniff",
		FrameOptions:          "DENY",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none';",
		ReferrerPolicy:        "no-referrer",
	}
}

// HeadersMiddleware creates a Gin middleware that sets security headers
// on every response
func HeadersMiddleware(config *HeadersConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultHeadersConfig()
	}

	return func(c *gin.Context) {
		if !config.Enabled {
			c.Next()
			return
		}

		if config.ContentTypeOptions != "" {
			c.Header("X-Content-Type-Options", config.ContentTypeOptions)
		}

		if config.FrameOptions != "" {
			c.Header("X-Frame-Options", config.FrameOptions)
		}

		if config.ContentSecurityPolicy != "" {
			c.Header("Content-Security-Policy", config.ContentSecurityPolicy)
		}

		if config.ReferrerPolicy != "" {
			c.Header("Referrer-Policy", config.ReferrerPolicy)
		}

		// Error payloads can contain stack traces and file paths, keep
		// them out of caches and crawlers.
		c.Header("X-Robots-Tag", "noindex, nofollow")
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")

		c.Next()
	}
}
