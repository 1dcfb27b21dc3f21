package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const tokenInfoKey = "auth_token_info"

// Middleware creates a Gin middleware that authenticates requests
// against the configured token set. The health endpoint stays public so
// probes work without credentials.
func Middleware(manager *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		if !manager.Required() {
			c.Next()
			return
		}

		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "MISSING_TOKEN",
					"message": "Access token required",
				},
			})
			c.Abort()
			return
		}

		info, valid := manager.Validate(token)
		if !valid {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "INVALID_TOKEN",
					"message": "Invalid or expired access token",
				},
			})
			c.Abort()
			return
		}

		manager.Touch(token)

		c.Set(tokenInfoKey, info)

		c.Next()
	}
}

// RequireScope creates a middleware that requires a specific scope
func RequireScope(manager *TokenManager, scope Scope) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !manager.Required() {
			c.Next()
			return
		}

		info, ok := TokenFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "AUTHENTICATION_REQUIRED",
					"message": "Authentication required",
				},
			})
			c.Abort()
			return
		}

		if !manager.HasScope(info, scope) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "INSUFFICIENT_SCOPE",
					"message": "Token does not grant the required scope",
					"details": string(scope),
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// TokenFromContext retrieves the validated token info from the Gin
// context
func TokenFromContext(c *gin.Context) (*TokenInfo, bool) {
	value, exists := c.Get(tokenInfoKey)
	if !exists {
		return nil, false
	}

	info, ok := value.(*TokenInfo)
	return info, ok
}

// extractToken pulls the access token from the request. The
// Authorization header is preferred; X-Auth-Token is accepted for
// clients that cannot set it.
func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if strings.HasPrefix(header, "Bearer ") {
			return strings.TrimPrefix(header, "Bearer ")
		}
	}

	return c.GetHeader("X-Auth-Token")
}
