package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"devpulse-api/internal/auth"
	"devpulse-api/internal/models"

	"github.com/gin-gonic/gin"
)

const userConfigKey = "user_config"

// UserResolver maps a bearer token to the caller's fetch configuration.
type UserResolver interface {
	Resolve(ctx context.Context, token string) (models.UserConfig, error)
}

// RequireUser validates the Bearer token in the Authorization header and
// stores the resolved UserConfig on the request context.
func RequireUser(resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Extract token from "Bearer <token>"
		parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is required",
			})
			return
		}

		cfg, err := resolver.Resolve(c.Request.Context(), strings.TrimSpace(parts[1]))
		if errors.Is(err, auth.ErrProfileUnavailable) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to load user profile",
				"details": err.Error(),
			})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		c.Set(userConfigKey, cfg)
		c.Set("user_id", cfg.UserID)
		c.Next()
	}
}

// UserConfigFrom returns the configuration RequireUser stored on c.
func UserConfigFrom(c *gin.Context) (models.UserConfig, bool) {
	v, ok := c.Get(userConfigKey)
	if !ok {
		return models.UserConfig{}, false
	}
	cfg, ok := v.(models.UserConfig)
	return cfg, ok
}
