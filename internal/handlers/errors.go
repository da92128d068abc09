package handlers

import (
	"net/http"

	"devpulse-api/internal/middleware"
	"devpulse-api/internal/models"

	"github.com/gin-gonic/gin"
)

// Invalidator drops one user's cached entries.
type Invalidator interface {
	Invalidate(userID string)
}

func respondError(c *gin.Context, status int, message string, err error) {
	body := gin.H{"error": message}
	if err != nil {
		body["details"] = err.Error()
	}
	c.JSON(status, body)
}

// currentUser returns the caller's configuration, or writes a 401 when the
// route is not behind RequireUser.
func currentUser(c *gin.Context) (models.UserConfig, bool) {
	cfg, ok := middleware.UserConfigFrom(c)
	if !ok || cfg.UserID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token is required"})
		return models.UserConfig{}, false
	}
	return cfg, true
}

func invalidateAll(userID string, invalidators []Invalidator) {
	for _, inv := range invalidators {
		inv.Invalidate(userID)
	}
}
