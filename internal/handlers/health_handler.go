package handlers

import (
	"net/http"

	"devpulse-api/internal/aggregator"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
)

type HealthHandler struct {
	clock clockwork.Clock
}

func NewHealthHandler(clock clockwork.Clock) *HealthHandler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &HealthHandler{clock: clock}
}

// Health reports liveness.
// GET /api/health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": h.clock.Now().UTC().Format(aggregator.TimestampLayout),
	})
}
