package handlers

import (
	"context"
	"net/http"

	"devpulse-api/internal/aggregator"
	"devpulse-api/internal/models"

	"github.com/gin-gonic/gin"
)

// Dashboard builds the merged payload for one user.
type Dashboard interface {
	Aggregate(ctx context.Context, cfg models.UserConfig) (models.DashboardPayload, error)
}

type StatsHandler struct {
	github    aggregator.StatsSource[models.GitHubStats]
	leetcode  aggregator.StatsSource[models.LeetCodeStats]
	wakatime  aggregator.StatsSource[models.WakaTimeStats]
	dashboard Dashboard

	invalidators []Invalidator
}

type StatsDependencies struct {
	GitHub    aggregator.StatsSource[models.GitHubStats]
	LeetCode  aggregator.StatsSource[models.LeetCodeStats]
	WakaTime  aggregator.StatsSource[models.WakaTimeStats]
	Dashboard Dashboard
	// Invalidators back DELETE /api/cache.
	Invalidators []Invalidator
}

func NewStatsHandler(deps StatsDependencies) *StatsHandler {
	return &StatsHandler{
		github:       deps.GitHub,
		leetcode:     deps.LeetCode,
		wakatime:     deps.WakaTime,
		dashboard:    deps.Dashboard,
		invalidators: deps.Invalidators,
	}
}

// GET /api/github/stats
func (h *StatsHandler) GitHub(c *gin.Context) { serveStats(c, h.github) }

// GET /api/leetcode/stats
func (h *StatsHandler) LeetCode(c *gin.Context) { serveStats(c, h.leetcode) }

// GET /api/wakatime/stats
func (h *StatsHandler) WakaTime(c *gin.Context) { serveStats(c, h.wakatime) }

// Dashboard returns every source in one payload. Sources that failed are
// null; only a failure of the aggregation itself is an error.
// GET /api/dashboard
func (h *StatsHandler) Dashboard(c *gin.Context) {
	cfg, ok := currentUser(c)
	if !ok {
		return
	}
	payload, err := h.dashboard.Aggregate(c.Request.Context(), cfg)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to aggregate dashboard data", err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

// ClearCache forces the caller's next requests to refetch every source.
// DELETE /api/cache
func (h *StatsHandler) ClearCache(c *gin.Context) {
	cfg, ok := currentUser(c)
	if !ok {
		return
	}
	invalidateAll(cfg.UserID, h.invalidators)
	c.JSON(http.StatusOK, gin.H{"message": "Cache cleared"})
}

func serveStats[T any](c *gin.Context, src aggregator.StatsSource[T]) {
	cfg, ok := currentUser(c)
	if !ok {
		return
	}
	stats, err := src.Stats(c.Request.Context(), cfg)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch "+src.Source().DisplayName()+" data", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
