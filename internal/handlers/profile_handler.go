package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"devpulse-api/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UpdateProfileRequest carries the handles to change. Omitted fields are
// left as they are; an empty string clears the handle.
type UpdateProfileRequest struct {
	GitHubUsername   *string `json:"githubUsername"`
	LeetCodeUsername *string `json:"leetcodeUsername"`
	WakaTimeAPIKey   *string `json:"wakatimeApiKey"`
}

// ProfileResponse never carries the WakaTime key in clear.
type ProfileResponse struct {
	ID                 string `json:"id"`
	Username           string `json:"username"`
	GitHubUsername     string `json:"githubUsername"`
	LeetCodeUsername   string `json:"leetcodeUsername"`
	WakaTimeAPIKey     string `json:"wakatimeApiKey"`
	WakaTimeConfigured bool   `json:"wakatimeConfigured"`
}

type ProfileHandler struct {
	db           *gorm.DB
	invalidators []Invalidator
	logger       *slog.Logger
}

// NewProfileHandler wires the profile routes. invalidators are told to drop
// the user's cached metrics whenever the handles change.
func NewProfileHandler(db *gorm.DB, logger *slog.Logger, invalidators ...Invalidator) *ProfileHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileHandler{db: db, invalidators: invalidators, logger: logger}
}

// GetProfile returns the caller's handles.
// GET /api/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	cfg, ok := currentUser(c)
	if !ok {
		return
	}
	user, ok := h.load(c, cfg.UserID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(user))
}

// UpdateProfile changes the upstream handles and drops every cached entry
// built from the old ones.
// PUT /api/profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	cfg, ok := currentUser(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	user, ok := h.load(c, cfg.UserID)
	if !ok {
		return
	}

	updates := map[string]any{}
	if req.GitHubUsername != nil {
		updates["github_username"] = strings.TrimSpace(*req.GitHubUsername)
	}
	if req.LeetCodeUsername != nil {
		updates["leetcode_username"] = strings.TrimSpace(*req.LeetCodeUsername)
	}
	if req.WakaTimeAPIKey != nil {
		updates["wakatime_api_key"] = strings.TrimSpace(*req.WakaTimeAPIKey)
	}
	if len(updates) > 0 {
		if err := h.db.WithContext(c.Request.Context()).Model(&user).Updates(updates).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to update profile", err)
			return
		}
		invalidateAll(user.ID, h.invalidators)
		h.logger.Info("profile updated", "user_id", user.ID)
	}

	user, ok = h.load(c, cfg.UserID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(user))
}

func (h *ProfileHandler) load(c *gin.Context, userID string) (models.User, bool) {
	var user models.User
	err := h.db.WithContext(c.Request.Context()).Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "Profile not found", nil)
		return models.User{}, false
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load profile", err)
		return models.User{}, false
	}
	return user, true
}

func newProfileResponse(u models.User) ProfileResponse {
	return ProfileResponse{
		ID:                 u.ID,
		Username:           u.Username,
		GitHubUsername:     u.GitHubUsername,
		LeetCodeUsername:   u.LeetCodeUsername,
		WakaTimeAPIKey:     maskSecret(u.WakaTimeAPIKey),
		WakaTimeConfigured: u.WakaTimeAPIKey != "",
	}
}

// maskSecret keeps at most the last four characters.
func maskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "****"
	default:
		return "****" + s[len(s)-4:]
	}
}
