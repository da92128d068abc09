package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"devpulse-api/internal/auth"
	"devpulse-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoginRequest represents the login and register request payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

type AuthHandler struct {
	db     *gorm.DB
	tokens *auth.TokenManager
	logger *slog.Logger
}

func NewAuthHandler(db *gorm.DB, tokens *auth.TokenManager, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{db: db, tokens: tokens, logger: logger}
}

// Register creates an account with empty upstream handles.
// POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request. Username and password are required.", nil)
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		respondError(c, http.StatusBadRequest, "Invalid request. Username and password are required.", nil)
		return
	}

	var count int64
	if err := h.db.WithContext(c.Request.Context()).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create user", err)
		return
	}
	if count > 0 {
		respondError(c, http.StatusConflict, "Username already taken", nil)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create user", err)
		return
	}
	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create user", err)
		return
	}

	token, err := h.tokens.Generate(user.ID, user.Username)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to generate token", err)
		return
	}
	h.logger.Info("user registered", "user_id", user.ID)

	c.JSON(http.StatusCreated, LoginResponse{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Message:  "Registration successful",
	})
}

// Login verifies the password and issues a token.
// POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request. Username and password are required.", nil)
		return
	}

	var user models.User
	err := h.db.WithContext(c.Request.Context()).Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusUnauthorized, "Invalid username or password", nil)
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load user", err)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		respondError(c, http.StatusUnauthorized, "Invalid username or password", nil)
		return
	}

	token, err := h.tokens.Generate(user.ID, user.Username)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to generate token", err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Message:  "Login successful",
	})
}
