package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"devpulse-api/internal/handlers"
	"devpulse-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Dependencies struct {
	Env      string
	Logger   *slog.Logger
	Resolver middleware.UserResolver

	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	Profile *handlers.ProfileHandler
	Stats   *handlers.StatsHandler
}

func SetupRoutes(deps Dependencies) *gin.Engine {
	if deps.Env == "prod" || deps.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Create a new GIN Router
	ginRouter := gin.New()
	ginRouter.Use(requestLogger(logger))
	ginRouter.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("handler panicked", "method", c.Request.Method, "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"details": fmt.Sprint(recovered),
		})
	}))

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.GET("/health", deps.Health.Health)
		api.POST("/register", deps.Auth.Register)
		api.POST("/login", deps.Auth.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.RequireUser(deps.Resolver))
	{
		protectedRoutes.GET("/profile", deps.Profile.GetProfile)
		protectedRoutes.PUT("/profile", deps.Profile.UpdateProfile)
		protectedRoutes.DELETE("/cache", deps.Stats.ClearCache)

		protectedRoutes.GET("/github/stats", deps.Stats.GitHub)
		protectedRoutes.GET("/leetcode/stats", deps.Stats.LeetCode)
		protectedRoutes.GET("/wakatime/stats", deps.Stats.WakaTime)
		protectedRoutes.GET("/dashboard", deps.Stats.Dashboard)
	}

	ginRouter.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return ginRouter
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
