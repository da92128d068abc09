package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devpulse-api/internal/aggregator"
	"devpulse-api/internal/auth"
	"devpulse-api/internal/cache"
	"devpulse-api/internal/config"
	"devpulse-api/internal/database"
	"devpulse-api/internal/handlers"
	"devpulse-api/internal/models"
	"devpulse-api/internal/observability"
	"devpulse-api/internal/routes"
	"devpulse-api/internal/sources"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DatabasePath, "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := cache.NewSimpleCache[string, any](cache.Options{
		ConcurrencySafe: true,
		DefaultTTL:      cfg.CacheDefaultTTL,
		MaxEntries:      cfg.CacheMaxEntries,
	})
	janitorDone := store.StartJanitor(ctx, cfg.CacheSweepInterval)
	loader := cache.NewLoader[any](store)

	httpClient := &http.Client{Timeout: cfg.UpstreamTimeout}
	githubFetcher := sources.NewGitHubFetcher(sources.GitHubOptions{
		Endpoint:        cfg.GitHubGraphQLURL,
		Token:           cfg.GitHubToken,
		DefaultUsername: cfg.GitHubUsername,
		HTTPClient:      httpClient,
	})
	leetcodeFetcher := sources.NewLeetCodeFetcher(sources.LeetCodeOptions{
		Endpoint:        cfg.LeetCodeGraphQLURL,
		DefaultUsername: cfg.LeetCodeUsername,
		HTTPClient:      httpClient,
	})
	wakatimeFetcher := sources.NewWakaTimeFetcher(sources.WakaTimeOptions{
		BaseURL:       cfg.WakaTimeBaseURL,
		DefaultAPIKey: cfg.WakaTimeAPIKey,
		HTTPClient:    httpClient,
	})

	github := sources.NewCached[models.GitHubStats](sources.GitHubNamespace, githubFetcher, loader, cfg.GitHubCacheTTL, logger)
	leetcode := sources.NewCached[models.LeetCodeStats](sources.LeetCodeNamespace, leetcodeFetcher, loader, cfg.LeetCodeCacheTTL, logger)
	wakatime := sources.NewCached[models.WakaTimeStats](sources.WakaTimeNamespace, wakatimeFetcher, loader, cfg.WakaTimeCacheTTL, logger)
	dashboard := aggregator.New(aggregator.Options{
		GitHub:        github,
		LeetCode:      leetcode,
		WakaTime:      wakatime,
		Loader:        loader,
		TTL:           cfg.DashboardCacheTTL,
		SourceTimeout: cfg.UpstreamTimeout,
		Logger:        logger,
	})
	invalidators := []handlers.Invalidator{github, leetcode, wakatime, dashboard}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTTTL)
	router := routes.SetupRoutes(routes.Dependencies{
		Env:      cfg.Env,
		Logger:   logger,
		Resolver: auth.NewResolver(tokens, db, logger),
		Health:   handlers.NewHealthHandler(nil),
		Auth:     handlers.NewAuthHandler(db, tokens, logger),
		Profile:  handlers.NewProfileHandler(db, logger, invalidators...),
		Stats: handlers.NewStatsHandler(handlers.StatsDependencies{
			GitHub:       github,
			LeetCode:     leetcode,
			WakaTime:     wakatime,
			Dashboard:    dashboard,
			Invalidators: invalidators,
		}),
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logBootIdentities(logger, cfg, githubFetcher, leetcodeFetcher)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	<-janitorDone
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("devpulse api stopped")
}

type identityResolver interface {
	Username(cfg models.UserConfig) string
}

// logBootIdentities reports the identities used for users without their own
// handles. The WakaTime key itself is never logged.
func logBootIdentities(logger *slog.Logger, cfg config.Config, github, leetcode identityResolver) {
	logger.Info("devpulse api starting",
		"addr", cfg.Addr(),
		"env", cfg.Env,
		"github_user", github.Username(models.UserConfig{}),
		"leetcode_user", leetcode.Username(models.UserConfig{}),
		"wakatime_key_configured", cfg.WakaTimeAPIKey != "",
		"github_token_configured", cfg.GitHubToken != "",
	)
	if cfg.WakaTimeAPIKey == "" {
		logger.Warn("WAKATIME_API_KEY is not set; wakatime stays null for users without their own key")
	}
}
