package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DevJWTSecret signs tokens when JWT_SECRET is unset. Validate rejects it
// in production.
const DevJWTSecret = "development-insecure-secret-change-me"

type Config struct {
	Port         string
	Env          string
	DatabasePath string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTTTL      time.Duration

	GitHubToken      string
	GitHubUsername   string
	LeetCodeUsername string
	WakaTimeAPIKey   string

	GitHubGraphQLURL   string
	LeetCodeGraphQLURL string
	WakaTimeBaseURL    string
	UpstreamTimeout    time.Duration

	CacheDefaultTTL    time.Duration
	GitHubCacheTTL     time.Duration
	LeetCodeCacheTTL   time.Duration
	WakaTimeCacheTTL   time.Duration
	DashboardCacheTTL  time.Duration
	CacheMaxEntries    int
	CacheSweepInterval time.Duration
}

// Load reads the process environment, after merging an optional .env file
// from the working directory. Variables already set win over the file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:         getEnv("PORT", "3001"),
		Env:          getEnv("APP_ENV", "local"),
		DatabasePath: getEnv("DATABASE_PATH", "devpulse.db"),

		JWTSecret:   getEnv("JWT_SECRET", DevJWTSecret),
		JWTIssuer:   getEnv("JWT_ISSUER", "devpulse-api"),
		JWTAudience: getEnv("JWT_AUDIENCE", "devpulse-dashboard"),
		JWTTTL:      getEnvDuration("JWT_TTL", 24*time.Hour),

		GitHubToken:      getEnv("GITHUB_PAT", ""),
		GitHubUsername:   getEnv("GITHUB_USERNAME", ""),
		LeetCodeUsername: getEnv("LEETCODE_USERNAME", ""),
		WakaTimeAPIKey:   getEnv("WAKATIME_API_KEY", ""),

		GitHubGraphQLURL:   getEnv("GITHUB_GRAPHQL_URL", ""),
		LeetCodeGraphQLURL: getEnv("LEETCODE_GRAPHQL_URL", ""),
		WakaTimeBaseURL:    getEnv("WAKATIME_BASE_URL", ""),
		UpstreamTimeout:    getEnvDuration("UPSTREAM_TIMEOUT", 10*time.Second),

		CacheDefaultTTL:    getEnvDuration("CACHE_DEFAULT_TTL", 15*time.Minute),
		GitHubCacheTTL:     getEnvDuration("GITHUB_CACHE_TTL", 15*time.Minute),
		LeetCodeCacheTTL:   getEnvDuration("LEETCODE_CACHE_TTL", 15*time.Minute),
		WakaTimeCacheTTL:   getEnvDuration("WAKATIME_CACHE_TTL", 10*time.Minute),
		DashboardCacheTTL:  getEnvDuration("DASHBOARD_CACHE_TTL", 10*time.Minute),
		CacheMaxEntries:    getEnvInt("CACHE_MAX_ENTRIES", 10000),
		CacheSweepInterval: getEnvDuration("CACHE_SWEEP_INTERVAL", 5*time.Minute),
	}
	cfg.DashboardCacheTTL = clampDashboardTTL(cfg)
	return cfg
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

// Validate rejects settings the service must not run with.
func (c Config) Validate() error {
	if c.IsProduction() && c.JWTSecret == DevJWTSecret {
		return errors.New("JWT_SECRET must be set when APP_ENV is production")
	}
	return nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%s", c.Port)
}

// clampDashboardTTL keeps the composed payload from outliving any of the
// source entries it was built from.
func clampDashboardTTL(c Config) time.Duration {
	ttl := c.DashboardCacheTTL
	for _, src := range []time.Duration{c.GitHubCacheTTL, c.LeetCodeCacheTTL, c.WakaTimeCacheTTL} {
		if src > 0 && src < ttl {
			ttl = src
		}
	}
	return ttl
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return fallback
}
