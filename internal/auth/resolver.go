package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"devpulse-api/internal/models"

	"gorm.io/gorm"
)

var (
	// ErrUnauthenticated means the bearer token could not be turned into a user.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrProfileUnavailable means the token was valid but the user's handles
	// could not be read.
	ErrProfileUnavailable = errors.New("profile unavailable")
)

// Resolver turns a bearer token into the caller's fetch configuration.
type Resolver struct {
	tokens *TokenManager
	db     *gorm.DB
	logger *slog.Logger
}

func NewResolver(tokens *TokenManager, db *gorm.DB, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{tokens: tokens, db: db, logger: logger}
}

// Resolve validates token and loads the user's upstream handles. A user
// without a profile row gets empty handles, so each source falls back to
// its defaults. Any other lookup failure is an error: serving the default
// identities under this user's cache keys would mix accounts.
func (r *Resolver) Resolve(ctx context.Context, token string) (models.UserConfig, error) {
	if token == "" {
		return models.UserConfig{}, fmt.Errorf("%w: missing token", ErrUnauthenticated)
	}
	claims, err := r.tokens.Validate(token)
	if err != nil {
		return models.UserConfig{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	cfg := models.UserConfig{UserID: claims.UserID}
	if r.db == nil {
		return cfg, nil
	}

	var user models.User
	err = r.db.WithContext(ctx).Where("id = ?", claims.UserID).First(&user).Error
	switch {
	case err == nil:
		return user.Config(), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return cfg, nil
	default:
		r.logger.Error("profile lookup failed", "user_id", claims.UserID, "err", err)
		return models.UserConfig{}, fmt.Errorf("%w: %v", ErrProfileUnavailable, err)
	}
}
