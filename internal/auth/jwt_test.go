package auth

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func newTestTokens() *TokenManager {
	return NewTokenManager("test-secret", "devpulse-api", "devpulse-dashboard", time.Hour)
}

func TestGenerateAndValidateToken(t *testing.T) {
	tokens := newTestTokens()
	token, err := tokens.Generate("u-1", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	require.Equal(t, "u-1", claims.UserID)
	require.Equal(t, "alice", claims.Username)
}

func TestValidateToken_Invalid(t *testing.T) {
	_, err := newTestTokens().Validate("invalid.token")
	require.Error(t, err)
}

func TestValidateToken_WrongSecretIssuerOrAudience(t *testing.T) {
	tokens := newTestTokens()
	for name, other := range map[string]*TokenManager{
		"secret":   NewTokenManager("other-secret", "devpulse-api", "devpulse-dashboard", time.Hour),
		"issuer":   NewTokenManager("test-secret", "someone-else", "devpulse-dashboard", time.Hour),
		"audience": NewTokenManager("test-secret", "devpulse-api", "mobile", time.Hour),
	} {
		token, err := other.Generate("u-1", "alice")
		require.NoError(t, err)
		_, err = tokens.Validate(token)
		require.Error(t, err, name)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	tokens := newTestTokens()
	tokens.clock = clock

	token, err := tokens.Generate("u-1", "alice")
	require.NoError(t, err)

	clock.Advance(59 * time.Minute)
	_, err = tokens.Validate(token)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = tokens.Validate(token)
	require.Error(t, err)
}
