package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService([]byte("secret"), time.Hour)

	token, err := svc.Issue("game-1")
	require.NoError(t, err)

	gameID, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "game-1", gameID)
}

func TestTokenService_Rejects(t *testing.T) {
	svc := NewTokenService([]byte("secret"), time.Hour)
	valid, err := svc.Issue("game-1")
	require.NoError(t, err)

	expiring := NewTokenService([]byte("secret"), time.Minute).(*tokenService)
	expiring.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }
	expired, err := expiring.Issue("game-1")
	require.NoError(t, err)

	otherKey, err := NewTokenService([]byte("other"), time.Hour).Issue("game-1")
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{GameID: "game-1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSession, err := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":       "not-a-token",
		"tampered":      valid + "x",
		"expired":       expired,
		"wrong key":     otherKey,
		"alg none":      unsigned,
		"no session id": noSession,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
