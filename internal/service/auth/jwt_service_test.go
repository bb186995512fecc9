package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-that-is-long-enough"

func newTestJWTService() *hmacJWTService {
	return NewJWTService(testSecret, 15*time.Minute, 24*time.Hour).(*hmacJWTService)
}

func TestJWTServiceRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestJWTService()

	t.Run("access token validates", func(t *testing.T) {
		token, err := svc.GenerateAccessToken(ctx, 42)
		require.NoError(t, err)

		userID, err := svc.ValidateAccessToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, int64(42), userID)
	})

	t.Run("refresh token validates", func(t *testing.T) {
		token, err := svc.GenerateRefreshToken(ctx, 42)
		require.NoError(t, err)

		userID, err := svc.ValidateRefreshToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, int64(42), userID)
	})

	t.Run("token IDs are unique per issue", func(t *testing.T) {
		first, err := svc.GenerateAccessToken(ctx, 42)
		require.NoError(t, err)
		second, err := svc.GenerateAccessToken(ctx, 42)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})
}

func TestJWTServiceRejections(t *testing.T) {
	ctx := context.Background()
	svc := newTestJWTService()

	t.Run("access token is not a refresh token", func(t *testing.T) {
		token, err := svc.GenerateAccessToken(ctx, 42)
		require.NoError(t, err)

		_, err = svc.ValidateRefreshToken(ctx, token)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		token, err := svc.GenerateRefreshToken(ctx, 42)
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(ctx, token)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})

	t.Run("garbage is invalid", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(ctx, "not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret is invalid", func(t *testing.T) {
		other := NewJWTService("a-completely-different-secret-key", time.Minute, time.Hour)
		token, err := other.GenerateAccessToken(ctx, 42)
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token reports expiry", func(t *testing.T) {
		issuer := newTestJWTService()
		issued := time.Now().UTC()
		issuer.timeFunc = func() time.Time { return issued }

		token, err := issuer.GenerateAccessToken(ctx, 42)
		require.NoError(t, err)

		verifier := newTestJWTService()
		verifier.timeFunc = func() time.Time { return issued.Add(16 * time.Minute) }

		_, err = verifier.ValidateAccessToken(ctx, token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

func TestBcryptVerifier(t *testing.T) {
	verifier := BcryptVerifier{}

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, verifier.Compare(string(hash), "correct horse"))
	assert.ErrorIs(t, verifier.Compare(string(hash), "wrong horse"), ErrInvalidCredentials)
}
