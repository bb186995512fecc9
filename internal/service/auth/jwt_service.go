package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types embedded in the claims so an access token can never pass
// for a refresh token.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims are the JWT claims carried by both token types.
type Claims struct {
	UserID    int64  `json:"uid"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// JWTService issues and validates the two token types.
type JWTService interface {
	// GenerateAccessToken creates a short-lived token for API requests.
	GenerateAccessToken(ctx context.Context, userID int64) (string, error)

	// GenerateRefreshToken creates a longer-lived token that can only be
	// exchanged for a new token pair.
	GenerateRefreshToken(ctx context.Context, userID int64) (string, error)

	// ValidateAccessToken checks an access token and returns its user ID.
	ValidateAccessToken(ctx context.Context, token string) (int64, error)

	// ValidateRefreshToken checks a refresh token and returns its user ID.
	ValidateRefreshToken(ctx context.Context, token string) (int64, error)
}

// hmacJWTService signs tokens with HMAC-SHA256.
type hmacJWTService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	// timeFunc is replaceable in tests.
	timeFunc func() time.Time
}

// NewJWTService creates an HMAC-SHA256 JWTService.
func NewJWTService(secret string, accessTTL, refreshTTL time.Duration) JWTService {
	return &hmacJWTService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		timeFunc:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *hmacJWTService) generate(userID int64, tokenType string, ttl time.Duration) (string, error) {
	now := s.timeFunc()
	claims := Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing %s token: %w", tokenType, err)
	}
	return signed, nil
}

func (s *hmacJWTService) validate(tokenString, wantType string) (int64, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.timeFunc))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredToken
		}
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return 0, ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return 0, ErrWrongTokenType
	}
	if claims.UserID <= 0 {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}

func (s *hmacJWTService) GenerateAccessToken(_ context.Context, userID int64) (string, error) {
	return s.generate(userID, tokenTypeAccess, s.accessTTL)
}

func (s *hmacJWTService) GenerateRefreshToken(_ context.Context, userID int64) (string, error) {
	return s.generate(userID, tokenTypeRefresh, s.refreshTTL)
}

func (s *hmacJWTService) ValidateAccessToken(_ context.Context, token string) (int64, error) {
	return s.validate(token, tokenTypeAccess)
}

func (s *hmacJWTService) ValidateRefreshToken(_ context.Context, token string) (int64, error) {
	return s.validate(token, tokenTypeRefresh)
}
