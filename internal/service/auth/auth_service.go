package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mlowery/tasktrack-api/internal/domain"
	"github.com/mlowery/tasktrack-api/internal/store"
)

// TokenPair is the access/refresh pair issued on registration, login
// and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService orchestrates registration, login and token refresh on top
// of the user store, the password verifier and the token service.
type AuthService struct {
	users     store.UserStore
	passwords PasswordVerifier
	tokens    JWTService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(users store.UserStore, passwords PasswordVerifier, tokens JWTService, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    log.With(slog.String("component", "auth_service")),
	}
}

// Register creates a new user and issues their first token pair. The
// store hashes the password and rejects duplicate emails.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, TokenPair, error) {
	user, err := domain.NewUser(name, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, TokenPair{}, err
	}

	pair, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}

	s.logger.InfoContext(ctx, "user registered", slog.Int64("user_id", user.ID))
	return user, pair, nil
}

// Login checks the credentials and issues a token pair. Unknown emails
// and wrong passwords both report ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, TokenPair{}, ErrInvalidCredentials
		}
		return nil, TokenPair{}, fmt.Errorf("looking up user: %w", err)
	}

	if err := s.passwords.Compare(user.HashedPassword, password); err != nil {
		return nil, TokenPair{}, err
	}

	pair, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}

	s.logger.InfoContext(ctx, "user logged in", slog.Int64("user_id", user.ID))
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair. The
// user must still exist; a deleted account invalidates its tokens.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	userID, err := s.tokens.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return TokenPair{}, err
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return TokenPair{}, ErrInvalidToken
		}
		return TokenPair{}, fmt.Errorf("looking up user: %w", err)
	}

	return s.issuePair(ctx, userID)
}

func (s *AuthService) issuePair(ctx context.Context, userID int64) (TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(ctx, userID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("generating access token: %w", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(ctx, userID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("generating refresh token: %w", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
