// Package auth implements registration, login and JWT token handling.
package auth

import "errors"

// Authentication errors. These map to 401 at the API layer except for
// registration conflicts.
var (
	// ErrInvalidCredentials is returned when login fails. It deliberately
	// does not distinguish an unknown email from a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned when a token fails signature or claims
	// validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token's expiry has passed.
	ErrExpiredToken = errors.New("token expired")

	// ErrWrongTokenType is returned when an access token is presented
	// where a refresh token is required, or the other way around.
	ErrWrongTokenType = errors.New("wrong token type")
)
