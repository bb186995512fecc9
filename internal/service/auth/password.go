package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier checks a plaintext password against a stored hash.
type PasswordVerifier interface {
	// Compare returns ErrInvalidCredentials when the password does not
	// match the hash.
	Compare(hashedPassword, password string) error
}

// BcryptVerifier is the bcrypt-backed PasswordVerifier used in
// production. Hashing happens in the user store on registration; this
// side only compares.
type BcryptVerifier struct{}

// Verify BcryptVerifier implements PasswordVerifier at compile time.
var _ PasswordVerifier = BcryptVerifier{}

// Compare checks the password against the bcrypt hash.
func (BcryptVerifier) Compare(hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return err
	}
	return nil
}
