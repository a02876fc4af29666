package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Verifier checks admin credentials. Implementations return false with a nil
// error for a wrong username or password and reserve errors for lookup
// failures.
type Verifier interface {
	VerifyCredentials(ctx context.Context, username, password string) (bool, error)
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

// StaticVerifier accepts a single configured admin.
type StaticVerifier struct {
	username []byte
	hash     []byte
}

func NewStaticVerifier(username, passwordHash string) (*StaticVerifier, error) {
	if username == "" {
		return nil, errors.New("admin username is required")
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, errors.New("admin password hash is not a bcrypt hash")
	}
	return &StaticVerifier{username: []byte(username), hash: []byte(passwordHash)}, nil
}

func (v *StaticVerifier) VerifyCredentials(ctx context.Context, username, password string) (bool, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), v.username) == 1
	// always run bcrypt so a wrong username costs the same as a wrong password
	err := bcrypt.CompareHashAndPassword(v.hash, []byte(password))
	if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, err
	}
	return userOK && err == nil, nil
}
