// Package cryptox wraps the one-way password hashing used for credentials.
package cryptox

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher creates and checks password hashes.
type PasswordHasher interface {
	Hash(rawPassword string) (string, error)
	Verify(rawPassword, passwordHash string) bool
}

// BcryptHasher hashes with bcrypt. Every hash gets a fresh random salt, so
// hashing the same password twice yields different strings.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher with the given cost. Out-of-range costs
// fall back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns the encoded bcrypt hash of rawPassword.
func (h *BcryptHasher) Hash(rawPassword string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(rawPassword), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether rawPassword matches passwordHash. A malformed hash
// is a mismatch, never an error.
func (h *BcryptHasher) Verify(rawPassword, passwordHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(rawPassword)) == nil
}
