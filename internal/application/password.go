package application

import (
	"golang.org/x/crypto/bcrypt"
)

// BcryptPasswords hashes voter passwords with bcrypt. It backs the per-name
// shared-secret scheme: one password protects one display name within one
// session. This is a convenience against accidental overwrites, not an
// authentication system, and must not be strengthened into one.
type BcryptPasswords struct {
	Cost int
}

// Hash derives a bcrypt hash for storage alongside the voter record.
func (p BcryptPasswords) Hash(password string) (string, error) {
	cost := p.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify compares a stored hash against a supplied password.
func (p BcryptPasswords) Verify(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
