// Package auth implements the credential codec and the session token issuer.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/siriphobmean/next-crud/internal/core/domain"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 10

// PasswordCodec hashes and verifies passwords with bcrypt.
type PasswordCodec struct {
	cost int
}

// NewPasswordCodec returns a codec with the given bcrypt cost. Out-of-range
// costs fall back to DefaultCost.
func NewPasswordCodec(cost int) *PasswordCodec {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &PasswordCodec{cost: cost}
}

// Hash returns a salted bcrypt hash of plaintext. Plaintexts bcrypt would
// truncate are rejected as a validation error.
func (p *PasswordCodec) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.NewValidationError("password", "Password must be at most 72 bytes")
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. A malformed hash is a mismatch.
func (p *PasswordCodec) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
