package ports

import "github.com/siriphobmean/next-crud/internal/core/domain"

// CredentialCodec derives and checks one-way password hashes.
type CredentialCodec interface {
	Hash(plaintext string) (string, error)
	// Verify never errors on mismatch; it returns false.
	Verify(plaintext, hash string) bool
}

// SessionIssuer signs session tokens.
type SessionIssuer interface {
	Issue(accountID int64, email string) (*domain.SessionToken, error)
}

// SessionVerifier validates session tokens. Failures wrap domain.ErrTokenInvalid.
type SessionVerifier interface {
	Verify(token string) (*domain.Identity, error)
}
