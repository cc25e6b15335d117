package domain

import "time"

// Identity is what a verified session token asserts. Callers needing strong
// consistency should re-read the account rather than trust these fields.
type Identity struct {
	AccountID int64
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// SessionToken is a signed, stateless identity assertion. It is never persisted.
type SessionToken struct {
	Value string
	Identity
}
