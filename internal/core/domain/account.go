package domain

import (
	"strings"
	"time"
)

// Role is the directory role stored on an account. It is recorded, not enforced.
type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

// Roles lists every known role in display order.
var Roles = []Role{RoleUser, RoleAdmin, RoleModerator}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

// Account is the stored directory record. It carries the credential hash and
// must never be serialised to a caller; use Redact.
type Account struct {
	ID             int64
	Name           string
	Email          string
	CredentialHash string
	Role           Role
	CreatedAt      time.Time
}

// PublicAccount is the redacted view of an Account returned across the service
// boundary.
type PublicAccount struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Redact drops the credential hash.
func (a *Account) Redact() PublicAccount {
	return PublicAccount{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Role:      a.Role,
		CreatedAt: a.CreatedAt,
	}
}

// AccountPatch holds the fields an update may change. Unset fields are left
// untouched by the repository.
type AccountPatch struct {
	Name           Optional[string]
	Email          Optional[string]
	Role           Optional[Role]
	CredentialHash Optional[string]
}

// Empty reports whether the patch changes nothing.
func (p AccountPatch) Empty() bool {
	return !p.Name.IsSet() && !p.Email.IsSet() && !p.Role.IsSet() && !p.CredentialHash.IsSet()
}

// NormalizeEmail trims and lowercases an email so comparisons are
// case-insensitive before they reach a repository.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
