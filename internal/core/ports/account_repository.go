package ports

import (
	"context"

	"github.com/siriphobmean/next-crud/internal/core/domain"
)

// ListAccountsFilter narrows List. Zero values mean "no filter".
type ListAccountsFilter struct {
	Role   domain.Role // exact match
	Search string      // case-insensitive substring of name or email
}

// AccountRepository is the durable id/email → account mapping.
//
// Emails arrive already normalised (trimmed, lowercased). Implementations must
// still enforce uniqueness atomically at write time: of two concurrent Creates
// with the same email exactly one succeeds and the other returns
// domain.ErrDuplicateEmail.
type AccountRepository interface {
	// FindByEmail returns domain.ErrNotFound when no account has email.
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	// FindByID returns domain.ErrNotFound when id is absent.
	FindByID(ctx context.Context, id int64) (*domain.Account, error)
	// List returns matching accounts, newest first (ties by id, descending).
	List(ctx context.Context, filter ListAccountsFilter) ([]*domain.Account, error)
	// Create assigns ID and CreatedAt and returns the stored record.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	// Update applies the set fields of patch. domain.ErrNotFound if id is absent,
	// domain.ErrDuplicateEmail if the new email belongs to another account.
	Update(ctx context.Context, id int64, patch domain.AccountPatch) (*domain.Account, error)
	// Delete removes id, or returns domain.ErrNotFound.
	Delete(ctx context.Context, id int64) error
}
