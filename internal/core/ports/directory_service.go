package ports

import (
	"context"

	"github.com/siriphobmean/next-crud/internal/core/domain"
)

// RegisterInput is the self-service sign-up payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// CreateAccountInput is the administrative create payload. Role may be empty,
// in which case it defaults to domain.RoleUser.
type CreateAccountInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// UpdateAccountInput carries a partial update. A Password that is not supplied
// or supplied empty leaves the stored credential untouched.
type UpdateAccountInput struct {
	Name     domain.Optional[string]
	Email    domain.Optional[string]
	Role     domain.Optional[string]
	Password domain.Optional[string]
}

// ListAccountsInput carries the optional list filters.
type ListAccountsInput struct {
	Role   string
	Search string
}

// DirectoryService orchestrates registration, authentication and account CRUD.
// Every account it returns is redacted.
type DirectoryService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.PublicAccount, error)
	Authenticate(ctx context.Context, email, password string) (*domain.SessionToken, *domain.PublicAccount, error)
	ListAccounts(ctx context.Context, in ListAccountsInput) ([]domain.PublicAccount, error)
	GetAccount(ctx context.Context, id int64) (*domain.PublicAccount, error)
	CreateAccount(ctx context.Context, in CreateAccountInput) (*domain.PublicAccount, error)
	UpdateAccount(ctx context.Context, id int64, in UpdateAccountInput) (*domain.PublicAccount, error)
	DeleteAccount(ctx context.Context, id int64) error
}
