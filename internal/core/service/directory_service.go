package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/siriphobmean/next-crud/internal/core/domain"
	"github.com/siriphobmean/next-crud/internal/core/ports"
	"github.com/siriphobmean/next-crud/internal/core/validation"
)

// DirectoryService implements registration, authentication and account CRUD.
type DirectoryService struct {
	repo      ports.AccountRepository
	passwords ports.CredentialCodec
	sessions  ports.SessionIssuer
	rules     *validation.Rules
	log       zerolog.Logger
}

func NewDirectoryService(
	repo ports.AccountRepository,
	passwords ports.CredentialCodec,
	sessions ports.SessionIssuer,
	rules *validation.Rules,
	log zerolog.Logger,
) *DirectoryService {
	if rules == nil {
		rules = validation.New()
	}
	return &DirectoryService{
		repo:      repo,
		passwords: passwords,
		sessions:  sessions,
		rules:     rules,
		log:       log,
	}
}

var _ ports.DirectoryService = (*DirectoryService)(nil)

// Register signs up a new account with the user role.
func (s *DirectoryService) Register(ctx context.Context, in ports.RegisterInput) (*domain.PublicAccount, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)

	if err := s.rules.Registration(name, email, in.Password); err != nil {
		return nil, err
	}

	return s.create(ctx, "register", name, email, in.Password, domain.RoleUser)
}

// Authenticate checks the credentials and issues a session token.
// A missing account and a wrong password are reported differently.
func (s *DirectoryService) Authenticate(ctx context.Context, email, password string) (*domain.SessionToken, *domain.PublicAccount, error) {
	email = domain.NormalizeEmail(email)

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, s.repoError("authenticate", err)
	}

	if !s.passwords.Verify(password, account.CredentialHash) {
		s.log.Info().Int64("account_id", account.ID).Msg("authentication rejected")
		return nil, nil, domain.ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(account.ID, account.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("authenticate: %w", err)
	}

	public := account.Redact()
	return token, &public, nil
}

// ListAccounts returns accounts newest first.
func (s *DirectoryService) ListAccounts(ctx context.Context, in ports.ListAccountsInput) ([]domain.PublicAccount, error) {
	accounts, err := s.repo.List(ctx, ports.ListAccountsFilter{
		Role:   domain.Role(strings.TrimSpace(in.Role)),
		Search: strings.TrimSpace(in.Search),
	})
	if err != nil {
		return nil, s.repoError("list accounts", err)
	}

	out := make([]domain.PublicAccount, len(accounts))
	for i, a := range accounts {
		out[i] = a.Redact()
	}
	return out, nil
}

func (s *DirectoryService) GetAccount(ctx context.Context, id int64) (*domain.PublicAccount, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.repoError("get account", err)
	}
	public := account.Redact()
	return &public, nil
}

// CreateAccount is the administrative create; the role may be chosen.
func (s *DirectoryService) CreateAccount(ctx context.Context, in ports.CreateAccountInput) (*domain.PublicAccount, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	role := strings.TrimSpace(in.Role)

	if err := s.rules.Creation(name, email, in.Password, role); err != nil {
		return nil, err
	}
	if role == "" {
		role = string(domain.RoleUser)
	}

	return s.create(ctx, "create account", name, email, in.Password, domain.Role(role))
}

// UpdateAccount applies a partial update. The credential is re-derived only
// when a non-empty password is supplied.
func (s *DirectoryService) UpdateAccount(ctx context.Context, id int64, in ports.UpdateAccountInput) (*domain.PublicAccount, error) {
	name := trimOptional(in.Name)
	email := normalizeOptionalEmail(in.Email)
	role := trimOptional(in.Role)

	if err := s.rules.Update(name, email, role, in.Password); err != nil {
		return nil, err
	}

	patch := domain.AccountPatch{Name: name, Email: email}
	if v, ok := role.Get(); ok {
		patch.Role = domain.Some(domain.Role(v))
	}
	if v, ok := in.Password.Get(); ok && v != "" {
		hash, err := s.passwords.Hash(v)
		if err != nil {
			return nil, err
		}
		patch.CredentialHash = domain.Some(hash)
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, s.repoError("update account", err)
	}

	s.log.Info().
		Int64("account_id", id).
		Bool("credential_changed", patch.CredentialHash.IsSet()).
		Msg("account updated")

	public := updated.Redact()
	return &public, nil
}

// DeleteAccount removes an account. Deleting an absent id is an error.
func (s *DirectoryService) DeleteAccount(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.repoError("delete account", err)
	}
	s.log.Info().Int64("account_id", id).Msg("account deleted")
	return nil
}

// create hashes the password and inserts the account. Email uniqueness is left
// to the repository so concurrent creates cannot both succeed.
func (s *DirectoryService) create(ctx context.Context, op, name, email, password string, role domain.Role) (*domain.PublicAccount, error) {
	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &domain.Account{
		Name:           name,
		Email:          email,
		CredentialHash: hash,
		Role:           role,
	})
	if err != nil {
		return nil, s.repoError(op, err)
	}

	s.log.Info().
		Int64("account_id", created.ID).
		Str("role", string(created.Role)).
		Str("op", op).
		Msg("account created")

	public := created.Redact()
	return &public, nil
}

// repoError maps repository failures onto directory errors. Anything the
// contract does not name is an opaque store fault.
func (s *DirectoryService) repoError(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return domain.ErrAccountNotFound
	case errors.Is(err, domain.ErrDuplicateEmail):
		return domain.ErrEmailAlreadyExists
	}

	s.log.Error().Err(err).Str("op", op).Msg("repository failure")
	return fmt.Errorf("%s: %w: %w", op, domain.ErrRepositoryUnavailable, err)
}

func trimOptional(o domain.Optional[string]) domain.Optional[string] {
	if v, ok := o.Get(); ok {
		return domain.Some(strings.TrimSpace(v))
	}
	return o
}

func normalizeOptionalEmail(o domain.Optional[string]) domain.Optional[string] {
	if v, ok := o.Get(); ok {
		return domain.Some(domain.NormalizeEmail(v))
	}
	return o
}
