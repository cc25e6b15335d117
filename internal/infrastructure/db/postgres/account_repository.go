package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/siriphobmean/next-crud/internal/core/domain"
	"github.com/siriphobmean/next-crud/internal/core/ports"
)

const (
	accountColumns  = `id, name, email, credential_hash, role, created_at`
	uniqueViolation = "23505"
)

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

func (r *AccountRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		a    domain.Account
		role string
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.CredentialHash, &role, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Role = domain.Role(role)
	a.CreatedAt = a.CreatedAt.UTC()
	return &a, nil
}

func (r *AccountRepository) findOne(ctx context.Context, where string, arg any) (*domain.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, `lower(email) = lower($1)`, strings.TrimSpace(email))
}

func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	return r.findOne(ctx, `id = $1`, id)
}

func (r *AccountRepository) List(ctx context.Context, f ports.ListAccountsFilter) ([]*domain.Account, error) {
	var (
		clauses []string
		args    []any
	)
	if f.Role != "" {
		args = append(args, string(f.Role))
		clauses = append(clauses, `role = $`+strconv.Itoa(len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		n := strconv.Itoa(len(args))
		clauses = append(clauses, `(name ILIKE $`+n+` OR email ILIKE $`+n+`)`)
	}

	query := `SELECT ` + accountColumns + ` FROM accounts`
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, ` AND `)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("list accounts: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return out, nil
}

func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	created, err := scanAccount(r.pool.QueryRow(ctx, `
		INSERT INTO accounts (name, email, credential_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+accountColumns,
		a.Name, a.Email, a.CredentialHash, string(a.Role),
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return created, nil
}

// Update binds NULL for fields the patch leaves unset so COALESCE keeps them.
func (r *AccountRepository) Update(ctx context.Context, id int64, p domain.AccountPatch) (*domain.Account, error) {
	updated, err := scanAccount(r.pool.QueryRow(ctx, `
		UPDATE accounts SET
			name            = COALESCE($2, name),
			email           = COALESCE($3, email),
			role            = COALESCE($4, role),
			credential_hash = COALESCE($5, credential_hash)
		WHERE id = $1
		RETURNING `+accountColumns,
		id, nullable(p.Name), nullable(p.Email), nullableRole(p.Role), nullable(p.CredentialHash),
	))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, domain.ErrNotFound
		case isUniqueViolation(err):
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	return updated, nil
}

func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nullable(o domain.Optional[string]) *string {
	if v, ok := o.Get(); ok {
		return &v
	}
	return nil
}

func nullableRole(o domain.Optional[domain.Role]) *string {
	if v, ok := o.Get(); ok {
		s := string(v)
		return &s
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
