// Package sqlite provides a SQLite-backed AccountRepository.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/siriphobmean/next-crud/internal/core/domain"
	"github.com/siriphobmean/next-crud/internal/core/ports"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const accountColumns = `id, name, email, credential_hash, role, created_at`

// Store persists accounts in a single SQLite file.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ ports.AccountRepository = (*Store)(nil)

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

func dsn(path string) string {
	return filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_txlock=immediate"
}

// Open opens the database at path and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	if err := applyMigrations(path); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// applyMigrations uses its own handle; closing the migrator closes it.
func applyMigrations(path string) error {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return err
	}

	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		_ = db.Close()
		return err
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		_ = db.Close()
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping reports whether the database handle is usable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*domain.Account, error) {
	var (
		a         domain.Account
		role      string
		createdAt int64
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.CredentialHash, &role, &createdAt); err != nil {
		return nil, err
	}
	a.Role = domain.Role(role)
	a.CreatedAt = fromMillis(createdAt)
	return &a, nil
}

func (s *Store) findOne(ctx context.Context, where string, arg any) (*domain.Account, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE `+where, arg)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return a, nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return s.findOne(ctx, `email = ?`, strings.TrimSpace(email))
}

func (s *Store) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	return s.findOne(ctx, `id = ?`, id)
}

func (s *Store) List(ctx context.Context, f ports.ListAccountsFilter) ([]*domain.Account, error) {
	var (
		clauses []string
		args    []any
	)
	if f.Role != "" {
		clauses = append(clauses, `role = ?`)
		args = append(args, string(f.Role))
	}
	if f.Search != "" {
		pattern := "%" + escapeLike(f.Search) + "%"
		clauses = append(clauses, `(name LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	query := `SELECT ` + accountColumns + ` FROM accounts`
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, ` AND `)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
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

func (s *Store) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	createdAt := toMillis(s.now())

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (name, email, credential_hash, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		a.Name, a.Email, a.CredentialHash, string(a.Role), createdAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}

	created := *a
	created.ID = id
	created.CreatedAt = fromMillis(createdAt)
	return &created, nil
}

// Update applies the supplied fields in one statement; unset fields bind NULL
// and keep their stored value.
func (s *Store) Update(ctx context.Context, id int64, p domain.AccountPatch) (*domain.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE accounts SET
			name            = COALESCE(?, name),
			email           = COALESCE(?, email),
			role            = COALESCE(?, role),
			credential_hash = COALESCE(?, credential_hash)
		WHERE id = ?
		RETURNING `+accountColumns,
		nullable(p.Name), nullable(p.Email), nullableRole(p.Role), nullable(p.CredentialHash), id,
	)

	a, err := scanAccount(row)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, domain.ErrNotFound
		case isUniqueViolation(err):
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	return a, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nullable(o domain.Optional[string]) any {
	if v, ok := o.Get(); ok {
		return v
	}
	return nil
}

func nullableRole(o domain.Optional[domain.Role]) any {
	if v, ok := o.Get(); ok {
		return string(v)
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
