package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siriphobmean/next-crud/internal/core/domain"
	"github.com/siriphobmean/next-crud/internal/core/ports"
	"github.com/siriphobmean/next-crud/internal/infrastructure/db/repotest"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "accounts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_Contract(t *testing.T) {
	repotest.Run(t, func(t *testing.T) ports.AccountRepository { return openTestStore(t) })
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.db")
	ctx := context.Background()

	first, err := Open(path)
	require.NoError(t, err)
	created, err := first.Create(ctx, &domain.Account{Name: "Ann", Email: "ann@x.com", CredentialHash: "h", Role: domain.RoleUser})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	got, err := second.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "ann@x.com", got.Email)
	require.NoError(t, second.Ping(ctx))
}

func TestStore_SearchTreatsWildcardsLiterally(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, &domain.Account{Name: "100% Ann", Email: "ann@x.com", CredentialHash: "h", Role: domain.RoleUser})
	require.NoError(t, err)
	_, err = store.Create(ctx, &domain.Account{Name: "Bob", Email: "bob@x.com", CredentialHash: "h", Role: domain.RoleUser})
	require.NoError(t, err)

	got, err := store.List(ctx, ports.ListAccountsFilter{Search: "%"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "100% Ann", got[0].Name)
}

func TestStore_RejectsUnknownRole(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Create(context.Background(), &domain.Account{Name: "Ann", Email: "ann@x.com", CredentialHash: "h", Role: "root"})
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrDuplicateEmail)
}
