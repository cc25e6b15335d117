// Package repotest is the behavioural contract every AccountRepository
// adapter must satisfy. Adapter tests call Run with a factory that returns an
// empty repository.
package repotest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/siriphobmean/next-crud/internal/core/domain"
	"github.com/siriphobmean/next-crud/internal/core/ports"
)

// Factory returns a fresh, empty repository for one subtest.
type Factory func(t *testing.T) ports.AccountRepository

// Run executes the contract against repositories built by newRepo.
func Run(t *testing.T, newRepo Factory) {
	t.Helper()

	t.Run("create assigns id and timestamp", func(t *testing.T) { testCreate(t, newRepo(t)) })
	t.Run("duplicate email on create", func(t *testing.T) { testDuplicateCreate(t, newRepo(t)) })
	t.Run("find by id and email", func(t *testing.T) { testFind(t, newRepo(t)) })
	t.Run("list newest first with filters", func(t *testing.T) { testList(t, newRepo(t)) })
	t.Run("update partial fields", func(t *testing.T) { testUpdate(t, newRepo(t)) })
	t.Run("update email collisions", func(t *testing.T) { testUpdateEmail(t, newRepo(t)) })
	t.Run("update and delete missing id", func(t *testing.T) { testMissing(t, newRepo(t)) })
	t.Run("delete", func(t *testing.T) { testDelete(t, newRepo(t)) })
	t.Run("concurrent creates on one email", func(t *testing.T) { testConcurrentCreate(t, newRepo(t)) })
}

func account(name, email string, role domain.Role) *domain.Account {
	return &domain.Account{Name: name, Email: email, CredentialHash: "hash-" + name, Role: role}
}

func mustCreate(t *testing.T, repo ports.AccountRepository, a *domain.Account) *domain.Account {
	t.Helper()
	created, err := repo.Create(context.Background(), a)
	require.NoError(t, err)
	return created
}

func testCreate(t *testing.T, repo ports.AccountRepository) {
	before := time.Now().Add(-time.Second)

	a := mustCreate(t, repo, account("Ann", "ann@x.com", domain.RoleUser))
	b := mustCreate(t, repo, account("Bob", "bob@x.com", domain.RoleAdmin))

	require.NotZero(t, a.ID)
	require.NotZero(t, b.ID)
	require.NotEqual(t, a.ID, b.ID)
	require.True(t, a.CreatedAt.After(before), "created_at %v not after %v", a.CreatedAt, before)
	require.Equal(t, "Ann", a.Name)
	require.Equal(t, "ann@x.com", a.Email)
	require.Equal(t, "hash-Ann", a.CredentialHash)
	require.Equal(t, domain.RoleUser, a.Role)
	require.Equal(t, domain.RoleAdmin, b.Role)
}

func testDuplicateCreate(t *testing.T, repo ports.AccountRepository) {
	mustCreate(t, repo, account("Ann", "ann@x.com", domain.RoleUser))

	_, err := repo.Create(context.Background(), account("Other", "ann@x.com", domain.RoleUser))
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)

	// Storage-level uniqueness is case-insensitive as well.
	_, err = repo.Create(context.Background(), account("Other", "ANN@x.com", domain.RoleUser))
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)

	all, err := repo.List(context.Background(), ports.ListAccountsFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func testFind(t *testing.T, repo ports.AccountRepository) {
	ctx := context.Background()
	created := mustCreate(t, repo, account("Ann", "ann@x.com", domain.RoleModerator))

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Email, byID.Email)
	require.Equal(t, created.CredentialHash, byID.CredentialHash)
	require.Equal(t, domain.RoleModerator, byID.Role)
	require.WithinDuration(t, created.CreatedAt, byID.CreatedAt, time.Millisecond)

	byEmail, err := repo.FindByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	require.Equal(t, created.ID, byEmail.ID)

	_, err = repo.FindByID(ctx, created.ID+1000)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.FindByEmail(ctx, "ghost@x.com")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func testList(t *testing.T, repo ports.AccountRepository) {
	ctx := context.Background()

	empty, err := repo.List(ctx, ports.ListAccountsFilter{})
	require.NoError(t, err)
	require.Empty(t, empty)

	ann := mustCreate(t, repo, account("Ann", "ann@x.com", domain.RoleUser))
	bob := mustCreate(t, repo, account("Bob", "bob@example.org", domain.RoleAdmin))
	cat := mustCreate(t, repo, account("Cat", "cat@x.com", domain.RoleUser))

	all, err := repo.List(ctx, ports.ListAccountsFilter{})
	require.NoError(t, err)
	require.Equal(t, []int64{cat.ID, bob.ID, ann.ID}, ids(all))

	users, err := repo.List(ctx, ports.ListAccountsFilter{Role: domain.RoleUser})
	require.NoError(t, err)
	require.Equal(t, []int64{cat.ID, ann.ID}, ids(users))

	byName, err := repo.List(ctx, ports.ListAccountsFilter{Search: "bO"})
	require.NoError(t, err)
	require.Equal(t, []int64{bob.ID}, ids(byName))

	byDomain, err := repo.List(ctx, ports.ListAccountsFilter{Search: "x.com"})
	require.NoError(t, err)
	require.Equal(t, []int64{cat.ID, ann.ID}, ids(byDomain))

	none, err := repo.List(ctx, ports.ListAccountsFilter{Role: domain.RoleModerator})
	require.NoError(t, err)
	require.Empty(t, none)
}

func testUpdate(t *testing.T, repo ports.AccountRepository) {
	ctx := context.Background()
	created := mustCreate(t, repo, account("Ann", "ann@x.com", domain.RoleUser))

	updated, err := repo.Update(ctx, created.ID, domain.AccountPatch{Name: domain.Some("Annie")})
	require.NoError(t, err)
	require.Equal(t, "Annie", updated.Name)
	require.Equal(t, "ann@x.com", updated.Email)
	require.Equal(t, created.CredentialHash, updated.CredentialHash)
	require.Equal(t, domain.RoleUser, updated.Role)
	require.WithinDuration(t, created.CreatedAt, updated.CreatedAt, time.Millisecond)

	updated, err = repo.Update(ctx, created.ID, domain.AccountPatch{
		Role:           domain.Some(domain.RoleAdmin),
		CredentialHash: domain.Some("new-hash"),
	})
	require.NoError(t, err)
	require.Equal(t, "Annie", updated.Name)
	require.Equal(t, domain.RoleAdmin, updated.Role)
	require.Equal(t, "new-hash", updated.CredentialHash)

	unchanged, err := repo.Update(ctx, created.ID, domain.AccountPatch{})
	require.NoError(t, err)
	require.Equal(t, updated.Name, unchanged.Name)
	require.Equal(t, updated.CredentialHash, unchanged.CredentialHash)

	stored, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "new-hash", stored.CredentialHash)
}

func testUpdateEmail(t *testing.T, repo ports.AccountRepository) {
	ctx := context.Background()
	ann := mustCreate(t, repo, account("Ann", "ann@x.com", domain.RoleUser))
	bob := mustCreate(t, repo, account("Bob", "bob@x.com", domain.RoleUser))

	_, err := repo.Update(ctx, bob.ID, domain.AccountPatch{Email: domain.Some("ann@x.com")})
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)

	// Re-saving one's own email is not a collision.
	_, err = repo.Update(ctx, ann.ID, domain.AccountPatch{Email: domain.Some("ann@x.com")})
	require.NoError(t, err)

	moved, err := repo.Update(ctx, ann.ID, domain.AccountPatch{Email: domain.Some("ann@new.com")})
	require.NoError(t, err)
	require.Equal(t, "ann@new.com", moved.Email)

	_, err = repo.FindByEmail(ctx, "ann@x.com")
	require.ErrorIs(t, err, domain.ErrNotFound)

	// The released address can be taken by someone else.
	_, err = repo.Update(ctx, bob.ID, domain.AccountPatch{Email: domain.Some("ann@x.com")})
	require.NoError(t, err)
}

func testMissing(t *testing.T, repo ports.AccountRepository) {
	ctx := context.Background()

	_, err := repo.Update(ctx, 999, domain.AccountPatch{Name: domain.Some("x")})
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.Update(ctx, 999, domain.AccountPatch{})
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.ErrorIs(t, repo.Delete(ctx, 999), domain.ErrNotFound)
}

func testDelete(t *testing.T, repo ports.AccountRepository) {
	ctx := context.Background()
	ann := mustCreate(t, repo, account("Ann", "ann@x.com", domain.RoleUser))
	bob := mustCreate(t, repo, account("Bob", "bob@x.com", domain.RoleUser))

	require.NoError(t, repo.Delete(ctx, ann.ID))
	require.ErrorIs(t, repo.Delete(ctx, ann.ID), domain.ErrNotFound)

	_, err := repo.FindByID(ctx, ann.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	rest, err := repo.List(ctx, ports.ListAccountsFilter{})
	require.NoError(t, err)
	require.Equal(t, []int64{bob.ID}, ids(rest))

	// The email is free again.
	mustCreate(t, repo, account("Ann", "ann@x.com", domain.RoleUser))
}

func testConcurrentCreate(t *testing.T, repo ports.AccountRepository) {
	const racers = 8

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		dupes     int
		others    []error
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Create(context.Background(), account(fmt.Sprintf("racer-%d", i), "race@x.com", domain.RoleUser))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrDuplicateEmail):
				dupes++
			default:
				others = append(others, err)
			}
		}(i)
	}
	wg.Wait()

	require.Empty(t, others)
	require.Equal(t, 1, successes)
	require.Equal(t, racers-1, dupes)
}

func ids(accounts []*domain.Account) []int64 {
	out := make([]int64, len(accounts))
	for i, a := range accounts {
		out[i] = a.ID
	}
	return out
}
