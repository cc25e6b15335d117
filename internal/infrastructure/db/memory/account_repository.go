// Package memory is a process-local AccountRepository. Data is lost on exit.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/siriphobmean/next-crud/internal/core/domain"
	"github.com/siriphobmean/next-crud/internal/core/ports"
)

type AccountRepository struct {
	mu      sync.RWMutex
	byID    map[int64]*domain.Account
	byEmail map[string]int64
	nextID  int64
	now     func() time.Time
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		byID:    make(map[int64]*domain.Account),
		byEmail: make(map[string]int64),
		now:     time.Now,
	}
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

func clone(a *domain.Account) *domain.Account {
	c := *a
	return &c
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *AccountRepository) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[emailKey(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(r.byID[id]), nil
}

func (r *AccountRepository) FindByID(_ context.Context, id int64) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(a), nil
}

func (r *AccountRepository) List(_ context.Context, f ports.ListAccountsFilter) ([]*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(f.Search)
	out := make([]*domain.Account, 0, len(r.byID))
	for _, a := range r.byID {
		if f.Role != "" && a.Role != f.Role {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(a.Name), search) &&
			!strings.Contains(strings.ToLower(a.Email), search) {
			continue
		}
		out = append(out, clone(a))
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *AccountRepository) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := emailKey(a.Email)
	if _, exists := r.byEmail[key]; exists {
		return nil, domain.ErrDuplicateEmail
	}

	r.nextID++
	stored := clone(a)
	stored.ID = r.nextID
	stored.CreatedAt = r.now().UTC()

	r.byID[stored.ID] = stored
	r.byEmail[key] = stored.ID
	return clone(stored), nil
}

func (r *AccountRepository) Update(_ context.Context, id int64, p domain.AccountPatch) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	next := clone(current)
	if v, ok := p.Email.Get(); ok {
		key := emailKey(v)
		if owner, taken := r.byEmail[key]; taken && owner != id {
			return nil, domain.ErrDuplicateEmail
		}
		next.Email = v
	}
	if v, ok := p.Name.Get(); ok {
		next.Name = v
	}
	if v, ok := p.Role.Get(); ok {
		next.Role = v
	}
	if v, ok := p.CredentialHash.Get(); ok {
		next.CredentialHash = v
	}

	delete(r.byEmail, emailKey(current.Email))
	r.byEmail[emailKey(next.Email)] = id
	r.byID[id] = next
	return clone(next), nil
}

func (r *AccountRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.byEmail, emailKey(a.Email))
	delete(r.byID, id)
	return nil
}
