package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/siriphobmean/next-crud/internal/core/domain"
	"github.com/siriphobmean/next-crud/internal/core/ports"
)

const (
	DefaultCacheTTL = 5 * time.Minute
	DefaultPrefix   = "account:"
)

// CachedAccountRepository is a read-through cache for FindByID. Writes go to
// the wrapped repository first and then evict the cached entry. Redis errors
// are logged and never fail the call.
// Key format: <prefix><id>
type CachedAccountRepository struct {
	next   ports.AccountRepository
	client *redis.Client
	ttl    time.Duration
	prefix string
	log    zerolog.Logger
}

func NewCachedAccountRepository(next ports.AccountRepository, client *redis.Client, ttl time.Duration, prefix string, log zerolog.Logger) *CachedAccountRepository {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &CachedAccountRepository{next: next, client: client, ttl: ttl, prefix: prefix, log: log}
}

var _ ports.AccountRepository = (*CachedAccountRepository)(nil)

type cachedAccount struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	CredentialHash string    `json:"credential_hash"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

func (r *CachedAccountRepository) key(id int64) string {
	return fmt.Sprintf("%s%d", r.prefix, id)
}

// Ping checks the cache connection.
func (r *CachedAccountRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *CachedAccountRepository) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	if a, ok := r.get(ctx, id); ok {
		return a, nil
	}

	a, err := r.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.set(ctx, a)
	return a, nil
}

func (r *CachedAccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.next.FindByEmail(ctx, email)
}

func (r *CachedAccountRepository) List(ctx context.Context, f ports.ListAccountsFilter) ([]*domain.Account, error) {
	return r.next.List(ctx, f)
}

func (r *CachedAccountRepository) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	return r.next.Create(ctx, a)
}

func (r *CachedAccountRepository) Update(ctx context.Context, id int64, p domain.AccountPatch) (*domain.Account, error) {
	updated, err := r.next.Update(ctx, id, p)
	r.evict(ctx, id)
	return updated, err
}

func (r *CachedAccountRepository) Delete(ctx context.Context, id int64) error {
	err := r.next.Delete(ctx, id)
	r.evict(ctx, id)
	return err
}

func (r *CachedAccountRepository) get(ctx context.Context, id int64) (*domain.Account, bool) {
	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn().Err(err).Int64("account_id", id).Msg("account cache read failed")
		}
		return nil, false
	}

	var c cachedAccount
	if err := json.Unmarshal(raw, &c); err != nil {
		r.log.Warn().Err(err).Int64("account_id", id).Msg("account cache entry corrupt")
		r.evict(ctx, id)
		return nil, false
	}
	return &domain.Account{
		ID:             c.ID,
		Name:           c.Name,
		Email:          c.Email,
		CredentialHash: c.CredentialHash,
		Role:           domain.Role(c.Role),
		CreatedAt:      c.CreatedAt.UTC(),
	}, true
}

func (r *CachedAccountRepository) set(ctx context.Context, a *domain.Account) {
	raw, err := json.Marshal(cachedAccount{
		ID:             a.ID,
		Name:           a.Name,
		Email:          a.Email,
		CredentialHash: a.CredentialHash,
		Role:           string(a.Role),
		CreatedAt:      a.CreatedAt,
	})
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, r.key(a.ID), raw, r.ttl).Err(); err != nil {
		r.log.Warn().Err(err).Int64("account_id", a.ID).Msg("account cache write failed")
	}
}

func (r *CachedAccountRepository) evict(ctx context.Context, id int64) {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		r.log.Warn().Err(err).Int64("account_id", id).Msg("account cache evict failed")
	}
}
