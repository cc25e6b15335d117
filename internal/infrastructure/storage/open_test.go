package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/siriphobmean/next-crud/internal/core/domain"
	"github.com/siriphobmean/next-crud/internal/pkg/config"
)

func testConfig(driver string) *config.Config {
	cfg := &config.Config{}
	cfg.Store.Driver = driver
	return cfg
}

func TestOpen_Memory(t *testing.T) {
	b, err := Open(context.Background(), testConfig(config.DriverMemory), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	require.Contains(t, b.Checks, "memory")
	_, err = b.Accounts.FindByID(context.Background(), 1)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOpen_SQLite(t *testing.T) {
	cfg := testConfig(config.DriverSQLite)
	cfg.Store.SQLitePath = filepath.Join(t.TempDir(), "next-crud.db")

	b, err := Open(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, b.Checks["sqlite"](context.Background()))
	_, err = b.Accounts.Create(context.Background(), &domain.Account{Name: "Ann", Email: "ann@x.com", CredentialHash: "h", Role: domain.RoleUser})
	require.NoError(t, err)

	require.NoError(t, b.Close())
	require.Error(t, b.Checks["sqlite"](context.Background()))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), testConfig("cassandra"), zerolog.Nop())
	require.ErrorContains(t, err, "unknown store driver")
}

func TestOpen_RedisUnreachableReleasesStore(t *testing.T) {
	cfg := testConfig(config.DriverSQLite)
	cfg.Store.SQLitePath = filepath.Join(t.TempDir(), "next-crud.db")
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = "127.0.0.1:1"

	_, err := Open(context.Background(), cfg, zerolog.Nop())
	require.ErrorContains(t, err, "redis ping")
}
