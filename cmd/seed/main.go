// Command seed creates the initial administrator account in the configured
// store. Running it again is harmless.
package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"

	"github.com/siriphobmean/next-crud/internal/core/domain"
	"github.com/siriphobmean/next-crud/internal/core/ports"
	"github.com/siriphobmean/next-crud/internal/core/service"
	"github.com/siriphobmean/next-crud/internal/core/validation"
	"github.com/siriphobmean/next-crud/internal/infrastructure/auth"
	"github.com/siriphobmean/next-crud/internal/infrastructure/storage"
	"github.com/siriphobmean/next-crud/internal/pkg/config"
	"github.com/siriphobmean/next-crud/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "next-crud-seed",
	})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.Seed.Password == "" {
		log.Fatal().Msg("SEED_PASSWORD is required")
	}

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open storage")
	}
	defer func() { _ = backend.Close() }()

	directory := service.NewDirectoryService(
		backend.Accounts,
		auth.NewPasswordCodec(cfg.Auth.BcryptCost),
		auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		validation.New(),
		log,
	)

	admin, err := directory.CreateAccount(ctx, ports.CreateAccountInput{
		Name:     cfg.Seed.Name,
		Email:    cfg.Seed.Email,
		Password: cfg.Seed.Password,
		Role:     string(domain.RoleAdmin),
	})
	switch {
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		log.Info().Str("email", cfg.Seed.Email).Msg("admin already exists; nothing to do")
	case err != nil:
		log.Error().Err(err).Msg("seed failed")
		_ = backend.Close()
		os.Exit(1)
	default:
		log.Info().Int64("id", admin.ID).Str("email", admin.Email).Msg("admin created")
	}
}
