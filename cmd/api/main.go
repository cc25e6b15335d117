// @title                       User Directory API
// @version                     1.0
// @description                 Registration, login and user management.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/siriphobmean/next-crud/internal/api"
	"github.com/siriphobmean/next-crud/internal/core/service"
	"github.com/siriphobmean/next-crud/internal/core/validation"
	"github.com/siriphobmean/next-crud/internal/infrastructure/auth"
	"github.com/siriphobmean/next-crud/internal/infrastructure/storage"
	"github.com/siriphobmean/next-crud/internal/pkg/config"
	"github.com/siriphobmean/next-crud/pkg/logger"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "next-crud-api",
	})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.Auth.JWTSecret == config.FallbackJWTSecret {
		log.Warn().Msg("JWT_SECRET not set; using the development fallback")
	}

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx := context.Background()

	backend, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Error().Err(err).Msg("closing storage")
		}
	}()

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	directory := service.NewDirectoryService(
		backend.Accounts,
		auth.NewPasswordCodec(cfg.Auth.BcryptCost),
		tokens,
		validation.New(),
		log.With().Str("component", "directory").Logger(),
	)

	e := api.NewRouter(api.Options{
		Directory:         directory,
		Verifier:          tokens,
		Logger:            log,
		HealthChecks:      backend.Checks,
		UsersRequireToken: cfg.Auth.UsersRequireToken,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("driver", cfg.Store.Driver).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctxShutdown); err != nil {
		return err
	}
	log.Info().Msg("server exited properly")
	return nil
}
