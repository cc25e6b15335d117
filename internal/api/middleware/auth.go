package middleware

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/siriphobmean/next-crud/internal/core/domain"
	"github.com/siriphobmean/next-crud/internal/core/ports"
)

// IdentityKey is the echo context key holding the verified *domain.Identity.
const IdentityKey = "identity"

// Auth verifies the bearer token and stores the identity on the request
// context. Failures are returned as errors wrapping domain.ErrTokenInvalid.
func Auth(verifier ports.SessionVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return fmt.Errorf("missing authorization header: %w", domain.ErrTokenInvalid)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return fmt.Errorf("invalid authorization header: %w", domain.ErrTokenInvalid)
			}

			identity, err := verifier.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				return err
			}

			c.Set(IdentityKey, identity)
			return next(c)
		}
	}
}
