package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/siriphobmean/next-crud/internal/api/middleware"
	"github.com/siriphobmean/next-crud/internal/core/domain"
)

// ctxIdentity returns the identity the Auth middleware stored for this
// request. Its absence means the route was mounted without the middleware.
func ctxIdentity(c echo.Context) (*domain.Identity, error) {
	id, _ := c.Get(middleware.IdentityKey).(*domain.Identity)
	if id == nil {
		return nil, domain.ErrTokenInvalid
	}
	return id, nil
}

// pathID parses the {id} path parameter. Only positive integers are ids.
func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}
