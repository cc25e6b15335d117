package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/siriphobmean/next-crud/internal/api/metrics"
	"github.com/siriphobmean/next-crud/internal/core/ports"
)

type AuthHandler struct {
	directory ports.DirectoryService
}

func NewAuthHandler(directory ports.DirectoryService) *AuthHandler {
	return &AuthHandler{directory: directory}
}

// Register creates a new account with the user role.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	start := time.Now()

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		metrics.ObserveAuth("register", CodeValidation, start)
		return writeError(c, keyError, errInvalidPayload)
	}

	user, err := h.directory.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	metrics.ObserveAuth("register", resultCode(err), start)
	if err != nil {
		return writeError(c, keyError, err)
	}

	return c.JSON(http.StatusCreated, userResponse{User: user})
}

// Login authenticates a user and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	start := time.Now()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		metrics.ObserveAuth("login", CodeValidation, start)
		return writeError(c, keyError, errInvalidPayload)
	}

	token, user, err := h.directory.Authenticate(c.Request().Context(), req.Email, req.Password)
	metrics.ObserveAuth("login", resultCode(err), start)
	if err != nil {
		return writeError(c, keyError, err)
	}

	return c.JSON(http.StatusOK, loginResponse{Token: token.Value, User: user})
}

// Me returns the account the bearer token belongs to, read fresh from the store.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  userResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	start := time.Now()

	identity, err := ctxIdentity(c)
	if err != nil {
		metrics.ObserveAuth("me", CodeTokenInvalid, start)
		return writeError(c, keyError, err)
	}

	user, err := h.directory.GetAccount(c.Request().Context(), identity.AccountID)
	metrics.ObserveAuth("me", resultCode(err), start)
	if err != nil {
		return writeError(c, keyError, err)
	}

	return c.JSON(http.StatusOK, userResponse{User: user})
}
