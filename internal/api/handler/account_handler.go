package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/siriphobmean/next-crud/internal/api/metrics"
	"github.com/siriphobmean/next-crud/internal/core/ports"
)

type AccountHandler struct {
	directory ports.DirectoryService
}

func NewAccountHandler(directory ports.DirectoryService) *AccountHandler {
	return &AccountHandler{directory: directory}
}

// List returns every account, newest first.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        role    query     string  false  "Filter by role"  Enums(user, admin, moderator)
// @Param        search  query     string  false  "Case-insensitive match on name or email"
// @Success      200     {array}   domain.PublicAccount
// @Failure      500     {object}  errorResponse
// @Router       /users [get]
func (h *AccountHandler) List(c echo.Context) error {
	start := time.Now()

	users, err := h.directory.ListAccounts(c.Request().Context(), ports.ListAccountsInput{
		Role:   c.QueryParam("role"),
		Search: c.QueryParam("search"),
	})
	metrics.ObserveAccount("list", resultCode(err), start)
	if err != nil {
		return writeError(c, keyError, err)
	}

	return c.JSON(http.StatusOK, users)
}

// Create adds an account with a chosen role.
//
// @Summary      Create user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createAccountRequest  true  "New user"
// @Success      201   {object}  domain.PublicAccount
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /users [post]
func (h *AccountHandler) Create(c echo.Context) error {
	start := time.Now()

	var req createAccountRequest
	if err := c.Bind(&req); err != nil {
		metrics.ObserveAccount("create", CodeValidation, start)
		return writeError(c, keyMessage, errInvalidPayload)
	}

	user, err := h.directory.CreateAccount(c.Request().Context(), ports.CreateAccountInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	metrics.ObserveAccount("create", resultCode(err), start)
	if err != nil {
		return writeError(c, keyMessage, err)
	}

	return c.JSON(http.StatusCreated, user)
}

// Get returns one account.
//
// @Summary      Get user
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  domain.PublicAccount
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [get]
func (h *AccountHandler) Get(c echo.Context) error {
	start := time.Now()

	id, err := pathID(c)
	if err != nil {
		metrics.ObserveAccount("get", CodeValidation, start)
		return writeError(c, keyError, err)
	}

	user, err := h.directory.GetAccount(c.Request().Context(), id)
	metrics.ObserveAccount("get", resultCode(err), start)
	if err != nil {
		return writeError(c, keyError, err)
	}

	return c.JSON(http.StatusOK, user)
}

// Update changes the supplied fields of an account. An empty or missing
// password keeps the current one.
//
// @Summary      Update user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      int               true  "User id"
// @Param        body  body      updateAccountDoc  true  "Fields to change"
// @Success      200   {object}  domain.PublicAccount
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /users/{id} [put]
func (h *AccountHandler) Update(c echo.Context) error {
	start := time.Now()

	id, err := pathID(c)
	if err != nil {
		metrics.ObserveAccount("update", CodeValidation, start)
		return writeError(c, keyMessage, err)
	}

	var req updateAccountRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		metrics.ObserveAccount("update", CodeValidation, start)
		return writeError(c, keyMessage, errInvalidPayload)
	}

	user, err := h.directory.UpdateAccount(c.Request().Context(), id, ports.UpdateAccountInput{
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		Password: req.Password,
	})
	metrics.ObserveAccount("update", resultCode(err), start)
	if err != nil {
		return writeError(c, keyMessage, err)
	}

	return c.JSON(http.StatusOK, user)
}

// Delete removes an account.
//
// @Summary      Delete user
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  deleteResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [delete]
func (h *AccountHandler) Delete(c echo.Context) error {
	start := time.Now()

	id, err := pathID(c)
	if err != nil {
		metrics.ObserveAccount("delete", CodeValidation, start)
		return writeError(c, keyMessage, err)
	}

	err = h.directory.DeleteAccount(c.Request().Context(), id)
	metrics.ObserveAccount("delete", resultCode(err), start)
	if err != nil {
		return writeError(c, keyMessage, err)
	}

	return c.JSON(http.StatusOK, deleteResponse{Message: "Deleted successfully"})
}
