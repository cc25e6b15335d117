package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/siriphobmean/next-crud/internal/core/domain"
)

// Error body keys. The auth routes and GET /users/{id} answer with "error";
// the account mutations answer with "message".
const (
	keyError   = "error"
	keyMessage = "message"
)

// Stable error codes carried next to the message.
const (
	CodeOK                 = "ok"
	CodeValidation         = "ValidationError"
	CodeEmailAlreadyExists = "EmailAlreadyExists"
	CodeAccountNotFound    = "AccountNotFound"
	CodeInvalidCredentials = "InvalidCredentials"
	CodeTokenInvalid       = "TokenInvalid"
	CodeInternal           = "InternalError"
)

var (
	errInvalidPayload = domain.NewValidationError("body", "Invalid request body")
	errInvalidID      = domain.NewValidationError("id", "Invalid user id")
)

// Classify maps a directory error onto an HTTP status, code and client
// message. ok is false for anything that must not be shown to the client.
func Classify(err error) (status int, code, msg string, ok bool) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, CodeValidation, ve.Message, true
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return http.StatusBadRequest, CodeEmailAlreadyExists, "Email already exists", true
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, CodeAccountNotFound, "User not found", true
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, CodeInvalidCredentials, "Invalid password", true
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, CodeTokenInvalid, "Token expired", true
	case errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusUnauthorized, CodeTokenInvalid, "Invalid token", true
	}
	return http.StatusInternalServerError, CodeInternal, "internal server error", false
}

// resultCode is the metrics label for err.
func resultCode(err error) string {
	if err == nil {
		return CodeOK
	}
	_, code, _, _ := Classify(err)
	return code
}

// writeError renders a known error under key. Unknown errors are returned so
// the central error handler logs them and answers 500.
func writeError(c echo.Context, key string, err error) error {
	status, code, msg, ok := Classify(err)
	if !ok {
		return err
	}
	return c.JSON(status, map[string]string{key: msg, "code": code})
}
