package handler

import "github.com/siriphobmean/next-crud/internal/core/domain"

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	User *domain.PublicAccount `json:"user"`
}

type loginResponse struct {
	Token string                `json:"token"`
	User  *domain.PublicAccount `json:"user"`
}

// errorResponse documents the error envelope for swagger; handlers write maps.
type errorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code"`
}
