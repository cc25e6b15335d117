package handler

import "github.com/siriphobmean/next-crud/internal/core/domain"

type createAccountRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// updateAccountRequest keeps absent and null fields apart from supplied ones.
type updateAccountRequest struct {
	Name     domain.Optional[string] `json:"name"`
	Email    domain.Optional[string] `json:"email"`
	Role     domain.Optional[string] `json:"role"`
	Password domain.Optional[string] `json:"password"`
}

// updateAccountDoc is the swagger shape of updateAccountRequest.
type updateAccountDoc struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty" enums:"user,admin,moderator"`
	Password string `json:"password,omitempty"`
}

type deleteResponse struct {
	Message string `json:"message"`
}
