package dto

import (
	"time"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Name     string             `json:"name"`
	Email    string             `json:"email"`
	Password string             `json:"password"`
	Role     domain.AccountRole `json:"role"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountResponse wire representation (no password hash).
type AccountResponse struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Email  string             `json:"email"`
	Role   domain.AccountRole `json:"role"`
	Active bool               `json:"active"`
}

// AuthResponse bundles an account with its issued token.
type AuthResponse struct {
	Account   AccountResponse `json:"account"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
}
