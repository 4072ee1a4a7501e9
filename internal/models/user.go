package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is a sync-server account owning one change ledger.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
}

// LoginRequest authenticates an existing account.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the issued bearer token.
type AuthResponse struct {
	Token string `json:"token"`
}

// JWTClaims is the access-token claim set. UID identifies the ledger owner.
type JWTClaims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}
