package models

import "github.com/golang-jwt/jwt/v5"

// IdentityClaims is the bearer token payload issued by the account store.
// The subject carries the user id.
type IdentityClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the caller resolved for a request.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
}
