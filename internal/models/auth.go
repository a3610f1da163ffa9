package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the JWT payload minted by the identity provider and
// validated by the portal with the shared secret.
type SessionClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}
