package models

import "github.com/golang-jwt/jwt/v5"

// AuthClaims represents the JWT claims issued by the external identity
// provider. Only identity extraction happens here; authorization decisions
// are ownership checks in the repositories.
type AuthClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"` // "authenticated" or "anon"
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *AuthClaims) GetUserID() string {
	return c.Subject
}
