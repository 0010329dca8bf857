package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims carries the identity attached to write requests. Tokens are
// minted by an external identity provider sharing the HS256 secret.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Scopes []string `json:"scopes,omitempty"`
	jwt.RegisteredClaims
}

// HasScope reports whether the token grants scope. Tokens without any scopes
// are treated as full-access.
func (c *JWTClaims) HasScope(scope string) bool {
	if c == nil {
		return false
	}
	if len(c.Scopes) == 0 {
		return true
	}
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
