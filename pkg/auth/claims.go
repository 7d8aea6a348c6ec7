package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenClaims represents the typed JWT shared with the core API. The
// engine only reads identity and campus scope from it.
type AccessTokenClaims struct {
	UserID     uuid.UUID `json:"user_id"`
	University string    `json:"university,omitempty"`
	jwt.RegisteredClaims
}
