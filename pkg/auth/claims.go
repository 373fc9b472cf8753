package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/prodataworld/prodata-backend/pkg/enums"
)

// TokenKind separates short-lived session tokens from long-lived API tokens.
type TokenKind string

const (
	TokenKindAccess TokenKind = "access"
	TokenKindAPI    TokenKind = "api"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uint
	Role   enums.UserRole
	Kind   TokenKind
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID uint           `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	Kind   TokenKind      `json:"kind,omitempty"`
	jwt.RegisteredClaims
}
