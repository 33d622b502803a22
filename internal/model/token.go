package model

import (
	"time"
)

// Token types. A token is only accepted by the operation matching its type.
const (
	TokenTypeAccess        = "access"
	TokenTypeVerifyEmail   = "verify_email"
	TokenTypeResetPassword = "reset_password"
)

// TokenClaims is the payload carried by a signed token. Tokens are never
// persisted; everything needed to validate them travels in the string.
type TokenClaims struct {
	Type      string
	UserID    string
	ExpiresAt time.Time
}

func (c *TokenClaims) Is(tokenType string) bool {
	return c.Type == tokenType
}
