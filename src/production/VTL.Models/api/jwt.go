package api_models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config holds JWT configuration
type Config struct {
	SecretKey            string
	SessionTokenDuration time.Duration
	Issuer               string
}

// SessionClaims represents the JWT claims for a web session
type SessionClaims struct {
	jwt.RegisteredClaims
	AccountID string `json:"account_id"`
	TokenID   string `json:"token_id"`
}

// SessionToken is a minted session credential
type SessionToken struct {
	Token     string `json:"token"`
	TokenID   string `json:"token_id"`
	ExpiresAt int64  `json:"expires_at"`
}
