package accounts

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an identity
type Identity interface {
	ID() string
	Username() string
	Role() string
}

// TokenIssuer mints and verifies the two token kinds.
type TokenIssuer interface {
	// IssueAccessToken signs a short lived token and replaces the
	// user's session row with the new token.
	IssueAccessToken(ctx context.Context, identity Identity) (string, error)
	// IssueRefreshToken signs a long lived token. Pure, no store access.
	IssueRefreshToken(identity Identity) (string, error)
	// Validate parses an access token and verifies signature and expiry.
	Validate(tokenString string) (AuthClaims, error)
}

// Config holds service options
type Config interface {
	GetAccessSigningKey() string
	GetRefreshSigningKey() string
	GetAccessTokenExpiration() time.Duration
	GetRefreshTokenExpiration() time.Duration
	GetContextKey() string
	GetAuthScheme() string
	GetIssuer() string
	GetDSN() string
	GetAllowedOrigins() string
	GetListenAddr() string
	GetPasswordScheme() string
	GetPhoneRegion() string
	GetDeterministicIDs() bool
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNTS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
