package accounts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents structured JWT claims with role checking
type AuthClaims interface {
	Subject() string
	UserID() string
	Role() string
	HasRole(role string) bool
	IsAtLeast(minRole string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// AccessClaims are the claims carried by short lived access tokens.
type AccessClaims struct {
	jwt.RegisteredClaims
	UID      string `json:"id,omitempty"`
	UserRole string `json:"role,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*AccessClaims)(nil)

// Subject returns the subject claim
func (c *AccessClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *AccessClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Role returns the user's role
func (c *AccessClaims) Role() string {
	return c.UserRole
}

// HasRole checks if the user has a specific role
func (c *AccessClaims) HasRole(role string) bool {
	return c.UserRole == role
}

// IsAtLeast checks if the user's role is at least the minimum required role
func (c *AccessClaims) IsAtLeast(minRole string) bool {
	return UserRole(c.UserRole).IsAtLeast(UserRole(minRole))
}

// Expires returns the expiration time
func (c *AccessClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *AccessClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// RefreshClaims are the claims carried by long lived refresh tokens.
// The role claim is serialized as "roles", unlike the access token's
// "role". The mismatch is historical and stored tokens depend on it, so
// both shapes must be kept as they are.
type RefreshClaims struct {
	jwt.RegisteredClaims
	UID       string `json:"id,omitempty"`
	UserRoles string `json:"roles,omitempty"`
}

// UserID returns the user ID
func (c *RefreshClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// Role returns the user's role
func (c *RefreshClaims) Role() string {
	return c.UserRoles
}
