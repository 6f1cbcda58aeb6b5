package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Username      string     `bun:"user_name,notnull,unique" json:"user_name,omitempty"`
	Mobile        string     `bun:"mobile" json:"mobile,omitempty"`
	Password      string     `bun:"password,notnull" json:"password,omitempty"`
	Role          UserRole   `bun:"role,notnull" json:"role,omitempty"`
	RefreshToken  string     `bun:"refresh_token" json:"refresh_token,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Sanitized returns a copy safe for public responses, with the stored
// credential and refresh token stripped.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.Password = ""
	out.RefreshToken = ""
	return &out
}

// PublicProfile is the shape we return from registration and login.
func (u *User) PublicProfile() map[string]any {
	return map[string]any{
		"name":      u.Name,
		"user_name": u.Username,
		"mobile":    u.Mobile,
		"role":      u.Role,
	}
}

// SessionTTL is how long a session row stays visible to lookups before
// the sweeper or the retention filter evicts it. Independent of the
// signed expiry inside the token itself.
const SessionTTL = 30 * 24 * time.Hour

// Session tracks the single active access token per user
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:ses"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Token         string     `bun:"token,notnull,unique" json:"token,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Expired reports whether the row fell out of the retention window.
func (s *Session) Expired(now time.Time) bool {
	if s.CreatedAt == nil {
		return false
	}
	return now.Sub(*s.CreatedAt) > SessionTTL
}
