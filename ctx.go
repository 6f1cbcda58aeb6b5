package accounts

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithClaimsContext sets the AuthClaims in the given context. The gate
// middleware stores the verified claims here so code holding only a
// context.Context can still see who is calling.
func WithClaimsContext(r context.Context, claims AuthClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// GetRequestClaims extracts the AuthClaims a gate middleware stored in
// the request locals.
func GetRequestClaims(c *fiber.Ctx, key string) (AuthClaims, bool) {
	if key == "" {
		key = "user" // Default key used by the gate middleware
	}
	raw := c.Locals(key)
	if raw == nil {
		return nil, false
	}
	claims, ok := raw.(AuthClaims)
	return claims, ok
}
