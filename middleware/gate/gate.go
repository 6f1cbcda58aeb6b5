// Package gate provides the bearer-token middleware guarding protected
// routes. It validates the signed token and, in strict mode, requires a
// live session row backing it, so a structurally valid token stops
// working the moment its session is revoked.
package gate

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var (
	defaultTokenLookup = "header:" + fiber.HeaderAuthorization

	// ErrTokenMissing is returned when no token could be extracted from
	// the request.
	ErrTokenMissing = errors.New("Token is not provided")
	// ErrSessionNotFound is returned when the session check misses.
	ErrSessionNotFound = errors.New("Token not found")
)

// SessionCheck selects how much of the pipeline a route runs.
type SessionCheck int

const (
	// Strict requires extraction, validation and a live session row.
	Strict SessionCheck = iota
	// ClaimsOnly requires extraction and validation but skips the
	// session store, so revoked tokens still pass. Use only where the
	// handler does its own authorization checks against the claims.
	ClaimsOnly
	// None disables the gate entirely.
	None
)

// TokenValidator interface for validating tokens without import cycles.
// This mirrors the TokenIssuer.Validate method from the accounts package.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// AuthClaims interface for structured claims without import cycles.
// This mirrors the AuthClaims interface from the accounts package.
type AuthClaims interface {
	Subject() string
	UserID() string
	Role() string
	HasRole(role string) bool
	IsAtLeast(minRole string) bool
}

// SessionChecker reports whether a token has a live backing session.
type SessionChecker interface {
	CheckToken(c *fiber.Ctx, token string) error
}

// SessionCheckerFunc adapts a function to the SessionChecker interface.
type SessionCheckerFunc func(c *fiber.Ctx, token string) error

func (f SessionCheckerFunc) CheckToken(c *fiber.Ctx, token string) error {
	return f(c, token)
}

type Config struct {
	Filter       func(*fiber.Ctx) bool
	ErrorHandler func(*fiber.Ctx, error) error
	ContextKey   string
	TokenLookup  string
	AuthScheme   string
	SessionCheck SessionCheck
	// TokenValidator is required for token validation
	TokenValidator TokenValidator
	// SessionChecker is required when SessionCheck is Strict
	SessionChecker SessionChecker

	// MinimumRole specifies the minimum role level required (uses role hierarchy)
	MinimumRole string
	// RequiredRole specifies an exact role that must be present
	RequiredRole string

	// ContextEnricher runs after a token passes every check, letting the
	// host propagate the claims beyond the fiber locals, e.g. into the
	// request's context.Context for code that never sees a fiber.Ctx.
	ContextEnricher func(c *fiber.Ctx, claims AuthClaims)
}

// New returns the gate middleware for the given configuration.
func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		if cfg.SessionCheck == None {
			return c.Next()
		}

		raw, err := ExtractRawToken(c, cfg.getExtractors())
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		claims, err := cfg.TokenValidator.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		if cfg.SessionCheck == Strict {
			if err := cfg.SessionChecker.CheckToken(c, raw); err != nil {
				return cfg.ErrorHandler(c, ErrSessionNotFound)
			}
		}

		if err := performAuthorizationChecks(claims, cfg); err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, claims)
		c.Locals(cfg.ContextKey+":token", raw)

		if cfg.ContextEnricher != nil {
			cfg.ContextEnricher(c, claims)
		}

		return c.Next()
	}
}

// TryExtractClaims runs extraction and validation only, never touching
// the session store and never writing a response. Handlers that branch
// on identity without hard failing use this instead of the middleware.
func TryExtractClaims(c *fiber.Ctx, validator TokenValidator, config ...Config) (AuthClaims, bool) {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	raw, err := ExtractRawToken(c, cfg.getExtractors())
	if err != nil {
		return nil, false
	}

	claims, err := validator.Validate(raw)
	if err != nil {
		return nil, false
	}

	return claims, true
}

// ExtractRawToken runs the extractors in order and returns the first hit.
func ExtractRawToken(c *fiber.Ctx, extractors []TokenExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(c)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

func performAuthorizationChecks(claims AuthClaims, cfg Config) error {
	if cfg.RequiredRole != "" && !claims.HasRole(cfg.RequiredRole) {
		return fiber.NewError(fiber.StatusForbidden, "access denied: required role '"+cfg.RequiredRole+"' not found")
	}

	if cfg.MinimumRole != "" && !claims.IsAtLeast(cfg.MinimumRole) {
		return fiber.NewError(fiber.StatusForbidden, "access denied: minimum role '"+cfg.MinimumRole+"' required")
	}

	return nil
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = DefaultErrorHandler
	}

	if cfg.SessionCheck != None && cfg.TokenValidator == nil {
		panic("GATE: middleware configuration: TokenValidator is required.")
	}

	if cfg.SessionCheck == Strict && cfg.SessionChecker == nil {
		panic("GATE: middleware configuration: SessionChecker is required in strict mode.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

// DefaultErrorHandler renders the gate rejection body. Every failure is
// a 401, the message names the pipeline step that failed.
func DefaultErrorHandler(c *fiber.Ctx, err error) error {
	msg := "Invalid or expired token"
	switch {
	case errors.Is(err, ErrTokenMissing):
		msg = ErrTokenMissing.Error()
	case errors.Is(err, ErrSessionNotFound):
		msg = ErrSessionNotFound.Error()
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr.Code == fiber.StatusForbidden {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"isAuthenticated": true,
			"message":         fiberErr.Message,
		})
	}

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"isAuthenticated": false,
		"message":         msg,
	})
}

func (cfg *Config) getExtractors() []TokenExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

// GetExtractors parses a lookup definition of the form
// "header:Authorization,cookie:jwt,query:auth_token,param:token".
func GetExtractors(tokenLookup string, authSchemes ...string) []TokenExtractor {
	extractors := make([]TokenExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 {
		authScheme = authSchemes[0]
	}

	rootParts := strings.Split(tokenLookup, ",")
	for _, rootPart := range rootParts {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")
		if len(parts) < 2 {
			continue
		}

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, tokenFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, tokenFromQuery(parts[1]))
		case "param":
			extractors = append(extractors, tokenFromParam(parts[1]))
		case "cookie":
			extractors = append(extractors, tokenFromCookie(parts[1]))
		}
	}

	return extractors
}

type TokenExtractor func(c *fiber.Ctx) (string, error)

// tokenFromHeader returns a function that extracts the token from the request header.
func tokenFromHeader(header string, authScheme string) TokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		a := c.Get(header)
		authScheme = strings.TrimSpace(authScheme)
		l := len(authScheme)
		if l == 0 {
			return "", ErrTokenMissing
		}
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrTokenMissing
	}
}

// tokenFromQuery returns a function that extracts the token from the query string.
func tokenFromQuery(param string) TokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Query(param)
		if token == "" {
			return "", ErrTokenMissing
		}
		return token, nil
	}
}

// tokenFromParam returns a function that extracts the token from the url params.
func tokenFromParam(param string) TokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Params(param)
		if token == "" {
			return "", ErrTokenMissing
		}
		return token, nil
	}
}

// tokenFromCookie returns a function that extracts the token from the named cookie.
func tokenFromCookie(name string) TokenExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrTokenMissing
		}
		return token, nil
	}
}
