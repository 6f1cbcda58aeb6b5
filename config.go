package accounts

import (
	"os"
	"strconv"
	"time"

	"github.com/goliatone/go-errors"
)

// EnvConfig is a Config backed by environment variables.
type EnvConfig struct {
	AccessSigningKey       string
	RefreshSigningKey      string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	ContextKey             string
	AuthScheme             string
	Issuer                 string
	DSN                    string
	AllowedOrigins         string
	ListenAddr             string
	PasswordScheme         string
	PhoneRegion            string
	DeterministicIDs       bool
}

var _ Config = (*EnvConfig)(nil)

// FromEnv loads the service configuration from the environment,
// applying defaults for everything except the signing secrets.
func FromEnv() *EnvConfig {
	return &EnvConfig{
		AccessSigningKey:       os.Getenv("TOKEN_SECRET"),
		RefreshSigningKey:      os.Getenv("REFRESH_TOKEN_SECRET"),
		AccessTokenExpiration:  envDuration("JWT_ACCESS_TOKEN_EXPIRES_TIME", 15*time.Minute),
		RefreshTokenExpiration: envDuration("JWT_REFRESH_TOKEN_EXPIRES_TIME", 30*24*time.Hour),
		ContextKey:             envString("AUTH_CONTEXT_KEY", "user"),
		AuthScheme:             envString("AUTH_SCHEME", "Bearer"),
		Issuer:                 envString("TOKEN_ISSUER", "go-accounts"),
		DSN:                    envString("DATABASE_URL", "file:accounts.db?cache=shared"),
		AllowedOrigins:         envString("CLIENT_URL", "http://localhost:3000"),
		ListenAddr:             ":" + envString("PORT", "8080"),
		PasswordScheme:         envString("PASSWORD_SCHEME", SchemeLegacyBase64),
		PhoneRegion:            envString("PHONE_REGION", "IN"),
		DeterministicIDs:       envBool("USE_HASHID", false),
	}
}

// Validate checks the parts that have no safe default.
func (c *EnvConfig) Validate() error {
	if c.AccessSigningKey == "" {
		return errors.New("TOKEN_SECRET is required", errors.CategoryBadInput)
	}
	if c.RefreshSigningKey == "" {
		return errors.New("REFRESH_TOKEN_SECRET is required", errors.CategoryBadInput)
	}
	return nil
}

func (c *EnvConfig) GetAccessSigningKey() string { return c.AccessSigningKey }

func (c *EnvConfig) GetRefreshSigningKey() string { return c.RefreshSigningKey }

func (c *EnvConfig) GetAccessTokenExpiration() time.Duration { return c.AccessTokenExpiration }

func (c *EnvConfig) GetRefreshTokenExpiration() time.Duration { return c.RefreshTokenExpiration }

func (c *EnvConfig) GetContextKey() string { return c.ContextKey }

func (c *EnvConfig) GetAuthScheme() string { return c.AuthScheme }

func (c *EnvConfig) GetIssuer() string { return c.Issuer }

func (c *EnvConfig) GetDSN() string { return c.DSN }

func (c *EnvConfig) GetAllowedOrigins() string { return c.AllowedOrigins }

func (c *EnvConfig) GetListenAddr() string { return c.ListenAddr }

func (c *EnvConfig) GetPasswordScheme() string { return c.PasswordScheme }

func (c *EnvConfig) GetPhoneRegion() string { return c.PhoneRegion }

func (c *EnvConfig) GetDeterministicIDs() bool { return c.DeterministicIDs }

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
