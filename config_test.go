package accounts_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accounts "github.com/goliatone/go-accounts"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "access-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret")

	cfg := accounts.FromEnv()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "access-secret", cfg.GetAccessSigningKey())
	assert.Equal(t, "refresh-secret", cfg.GetRefreshSigningKey())
	assert.Equal(t, 15*time.Minute, cfg.GetAccessTokenExpiration())
	assert.Equal(t, 30*24*time.Hour, cfg.GetRefreshTokenExpiration())
	assert.Equal(t, "user", cfg.GetContextKey())
	assert.Equal(t, "Bearer", cfg.GetAuthScheme())
	assert.Equal(t, ":8080", cfg.GetListenAddr())
	assert.Equal(t, accounts.SchemeLegacyBase64, cfg.GetPasswordScheme())
	assert.Equal(t, "IN", cfg.GetPhoneRegion())
	assert.False(t, cfg.GetDeterministicIDs())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "access-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret")
	t.Setenv("JWT_ACCESS_TOKEN_EXPIRES_TIME", "5m")
	t.Setenv("JWT_REFRESH_TOKEN_EXPIRES_TIME", "48h")
	t.Setenv("PORT", "9090")
	t.Setenv("PASSWORD_SCHEME", accounts.SchemeBcrypt)
	t.Setenv("USE_HASHID", "true")

	cfg := accounts.FromEnv()

	assert.Equal(t, 5*time.Minute, cfg.GetAccessTokenExpiration())
	assert.Equal(t, 48*time.Hour, cfg.GetRefreshTokenExpiration())
	assert.Equal(t, ":9090", cfg.GetListenAddr())
	assert.Equal(t, accounts.SchemeBcrypt, cfg.GetPasswordScheme())
	assert.True(t, cfg.GetDeterministicIDs())
}

func TestFromEnvBadDurationFallsBack(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "access-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret")
	t.Setenv("JWT_ACCESS_TOKEN_EXPIRES_TIME", "soon")

	cfg := accounts.FromEnv()
	assert.Equal(t, 15*time.Minute, cfg.GetAccessTokenExpiration())
}

func TestValidateRequiresSecrets(t *testing.T) {
	cfg := &accounts.EnvConfig{}
	assert.Error(t, cfg.Validate())

	cfg.AccessSigningKey = "access-secret"
	assert.Error(t, cfg.Validate())

	cfg.RefreshSigningKey = "refresh-secret"
	assert.NoError(t, cfg.Validate())
}
