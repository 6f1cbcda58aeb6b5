package accounts_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	accounts "github.com/goliatone/go-accounts"
)

func TestNewTokenService(t *testing.T) {
	accessKey := []byte("test-access-key")
	refreshKey := []byte("test-refresh-key")

	t.Run("creates token service with logger", func(t *testing.T) {
		logger := &MockLogger{}
		service := accounts.NewTokenService(accessKey, refreshKey, time.Hour, 24*time.Hour, "test-issuer", &MockSessions{}, logger)
		assert.NotNil(t, service)
	})

	t.Run("creates token service with nil logger", func(t *testing.T) {
		service := accounts.NewTokenService(accessKey, refreshKey, time.Hour, 24*time.Hour, "test-issuer", &MockSessions{}, nil)
		assert.NotNil(t, service)
	})
}

func TestTokenService_IssueAccessToken(t *testing.T) {
	accessKey := []byte("test-access-key")
	refreshKey := []byte("test-refresh-key")
	issuer := "test-issuer"
	userID := uuid.New()

	identity := &MockIdentity{}
	identity.On("ID").Return(userID.String())
	identity.On("Role").Return("ADMIN")

	t.Run("signs token and replaces the session", func(t *testing.T) {
		sessions := &MockSessions{}
		sessions.On("Replace", mock.Anything, userID, mock.AnythingOfType("string")).
			Return(&accounts.Session{UserID: userID}, nil)

		service := accounts.NewTokenService(accessKey, refreshKey, time.Hour, 24*time.Hour, issuer, sessions, nil)

		tokenString, err := service.IssueAccessToken(context.Background(), identity)

		assert.NoError(t, err)
		assert.NotEmpty(t, tokenString)
		sessions.AssertCalled(t, "Replace", mock.Anything, userID, tokenString)

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
			return accessKey, nil
		})

		assert.NoError(t, err)
		assert.True(t, token.Valid)
		assert.Equal(t, userID.String(), claims["id"])
		assert.Equal(t, "ADMIN", claims["role"])
		assert.Equal(t, issuer, claims["iss"])
		assert.NotContains(t, claims, "roles")
	})

	t.Run("fails without a signing key", func(t *testing.T) {
		sessions := &MockSessions{}
		service := accounts.NewTokenService(nil, refreshKey, time.Hour, 24*time.Hour, issuer, sessions, nil)

		tokenString, err := service.IssueAccessToken(context.Background(), identity)

		assert.Error(t, err)
		assert.Empty(t, tokenString)
		sessions.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("fails when the session store rejects the replacement", func(t *testing.T) {
		sessions := &MockSessions{}
		sessions.On("Replace", mock.Anything, userID, mock.AnythingOfType("string")).
			Return(nil, assert.AnError)

		logger := &MockLogger{}
		logger.On("Error", mock.Anything, mock.Anything).Return()

		service := accounts.NewTokenService(accessKey, refreshKey, time.Hour, 24*time.Hour, issuer, sessions, logger)

		tokenString, err := service.IssueAccessToken(context.Background(), identity)

		assert.Error(t, err)
		assert.Empty(t, tokenString)
	})
}

func TestTokenService_IssueRefreshToken(t *testing.T) {
	accessKey := []byte("test-access-key")
	refreshKey := []byte("test-refresh-key")
	userID := uuid.New()

	identity := &MockIdentity{}
	identity.On("ID").Return(userID.String())
	identity.On("Role").Return("MANAGER")

	t.Run("signs with the refresh key and the historical claim name", func(t *testing.T) {
		sessions := &MockSessions{}
		service := accounts.NewTokenService(accessKey, refreshKey, time.Hour, 24*time.Hour, "test-issuer", sessions, nil)

		tokenString, err := service.IssueRefreshToken(identity)

		assert.NoError(t, err)
		assert.NotEmpty(t, tokenString)

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
			return refreshKey, nil
		})

		assert.NoError(t, err)
		assert.True(t, token.Valid)
		assert.Equal(t, userID.String(), claims["id"])
		assert.Equal(t, "MANAGER", claims["roles"])
		assert.NotContains(t, claims, "role")

		// No session row tracks refresh tokens.
		sessions.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything, mock.Anything)
		sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("refresh tokens do not validate as access tokens", func(t *testing.T) {
		service := accounts.NewTokenService(accessKey, refreshKey, time.Hour, 24*time.Hour, "test-issuer", &MockSessions{}, nil)

		tokenString, err := service.IssueRefreshToken(identity)
		assert.NoError(t, err)

		_, err = service.Validate(tokenString)
		assert.Error(t, err)
	})

	t.Run("fails without a signing key", func(t *testing.T) {
		service := accounts.NewTokenService(accessKey, nil, time.Hour, 24*time.Hour, "test-issuer", &MockSessions{}, nil)

		tokenString, err := service.IssueRefreshToken(identity)

		assert.Error(t, err)
		assert.Empty(t, tokenString)
	})
}

func TestTokenService_Validate(t *testing.T) {
	accessKey := []byte("test-access-key")
	refreshKey := []byte("test-refresh-key")
	userID := uuid.New()

	identity := &MockIdentity{}
	identity.On("ID").Return(userID.String())
	identity.On("Role").Return("RECEPTIONIST")

	newService := func(accessExpiry time.Duration) accounts.TokenIssuer {
		sessions := &MockSessions{}
		sessions.On("Replace", mock.Anything, mock.Anything, mock.Anything).
			Return(&accounts.Session{}, nil)
		return accounts.NewTokenService(accessKey, refreshKey, accessExpiry, 24*time.Hour, "test-issuer", sessions, nil)
	}

	t.Run("accepts a token it issued", func(t *testing.T) {
		service := newService(time.Hour)

		tokenString, err := service.IssueAccessToken(context.Background(), identity)
		assert.NoError(t, err)

		claims, err := service.Validate(tokenString)

		assert.NoError(t, err)
		assert.Equal(t, userID.String(), claims.UserID())
		assert.Equal(t, "RECEPTIONIST", claims.Role())
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		service := newService(-time.Minute)

		tokenString, err := service.IssueAccessToken(context.Background(), identity)
		assert.NoError(t, err)

		_, err = service.Validate(tokenString)

		assert.Error(t, err)
		assert.True(t, accounts.IsTokenExpiredError(err))
	})

	t.Run("rejects a token signed with a different key", func(t *testing.T) {
		service := newService(time.Hour)

		sessions := &MockSessions{}
		sessions.On("Replace", mock.Anything, mock.Anything, mock.Anything).
			Return(&accounts.Session{}, nil)
		other := accounts.NewTokenService([]byte("other-key"), refreshKey, time.Hour, 24*time.Hour, "test-issuer", sessions, nil)

		tokenString, err := other.IssueAccessToken(context.Background(), identity)
		assert.NoError(t, err)

		_, err = service.Validate(tokenString)
		assert.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		service := newService(time.Hour)

		_, err := service.Validate("not-a-token")
		assert.Error(t, err)
		assert.True(t, accounts.IsMalformedError(err))
		assert.False(t, accounts.IsTokenExpiredError(err))
	})
}
