package accounts

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenServiceImpl implements the TokenIssuer interface
type TokenServiceImpl struct {
	accessKey     []byte
	refreshKey    []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	issuer        string
	sessions      Sessions
	logger        Logger
}

// NewTokenService creates a new TokenIssuer instance. Sessions may be
// nil only when the service will never mint access tokens.
func NewTokenService(accessKey, refreshKey []byte, accessExpiry, refreshExpiry time.Duration, issuer string, sessions Sessions, logger Logger) TokenIssuer {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		accessKey:     accessKey,
		refreshKey:    refreshKey,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		issuer:        issuer,
		sessions:      sessions,
		logger:        logger,
	}
}

// WithLogger sets the logger, fluent interface
func (ts *TokenServiceImpl) WithLogger(logger Logger) *TokenServiceImpl {
	if logger != nil {
		ts.logger = logger
	}
	return ts
}

// IssueAccessToken signs a short lived access token and records it as
// the user's single active session, replacing whatever session the user
// held before. The signed token is only returned once the session row
// is in place.
func (ts *TokenServiceImpl) IssueAccessToken(ctx context.Context, identity Identity) (string, error) {
	if len(ts.accessKey) == 0 {
		return "", ErrMissingSigningKey
	}

	now := time.Now()
	claims := &AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   identity.ID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.accessExpiry)),
		},
		UID:      identity.ID(),
		UserRole: identity.Role(),
	}

	ensureTokenID(&claims.RegisteredClaims)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.accessKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign access token").
			WithTextCode(TextCodeSigningError)
	}

	userID, err := uuid.Parse(identity.ID())
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "identity has no usable ID").
			WithTextCode(TextCodeSigningError)
	}

	if _, err := ts.sessions.Replace(ctx, userID, signed); err != nil {
		ts.logger.Error("TokenService failed to persist session", "user_id", userID, "error", err)
		return "", err
	}

	return signed, nil
}

// IssueRefreshToken signs a long lived refresh token. The token is not
// tracked in the session store.
func (ts *TokenServiceImpl) IssueRefreshToken(identity Identity) (string, error) {
	if len(ts.refreshKey) == 0 {
		return "", ErrMissingSigningKey
	}

	now := time.Now()
	claims := &RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   identity.ID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.refreshExpiry)),
		},
		UID:       identity.ID(),
		UserRoles: identity.Role(),
	}

	ensureTokenID(&claims.RegisteredClaims)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.refreshKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign refresh token").
			WithTextCode(TextCodeSigningError)
	}

	return signed, nil
}

// Validate parses and validates an access token string, returning
// structured claims
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 1)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.accessKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).WithTextCode(ErrTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*AccessClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode or validate claims")
	return nil, ErrUnableToMapClaims
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
