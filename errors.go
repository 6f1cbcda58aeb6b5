package accounts

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Stable text codes attached to rich errors so API clients can branch
// without string matching on messages.
const (
	TextCodeTokenExpired    = "token_expired"
	TextCodeTokenMalformed  = "token_malformed"
	TextCodeTokenNotFound   = "token_not_found"
	TextCodeSigningError    = "signing_error"
	TextCodeStoreError      = "store_error"
	TextCodeUserExists      = "user_exists"
	TextCodeBadCredentials  = "bad_credentials"
	TextCodeNotEligible     = "not_eligible"
	TextCodeUserNotFound    = "user_not_found"
	TextCodeSessionNotFound = "session_not_found"
)

// ErrTokenExpired is returned when a token fails validation on expiry.
var ErrTokenExpired = errors.New("Invalid or expired token", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned when a token cannot be parsed or its
// signature does not verify.
var ErrTokenMalformed = errors.New("Invalid or expired token", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMissing is returned when a request carries no bearer token.
var ErrTokenMissing = errors.New("Token is not provided", errors.CategoryAuth).
	WithTextCode(TextCodeTokenNotFound).
	WithCode(errors.CodeUnauthorized)

// ErrSessionNotFound is returned when a verified token has no backing
// session row, e.g. after logout or a newer login elsewhere.
var ErrSessionNotFound = errors.New("Token not found", errors.CategoryAuth).
	WithTextCode(TextCodeSessionNotFound).
	WithCode(errors.CodeUnauthorized)

// ErrMissingSigningKey is returned when the token service was configured
// without a signing secret.
var ErrMissingSigningKey = errors.New("missing token signing key", errors.CategoryInternal).
	WithTextCode(TextCodeSigningError).
	WithCode(errors.CodeInternal)

// ErrUserExists is returned on registration with a taken handle.
var ErrUserExists = errors.New("User already exists, please use another username", errors.CategoryConflict).
	WithTextCode(TextCodeUserExists).
	WithCode(errors.CodeConflict)

// ErrBadCredentials is returned on login with an unknown handle or a
// password mismatch. Same error for both, so callers cannot probe handles.
var ErrBadCredentials = errors.New("Invalid username or password", errors.CategoryAuth).
	WithTextCode(TextCodeBadCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrNotEligible is returned when an authenticated caller fails the
// admin-or-self ownership rule.
var ErrNotEligible = errors.New("You are not eligible for this operation", errors.CategoryAuthz).
	WithTextCode(TextCodeNotEligible).
	WithCode(errors.CodeForbidden)

// ErrUserNotFound is returned when a directory lookup misses.
var ErrUserNotFound = errors.New("User not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrUnableToMapClaims unable to get claims from token
var ErrUnableToMapClaims = errors.New("unable to map claims", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrNotReversible is returned by one-way codecs when asked to decode.
var ErrNotReversible = errors.New("credential scheme is not reversible", errors.CategoryOperation)

// IsNotFoundError reports whether err maps to a missing record.
func IsNotFoundError(err error) bool {
	return errors.IsNotFound(err)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode == TextCodeTokenExpired {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
