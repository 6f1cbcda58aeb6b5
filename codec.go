package accounts

import (
	"crypto/subtle"
	"encoding/base64"
	stderrors "errors"

	"github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

// Credential scheme identifiers, used by config to select a codec.
const (
	SchemeLegacyBase64 = "legacy-base64"
	SchemeBcrypt       = "bcrypt"
)

// ErrNoEmptyString is returned when a codec is handed an empty credential
var ErrNoEmptyString = errors.New("empty string not allowed", errors.CategoryBadInput)

// ErrMismatchedHashAndPassword is returned when a submitted credential
// does not match the stored one
var ErrMismatchedHashAndPassword = errors.New("credentials do not match", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// PasswordCodec transforms credentials between their submitted and stored
// forms. Verify compares a submitted plaintext against a stored encoding.
type PasswordCodec interface {
	Encode(plaintext string) (string, error)
	Decode(encoded string) (string, error)
	Verify(submitted, stored string) error
}

// NewPasswordCodec returns the codec for a scheme identifier.
func NewPasswordCodec(scheme string) (PasswordCodec, error) {
	switch scheme {
	case SchemeLegacyBase64, "":
		return Base64Codec{}, nil
	case SchemeBcrypt:
		return BcryptCodec{}, nil
	}
	return nil, errors.New("unknown password scheme: "+scheme, errors.CategoryBadInput)
}

// Base64Codec is the historical credential scheme: standard base64 over
// the UTF-8 bytes of the password. It is reversible, and kept as the
// default only for compatibility with existing stored rows. New
// deployments should prefer BcryptCodec.
type Base64Codec struct{}

// Encode base64 encodes the plaintext credential
func (Base64Codec) Encode(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrNoEmptyString
	}
	return base64.StdEncoding.EncodeToString([]byte(plaintext)), nil
}

// Decode is the exact inverse of Encode
func (Base64Codec) Decode(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryBadInput, "invalid stored credential")
	}
	return string(raw), nil
}

// Verify decodes the stored credential and compares it in constant time
func (c Base64Codec) Verify(submitted, stored string) error {
	plain, err := c.Decode(stored)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(plain), []byte(submitted)) != 1 {
		return ErrMismatchedHashAndPassword
	}
	return nil
}

// BcryptCodec stores credentials as salted bcrypt hashes. One way, so
// Decode always fails with ErrNotReversible.
type BcryptCodec struct{}

// Encode will generate a password hash
func (BcryptCodec) Encode(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrNoEmptyString
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), 14)
	return string(h), err
}

// Decode is not supported for one way hashes
func (BcryptCodec) Decode(string) (string, error) {
	return "", ErrNotReversible
}

// Verify will validate the given cleartext password matches the hash
func (BcryptCodec) Verify(submitted, stored string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(submitted)); err != nil {
		if stderrors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}
