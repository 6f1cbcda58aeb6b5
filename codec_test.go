package accounts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accounts "github.com/goliatone/go-accounts"
)

func TestBase64Codec(t *testing.T) {
	codec := accounts.Base64Codec{}

	t.Run("round trips any printable password", func(t *testing.T) {
		passwords := []string{
			"secret123",
			"with spaces and punctuation!?",
			"ünïcødé-påsswörd",
			"日本語のパスワード",
			"a",
		}

		for _, password := range passwords {
			encoded, err := codec.Encode(password)
			require.NoError(t, err)
			assert.NotEqual(t, password, encoded)

			decoded, err := codec.Decode(encoded)
			require.NoError(t, err)
			assert.Equal(t, password, decoded)
		}
	})

	t.Run("rejects empty passwords", func(t *testing.T) {
		_, err := codec.Encode("")
		assert.Error(t, err)
	})

	t.Run("rejects stored values that are not base64", func(t *testing.T) {
		_, err := codec.Decode("%%% not base64 %%%")
		assert.Error(t, err)
	})

	t.Run("verifies matching credentials", func(t *testing.T) {
		encoded, err := codec.Encode("secret123")
		require.NoError(t, err)

		assert.NoError(t, codec.Verify("secret123", encoded))
	})

	t.Run("rejects mismatched credentials", func(t *testing.T) {
		encoded, err := codec.Encode("secret123")
		require.NoError(t, err)

		err = codec.Verify("wrong-password", encoded)
		assert.ErrorIs(t, err, accounts.ErrMismatchedHashAndPassword)
	})
}

func TestBcryptCodec(t *testing.T) {
	codec := accounts.BcryptCodec{}

	t.Run("verifies matching credentials", func(t *testing.T) {
		encoded, err := codec.Encode("secret123")
		require.NoError(t, err)
		assert.NotEqual(t, "secret123", encoded)

		assert.NoError(t, codec.Verify("secret123", encoded))
	})

	t.Run("rejects mismatched credentials", func(t *testing.T) {
		encoded, err := codec.Encode("secret123")
		require.NoError(t, err)

		err = codec.Verify("wrong-password", encoded)
		assert.ErrorIs(t, err, accounts.ErrMismatchedHashAndPassword)
	})

	t.Run("refuses to decode", func(t *testing.T) {
		_, err := codec.Decode("$2a$14$whatever")
		assert.ErrorIs(t, err, accounts.ErrNotReversible)
	})

	t.Run("rejects empty passwords", func(t *testing.T) {
		_, err := codec.Encode("")
		assert.Error(t, err)
	})
}

func TestNewPasswordCodec(t *testing.T) {
	t.Run("defaults to the legacy scheme", func(t *testing.T) {
		codec, err := accounts.NewPasswordCodec("")
		require.NoError(t, err)
		assert.IsType(t, accounts.Base64Codec{}, codec)
	})

	t.Run("selects bcrypt", func(t *testing.T) {
		codec, err := accounts.NewPasswordCodec(accounts.SchemeBcrypt)
		require.NoError(t, err)
		assert.IsType(t, accounts.BcryptCodec{}, codec)
	})

	t.Run("rejects unknown schemes", func(t *testing.T) {
		_, err := accounts.NewPasswordCodec("rot13")
		assert.Error(t, err)
	})
}
