package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	secret := "test-secret"

	tokenString, err := GenerateJWT(42, secret, 15)
	require.NoError(t, err)

	claims, err := ValidateJWT(tokenString, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "rosterup", claims.Issuer)
}

func TestValidateJWTRejections(t *testing.T) {
	secret := "test-secret"
	tokenString, err := GenerateJWT(42, secret, 15)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := ValidateJWT(tokenString, "other-secret")
		assert.Error(t, err)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := ValidateJWT("", secret)
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		expired, err := GenerateJWT(42, secret, -1)
		require.NoError(t, err)
		_, err = ValidateJWT(expired, secret)
		assert.EqualError(t, err, "token has expired")
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := ValidateJWT("not.a.jwt", secret)
		assert.Error(t, err)
	})
}
