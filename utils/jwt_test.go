package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taller-inventory/config"
)

func TestTokenRoundTrip(t *testing.T) {
	config.App.JWTSecret = "secreto-de-prueba"
	t.Cleanup(func() { config.App.JWTSecret = "" })

	token, err := GenerateToken(9, "ana", "VENDEDOR")
	require.NoError(t, err)

	claims, err := VerifyToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 9, claims["user_id"])
	assert.Equal(t, "ana", claims["username"])
	assert.Equal(t, "VENDEDOR", claims["role"])
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	config.App.JWTSecret = "secreto-uno"
	token, err := GenerateToken(1, "ana", "VENDEDOR")
	require.NoError(t, err)

	config.App.JWTSecret = "secreto-dos"
	t.Cleanup(func() { config.App.JWTSecret = "" })

	_, err = VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	_, err := VerifyToken("no-es-un-jwt")
	assert.Error(t, err)
}
