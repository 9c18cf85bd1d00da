package util

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT(t *testing.T) {
	t.Run("Should round-trip the identity claims", func(t *testing.T) {
		token, err := GenerateJWT("u1", "ada", "admin", "secret", time.Hour)
		require.NoError(t, err)

		claims, err := ParseJWT(token, "secret")
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.UserID)
		assert.Equal(t, "ada", claims.Name)
		assert.Equal(t, "admin", claims.Role)
	})

	t.Run("Should reject a token signed with another secret", func(t *testing.T) {
		token, err := GenerateJWT("u1", "ada", "user", "secret", time.Hour)
		require.NoError(t, err)
		_, err = ParseJWT(token, "other")
		assert.Error(t, err)
	})

	t.Run("Should reject an expired token", func(t *testing.T) {
		token, err := GenerateJWT("u1", "ada", "user", "secret", -time.Minute)
		require.NoError(t, err)
		_, err = ParseJWT(token, "secret")
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("Should reject a token without user id", func(t *testing.T) {
		token, err := GenerateJWT("", "ada", "user", "secret", time.Hour)
		require.NoError(t, err)
		_, err = ParseJWT(token, "secret")
		assert.Error(t, err)
	})
}

func TestExtractToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	assert.Empty(t, ExtractToken(r))

	r.Header.Set("Authorization", "Bearer abc")
	assert.Equal(t, "abc", ExtractToken(r))

	r.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, ExtractToken(r))
}
