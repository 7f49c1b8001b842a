package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-key"))
	require.NoError(t, err)

	return s
}

func TestNewToken(t *testing.T) {
	tokenString, err := NewToken("sid-1", time.Hour, "secret")
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)

	assert.Equal(t, "sid-1", claims[ClaimSessionID])
}

func TestNewToken_WrongSecretRejected(t *testing.T) {
	tokenString, err := NewToken("sid-1", time.Hour, "secret")
	require.NoError(t, err)

	_, err = jwt.Parse(tokenString, func(*jwt.Token) (interface{}, error) {
		return []byte("other"), nil
	})
	assert.Error(t, err)
}

func TestExpired(t *testing.T) {
	now := time.Now()

	assert.True(t, Expired(signed(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()}), now))
	assert.False(t, Expired(signed(t, jwt.MapClaims{"exp": now.Add(time.Minute).Unix()}), now))
	assert.False(t, Expired(signed(t, jwt.MapClaims{"sub": "alice"}), now))
	assert.False(t, Expired("opaque-token", now))
	assert.False(t, Expired("", now))
}
