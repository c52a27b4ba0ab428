package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/harambee/studentliving/internal/common/cnst"
	"github.com/harambee/studentliving/internal/common/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = strings.Repeat("k", 32)

func TestNewService(t *testing.T) {
	_, err := NewService(config.JWTConfig{Duration: time.Hour})
	assert.ErrorIs(t, err, ErrEmptySecretKey)
	_, err = NewService(config.JWTConfig{SecretKey: "short", Duration: time.Hour})
	assert.ErrorIs(t, err, ErrWeakSecretKey)
	_, err = NewService(config.JWTConfig{SecretKey: secret})
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestService_GenerateAndValidate(t *testing.T) {
	s, err := NewService(config.JWTConfig{SecretKey: secret, Duration: time.Hour})
	require.NoError(t, err)

	tok, expires, err := s.GenerateToken(42, cnst.RoleAdmin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	claims, err := s.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, cnst.RoleAdmin, claims.Role)
	assert.Equal(t, "42", claims.Subject)
}

func TestService_Rejects(t *testing.T) {
	s, err := NewService(config.JWTConfig{SecretKey: secret, Duration: time.Hour})
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		tok, _, err := s.GenerateToken(1, cnst.RoleStudent)
		require.NoError(t, err)
		later := *s
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err = later.ValidateToken(tok)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := NewService(config.JWTConfig{SecretKey: strings.Repeat("x", 32), Duration: time.Hour})
		require.NoError(t, err)
		tok, _, err := other.GenerateToken(1, cnst.RoleStudent)
		require.NoError(t, err)
		_, err = s.ValidateToken(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown role", func(t *testing.T) {
		tok, _, err := s.GenerateToken(1, cnst.Role("Janitor"))
		require.NoError(t, err)
		_, err = s.ValidateToken(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
