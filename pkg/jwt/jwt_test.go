package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateParentToken(t *testing.T) {
	svc := NewService("test-secret", time.Minute)

	token, err := svc.GenerateParentToken()
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, RoleParent, claims.Role)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := NewService("secret-a", time.Minute).GenerateParentToken()
	require.NoError(t, err)

	_, err = NewService("secret-b", time.Minute).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateExpiredToken(t *testing.T) {
	svc := NewService("test-secret", -time.Minute)

	token, err := svc.GenerateParentToken()
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateGarbageToken(t *testing.T) {
	svc := NewService("test-secret", time.Minute)
	_, err := svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
