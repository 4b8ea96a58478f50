package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateToken_RoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret-key")

	token, err := m.IssueToken("agent-7", "editor", time.Minute)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "agent-7", claims.Subject)
	assert.Equal(t, "editor", claims.Role)
}

func TestValidateToken_Expired(t *testing.T) {
	m := NewJWTManager("test-secret-key")

	token, err := m.IssueToken("agent-7", "editor", -time.Minute)
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	m := NewJWTManager("test-secret-key")
	other := NewJWTManager("another-secret")

	token, err := m.IssueToken("agent-7", "editor", time.Minute)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	m := NewJWTManager("test-secret-key")

	_, err := m.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}
