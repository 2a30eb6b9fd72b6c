package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scentstore/internal/models"
)

func TestPasswordHashRoundtrip(t *testing.T) {
	m := NewManager("test-secret", 1, 4)

	hash, err := m.HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, m.CheckPassword(hash, "s3cret-pass"))
	assert.False(t, m.CheckPassword(hash, "wrong-pass"))
}

func TestTokenRoundtrip(t *testing.T) {
	m := NewManager("test-secret", 1, 4)

	token, err := m.IssueToken(42, models.RoleAdmin)
	require.NoError(t, err)

	claims, err := m.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	m := NewManager("test-secret", 1, 4)
	other := NewManager("other-secret", 1, 4)

	token, err := m.IssueToken(42, models.RoleCustomer)
	require.NoError(t, err)

	_, err = other.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.VerifyToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
