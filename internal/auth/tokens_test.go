package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParse(t *testing.T) {
	t.Parallel()
	secret := []byte("test-secret")

	token, err := Sign(42, RoleSeller, secret)
	require.NoError(t, err)

	claims, err := Parse(token, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, RoleSeller, claims.Role)
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()

	token, err := Sign(42, RoleCustomer, []byte("right"))
	require.NoError(t, err)

	_, err = Parse(token, []byte("wrong"))
	require.Error(t, err)
}

func TestParse_Garbage(t *testing.T) {
	t.Parallel()
	_, err := Parse("not-a-token", []byte("secret"))
	require.Error(t, err)
}
