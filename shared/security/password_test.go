package security_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CyresSmith/projects-tracker-backend/shared/security"
)

func TestHashPassword(t *testing.T) {
	hash, err := security.HashPassword("Passw0rd")
	require.NoError(t, err)
	assert.NotEqual(t, "Passw0rd", hash)

	// A fresh hash uses a fresh salt.
	other, err := security.HashPassword("Passw0rd")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := security.HashPassword("Passw0rd")
	require.NoError(t, err)

	ok, err := security.VerifyPassword("Passw0rd", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = security.VerifyPassword("Wr0ngPass", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}
