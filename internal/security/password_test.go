package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	digest, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, digest)

	match, err := hasher.Verify("correct horse battery staple", digest)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = hasher.Verify("wrong password", digest)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestPasswordHasher_SaltedDigestsDiffer(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	first, err := hasher.Hash("same input")
	require.NoError(t, err)
	second, err := hasher.Hash("same input")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	// Both still verify against the original plaintext.
	for _, digest := range []string{first, second} {
		match, err := hasher.Verify("same input", digest)
		require.NoError(t, err)
		assert.True(t, match)
	}
}

func TestPasswordHasher_MalformedDigest(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	match, err := hasher.Verify("anything", "not-a-bcrypt-digest")
	assert.False(t, match)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedHash)

	match, err = hasher.Verify("anything", "")
	assert.False(t, match)
	assert.ErrorIs(t, err, ErrMalformedHash)
}

func TestNewPasswordHasher_ClampsCost(t *testing.T) {
	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(0).cost)
	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(99).cost)
	assert.Equal(t, bcrypt.MinCost, NewPasswordHasher(bcrypt.MinCost).cost)
}
