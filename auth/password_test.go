package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordsHashAndCheck(t *testing.T) {
	p := NewPasswords(bcrypt.MinCost)

	hash, err := p.Hash("Secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret123", hash)

	ok, err := p.Check(hash, "Secret123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Check(hash, "secret123")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordsChangeInvalidatesOld(t *testing.T) {
	p := NewPasswords(bcrypt.MinCost)

	first, err := p.Hash("OldSecret1")
	require.NoError(t, err)
	second, err := p.Hash("NewSecret2")
	require.NoError(t, err)

	ok, err := p.Check(second, "OldSecret1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.Check(first, "OldSecret1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPasswordsMalformedHash(t *testing.T) {
	p := NewPasswords(bcrypt.MinCost)
	ok, err := p.Check("not-a-bcrypt-hash", "whatever")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNewPasswordsClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewPasswords(0).Cost)
	assert.Equal(t, bcrypt.DefaultCost, NewPasswords(99).Cost)
	assert.Equal(t, 12, NewPasswords(12).Cost)
}
