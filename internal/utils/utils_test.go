package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	tok, err := NewSessionToken("s3cret", "admin", 30)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Token)

	op, err := ParseSessionToken("s3cret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", op)
}

func TestSessionTokenRejected(t *testing.T) {
	tok, err := NewSessionToken("s3cret", "admin", 30)
	require.NoError(t, err)

	_, err = ParseSessionToken("other", tok.Token)
	assert.Error(t, err)

	expired, err := NewSessionToken("s3cret", "admin", -5)
	require.NoError(t, err)
	_, err = ParseSessionToken("s3cret", expired.Token)
	assert.Error(t, err)

	_, err = ParseSessionToken("s3cret", "not-a-token")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("letmein", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "letmein"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	assert.False(t, VerifyPassword("", "letmein"))

	_, err = HashPassword("", bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrEmptyPassword)
}
