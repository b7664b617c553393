package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashService_HashAndVerify(t *testing.T) {
	s := NewHashService()

	hash, err := s.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := s.Verify("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Verify("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashService_SaltsDiffer(t *testing.T) {
	s := NewHashService()

	h1, err := s.Hash("pw")
	require.NoError(t, err)
	h2, err := s.Hash("pw")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestHashService_Verify_InvalidFormat(t *testing.T) {
	s := NewHashService()

	for _, hash := range []string{"", "plaintext", "$bcrypt$something$else$x$y"} {
		_, err := s.Verify("pw", hash)
		assert.Error(t, err)
	}
}
