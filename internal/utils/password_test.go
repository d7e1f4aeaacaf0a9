package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	encoded, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$"), "hash doit suivre le format standard")

	ok, err := VerifyPassword("correct horse battery staple", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("mauvais mot de passe", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_SaltIsUnique(t *testing.T) {
	a, err := HashPassword("velora")
	require.NoError(t, err)
	b, err := HashPassword("velora")
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "deux hashs du même mot de passe doivent différer par le sel")
}

func TestVerifyPassword_RejectsMalformedHash(t *testing.T) {
	_, err := VerifyPassword("velora", "pas-un-hash")
	assert.Error(t, err)

	_, err = VerifyPassword("velora", "$bcrypt$v=19$m=1,t=1,p=1$AAAA$BBBB")
	assert.Error(t, err)
}
