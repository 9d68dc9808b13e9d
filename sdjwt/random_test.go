package sdjwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSaltHasMinimumEntropy(t *testing.T) {
	salt, err := generateSalt()
	require.NoError(t, err)

	decoded, err := decodeB64URL(salt)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(decoded)*8, 128)
}

func TestGenerateSaltIsNotConstant(t *testing.T) {
	a, err := generateSalt()
	require.NoError(t, err)
	b, err := generateSalt()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestShuffleStringsIsAPermutation(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	original := append([]string(nil), items...)

	err := shuffleStrings(items)
	require.NoError(t, err)

	assert.ElementsMatch(t, original, items)
}

func TestGenerateDecoyDigestProducesValidDigest(t *testing.T) {
	d, err := generateDecoyDigest(SHA256)
	require.NoError(t, err)
	decoded, err := decodeB64URL(d)
	require.NoError(t, err)
	assert.Len(t, decoded, 32)
}
