package sdjwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestIsDeterministic(t *testing.T) {
	a, err := digest(SHA256, false, []byte("hello"))
	require.NoError(t, err)
	b, err := digest(SHA256, false, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDigestRejectsUnknownAlgorithm(t *testing.T) {
	_, err := digest(HashAlgorithm("sha-unknown"), false, []byte("x"))
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, ErrUnsupportedAlgorithm, kind)
}

func TestDigestRejectsWeakAlgorithmByDefault(t *testing.T) {
	_, err := digest(weakSHA1, false, []byte("x"))
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, ErrWeakAlgorithm, kind)
}

func TestDigestAllowsWeakAlgorithmWhenOverridden(t *testing.T) {
	_, err := digest(weakSHA1, true, []byte("x"))
	assert.NoError(t, err)
}

func TestNormalizeHashAlgorithmLowercases(t *testing.T) {
	assert.Equal(t, SHA256, normalizeHashAlgorithm("SHA-256"))
}
