package sdjwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectDisclosureRoundTrip(t *testing.T) {
	disc, err := NewObjectDisclosure("c2FsdHNhbHRzYWx0c2FsdA", "given_name", StringValue("Alice"))
	require.NoError(t, err)

	parsed, err := ParseDisclosure(disc.Encoded())
	require.NoError(t, err)

	name, ok := parsed.ClaimName()
	require.True(t, ok)
	assert.Equal(t, "given_name", name)
	v, _ := parsed.Value().AsString()
	assert.Equal(t, "Alice", v)
	assert.True(t, disc.Equal(parsed))
}

func TestArrayDisclosureHasNoClaimName(t *testing.T) {
	disc, err := NewArrayDisclosure("c2FsdHNhbHRzYWx0c2FsdA", StringValue("DE"))
	require.NoError(t, err)

	_, ok := disc.ClaimName()
	assert.False(t, ok)
}

func TestNewObjectDisclosureRejectsReservedKey(t *testing.T) {
	_, err := NewObjectDisclosure("c2FsdA", "_sd", StringValue("x"))
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, ErrReservedKeyUsed, kind)
}

func TestParseDisclosureRejectsWrongArity(t *testing.T) {
	encoded := encodeB64URL([]byte(`["onlyonefield"]`))
	_, err := ParseDisclosure(encoded)
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, ErrMalformedDisclosure, kind)
}

func TestParseDisclosureRejectsReservedClaimName(t *testing.T) {
	encoded := encodeB64URL([]byte(`["c2FsdA","_sd_alg","x"]`))
	_, err := ParseDisclosure(encoded)
	require.Error(t, err)
}

func TestDisclosureDigestMatchesHashOfEncodedForm(t *testing.T) {
	disc, err := NewObjectDisclosure("c2FsdHNhbHRzYWx0c2FsdA", "email", StringValue("a@example.com"))
	require.NoError(t, err)

	d1, err := disc.Digest(SHA256, false)
	require.NoError(t, err)
	expected, err := digest(SHA256, false, []byte(disc.Encoded()))
	require.NoError(t, err)
	assert.Equal(t, expected, d1)
}
