package joseauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateEdDSAKeyPairSignAndVerify(t *testing.T) {
	signer, verifier, err := GenerateEdDSAKeyPair()
	require.NoError(t, err)
	assert.Equal(t, AlgEdDSA, signer.Alg())

	sig, err := signer.Sign([]byte("payload"))
	require.NoError(t, err)

	err = verifier.Verify(AlgEdDSA, []byte("payload"), sig)
	assert.NoError(t, err)
}

func TestVerifyRejectsWrongAlgorithm(t *testing.T) {
	_, verifier, err := GenerateEdDSAKeyPair()
	require.NoError(t, err)

	sig := make([]byte, 64)
	err = verifier.Verify("ES256", []byte("payload"), sig)
	assert.Error(t, err)
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	signer, verifier, err := GenerateEdDSAKeyPair()
	require.NoError(t, err)

	sig, err := signer.Sign([]byte("payload"))
	require.NoError(t, err)
	sig[0] ^= 0xFF

	err = verifier.Verify(AlgEdDSA, []byte("payload"), sig)
	assert.Error(t, err)
}

func TestNewEdDSASignerRejectsWrongKeySize(t *testing.T) {
	_, err := NewEdDSASigner(make([]byte, 10))
	assert.Error(t, err)
}
