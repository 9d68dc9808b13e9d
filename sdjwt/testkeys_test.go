package sdjwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// testKeyPair bundles a Signer/Verifier over a fresh Ed25519 key pair for
// tests, plus the JWK form used to populate cnf.jwk.
type testKeyPair struct {
	signer   Signer
	verifier Verifier
	jwk      Value
}

func newTestKeyPair(t *testing.T) testKeyPair {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	signer, err := NewEdDSASigner(priv, "")
	require.NoError(t, err)
	verifier, err := NewEdDSAVerifier(pub)
	require.NoError(t, err)

	jwk := NewOrderedMap()
	jwk.Set("kty", StringValue("OKP"))
	jwk.Set("crv", StringValue("Ed25519"))
	jwk.Set("x", StringValue(encodeB64URL(pub)))

	return testKeyPair{signer: signer, verifier: verifier, jwk: ObjectValue(jwk)}
}

// singleKeyResolver resolves every lookup to one fixed Verifier,
// regardless of the requested kid, for tests that issue with a single key.
type singleKeyResolver struct {
	v Verifier
}

func (r singleKeyResolver) ResolveKey(alg, kid string) (Verifier, error) {
	if alg != r.v.Algorithm() {
		return nil, newError(ErrUnknownKey, "no key for algorithm "+alg, nil)
	}
	return r.v, nil
}

func mustParseClaims(t *testing.T, json string) Value {
	t.Helper()
	v, err := ParseValue([]byte(json))
	require.NoError(t, err)
	return v
}
