package joseauth

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/halimath/jose/jws"
)

// GenerateEdDSAKeyPair generates a fresh Ed25519 key pair and wraps it
// directly as a jws.Signer/jws.Verifier pair, for tests and for issuers
// that do not manage key custody themselves.
func GenerateEdDSAKeyPair() (jws.Signer, jws.Verifier, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("joseauth: generate Ed25519 key pair: %w", err)
	}
	signer, err := NewEdDSASigner(priv)
	if err != nil {
		return nil, nil, err
	}
	verifier, err := NewEdDSAVerifier(pub)
	if err != nil {
		return nil, nil, err
	}
	return signer, verifier, nil
}
