// Package joseauth adapts this module's key material to the
// github.com/halimath/jose/jws Signer/Verifier interfaces. halimath/jose
// ships HMAC and ECDSA (ES256/384/512) out of the box but no EdDSA, yet the
// credential ecosystem this engine serves is Ed25519-keyed throughout,
// so this package supplies that missing algorithm in the same shape as
// halimath/jose's own ecdsaSigner/ecdsaVerifier.
package joseauth

import (
	"crypto/ed25519"
	"fmt"

	"github.com/halimath/jose/jws"
)

// AlgEdDSA is the JWA algorithm identifier for Ed25519 signatures, as
// registered by RFC 8037.
const AlgEdDSA jws.SignatureAlgorithm = "EdDSA"

type eddsaSigner struct {
	privateKey ed25519.PrivateKey
}

// NewEdDSASigner returns a jws.Signer producing Ed25519 signatures with
// privateKey, which must be a full 64-byte Ed25519 private key (seed plus
// public key).
func NewEdDSASigner(privateKey ed25519.PrivateKey) (jws.Signer, error) {
	if len(privateKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("joseauth: invalid Ed25519 private key size: expected %d bytes, got %d", ed25519.PrivateKeySize, len(privateKey))
	}
	return &eddsaSigner{privateKey: privateKey}, nil
}

func (s *eddsaSigner) Alg() jws.SignatureAlgorithm { return AlgEdDSA }

func (s *eddsaSigner) Sign(data []byte) ([]byte, error) {
	return ed25519.Sign(s.privateKey, data), nil
}

type eddsaVerifier struct {
	publicKey ed25519.PublicKey
}

// NewEdDSAVerifier returns a jws.Verifier checking Ed25519 signatures
// against publicKey.
func NewEdDSAVerifier(publicKey ed25519.PublicKey) (jws.Verifier, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("joseauth: invalid Ed25519 public key size: expected %d bytes, got %d", ed25519.PublicKeySize, len(publicKey))
	}
	return &eddsaVerifier{publicKey: publicKey}, nil
}

func (v *eddsaVerifier) Verify(alg jws.SignatureAlgorithm, data, signature []byte) error {
	if alg != AlgEdDSA {
		return fmt.Errorf("%w: expected EdDSA, got %s", jws.ErrInvalidSignature, alg)
	}
	if len(signature) != ed25519.SignatureSize {
		return fmt.Errorf("%w: invalid Ed25519 signature size", jws.ErrInvalidSignature)
	}
	if !ed25519.Verify(v.publicKey, data, signature) {
		return jws.ErrInvalidSignature
	}
	return nil
}
