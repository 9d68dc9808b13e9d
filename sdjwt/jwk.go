package sdjwt

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"math/big"

	"github.com/halimath/jose/jws"
)

// verifierFromJWK builds a Verifier from a JWK object, the shape embedded
// under an issuer-signed payload's cnf.jwk (spec §4.9/§6). Only the key
// types this engine's issuer can produce are supported: OKP/Ed25519 (the
// primary case for this ecosystem) and the NIST curves halimath/jose's
// ECDSA signer/verifier pair covers.
func verifierFromJWK(jwk *OrderedMap) (Verifier, error) {
	ktyVal, ok := jwk.Get("kty")
	kty, _ := ktyVal.AsString()
	if !ok {
		return nil, newError(ErrUnknownKey, "jwk missing kty", nil)
	}

	switch kty {
	case "OKP":
		crvVal, _ := jwk.Get("crv")
		crv, _ := crvVal.AsString()
		if crv != "Ed25519" {
			return nil, newError(ErrUnknownKey, "unsupported OKP curve: "+crv, nil)
		}
		xVal, ok := jwk.Get("x")
		xStr, _ := xVal.AsString()
		if !ok {
			return nil, newError(ErrUnknownKey, "jwk missing x", nil)
		}
		pub, err := decodeB64URL(xStr)
		if err != nil {
			return nil, newError(ErrUnknownKey, "jwk x is not valid base64url", err)
		}
		v, err := NewEdDSAVerifier(pub)
		if err != nil {
			return nil, newError(ErrUnknownKey, "jwk x is not a valid Ed25519 public key", err)
		}
		return v, nil

	case "EC":
		return ecdsaVerifierFromJWK(jwk)

	default:
		return nil, newError(ErrUnknownKey, "unsupported jwk kty: "+kty, nil)
	}
}

func ecdsaVerifierFromJWK(jwk *OrderedMap) (Verifier, error) {
	crvVal, _ := jwk.Get("crv")
	crv, _ := crvVal.AsString()

	var curve elliptic.Curve
	var alg string
	var ctor func(*ecdsa.PublicKey) (jws.Verifier, error)
	switch crv {
	case "P-256":
		curve, alg, ctor = elliptic.P256(), "ES256", jws.ES256Verifier
	case "P-384":
		curve, alg, ctor = elliptic.P384(), "ES384", jws.ES384Verifier
	case "P-521":
		curve, alg, ctor = elliptic.P521(), "ES512", jws.ES512Verifier
	default:
		return nil, newError(ErrUnknownKey, "unsupported EC curve: "+crv, nil)
	}

	xVal, _ := jwk.Get("x")
	yVal, _ := jwk.Get("y")
	xStr, _ := xVal.AsString()
	yStr, _ := yVal.AsString()
	xBytes, err := decodeB64URL(xStr)
	if err != nil {
		return nil, newError(ErrUnknownKey, "jwk x is not valid base64url", err)
	}
	yBytes, err := decodeB64URL(yStr)
	if err != nil {
		return nil, newError(ErrUnknownKey, "jwk y is not valid base64url", err)
	}

	pub := &ecdsa.PublicKey{
		Curve: curve,
		X:     new(big.Int).SetBytes(xBytes),
		Y:     new(big.Int).SetBytes(yBytes),
	}

	inner, err := ctor(pub)
	if err != nil {
		return nil, newError(ErrUnknownKey, "failed to construct ECDSA verifier", err)
	}
	return &joseVerifierAdapter{inner: inner, alg: alg}, nil
}
