package sdjwt

import (
	"fmt"
	"strings"

	"github.com/halimath/jose/jws"

	"github.com/sdjwtlabs/sdjwt-core/internal/joseauth"
)

// Signer is the opaque signing capability C4 requires: implementations
// never expose key material, only the ability to produce a signature over
// caller-supplied bytes under a named JWA algorithm. An issuer or holder
// wires a concrete Signer (e.g. from internal/joseauth) without this
// package ever touching a private key directly.
type Signer interface {
	// Algorithm returns the JWA "alg" identifier this signer produces,
	// e.g. "EdDSA", "ES256".
	Algorithm() string
	// KeyID returns the "kid" header value to advertise, or "" for none.
	KeyID() string
	Sign(data []byte) ([]byte, error)
}

// Verifier checks a signature over caller-supplied bytes for one fixed
// algorithm and key.
type Verifier interface {
	Algorithm() string
	Verify(data, signature []byte) error
}

// KeyResolver looks up the Verifier to use for a JWS, given its header's
// alg and kid. Implementations decide how kid maps to key material (a
// static map, a DID document, a JWKS fetch); this package never prescribes
// key custody, per spec §1 non-goals.
type KeyResolver interface {
	ResolveKey(alg string, kid string) (Verifier, error)
}

// deniedAlgorithms lists JWA "alg" values this package refuses to honor
// regardless of caller policy: "none" (no signature at all) and the plain
// HMAC algorithms, which imply a symmetric secret shared between issuer
// and verifier and so cannot back the asymmetric trust model SD-JWT
// issuance requires (spec §4.4/§6).
var deniedAlgorithms = map[string]bool{
	"none":   true,
	"HS256":  true,
	"HS384":  true,
	"HS512":  true,
}

func checkAlgorithmAllowed(alg string, allowed map[string]bool) error {
	if deniedAlgorithms[alg] {
		return newError(ErrAlgorithmNotAllowed, "algorithm is not permitted: "+alg, nil)
	}
	if allowed != nil && !allowed[alg] {
		return newError(ErrAlgorithmNotAllowed, "algorithm not in configured allow-list: "+alg, nil)
	}
	return nil
}

// signerAdapter satisfies jws.Signer by delegating to a Signer.
type signerAdapter struct{ s Signer }

func (a signerAdapter) Alg() jws.SignatureAlgorithm { return jws.SignatureAlgorithm(a.s.Algorithm()) }
func (a signerAdapter) Sign(data []byte) ([]byte, error) { return a.s.Sign(data) }

// CompactJWS wraps a parsed three-part compact JWS together with the
// decoded JOSE header as a Value, so callers can read typ/kid/alg and
// recover the original compact segments for constructs (like Key Binding's
// sd_hash) that hash over the raw compact string.
type CompactJWS struct {
	inner     *jws.JWS
	header    Value
	headerObj *OrderedMap
}

// SignJWS produces a compact JWS over payload, merging extraHeaders (e.g.
// "typ", "kid") into the JOSE header alongside the algorithm the signer
// reports. extraHeaders may be nil.
func SignJWS(signer Signer, extraHeaders *OrderedMap, payload []byte) (*CompactJWS, error) {
	if signer == nil {
		return nil, newError(ErrMalformedJws, "signer must not be nil", nil)
	}
	alg := signer.Algorithm()
	if err := checkAlgorithmAllowed(alg, nil); err != nil {
		return nil, err
	}

	headerBytes, err := buildHeaderJSON(alg, signer.KeyID(), extraHeaders)
	if err != nil {
		return nil, newError(ErrMalformedJws, "failed to build JWS header", err)
	}

	signed, err := signRaw(signerAdapter{s: signer}, headerBytes, payload)
	if err != nil {
		return nil, newError(ErrSignatureInvalid, "signing failed", err)
	}

	return fromInner(signed)
}

// ParseJWS decodes compact into header, payload, and signature components
// without verifying the signature. This is the form the holder uses to
// read _sd_alg from an otherwise-untrusted issuance string (spec §9).
func ParseJWS(compact string) (*CompactJWS, error) {
	inner, err := jws.ParseCompact(compact)
	if err != nil {
		return nil, newError(ErrMalformedJws, "failed to parse compact JWS", err)
	}
	return fromInner(inner)
}

func fromInner(inner *jws.JWS) (*CompactJWS, error) {
	headerObj, headerVal, err := rawHeaderToValue(inner)
	if err != nil {
		return nil, newError(ErrMalformedJws, "failed to decode JWS header", err)
	}
	return &CompactJWS{
		inner:     inner,
		header:    headerVal,
		headerObj: headerObj,
	}, nil
}

// Header returns the decoded JOSE header.
func (j *CompactJWS) Header() Value { return j.header }

// Alg returns the header's "alg" value.
func (j *CompactJWS) Alg() string { return j.headerString("alg") }

// KeyID returns the header's "kid" value, or "" if absent.
func (j *CompactJWS) KeyID() string { return j.headerString("kid") }

// headerString returns the string value of header field name, or "" if
// absent or not a string.
func (j *CompactJWS) headerString(name string) string {
	if j.headerObj == nil {
		return ""
	}
	if v, ok := j.headerObj.Get(name); ok {
		s, _ := v.AsString()
		return s
	}
	return ""
}

// Payload returns the JWS payload bytes.
func (j *CompactJWS) Payload() []byte { return j.inner.Payload() }

// Compact returns the three-part compact serialization.
func (j *CompactJWS) Compact() string { return j.inner.Compact() }

// Verify resolves a Verifier for this JWS's alg/kid via resolver and
// checks the signature, rejecting denied and (unless allowed) non-allow-
// listed algorithms. allowed may be nil to accept any non-denied alg.
func (j *CompactJWS) Verify(resolver KeyResolver, allowed map[string]bool) error {
	alg := j.Alg()
	if err := checkAlgorithmAllowed(alg, allowed); err != nil {
		return err
	}
	if resolver == nil {
		return newError(ErrUnknownKey, "no key resolver configured", nil)
	}
	verifier, err := resolver.ResolveKey(alg, j.KeyID())
	if err != nil {
		return newError(ErrUnknownKey, "failed to resolve verification key", err)
	}
	if verifier == nil {
		return newError(ErrUnknownKey, "resolver returned no verifier", nil)
	}
	if verifier.Algorithm() != alg {
		return newError(ErrAlgorithmNotAllowed, "resolved verifier algorithm mismatch", nil)
	}
	if err := j.inner.VerifySignature(singleAlgVerifier{alg: alg, v: verifier}); err != nil {
		return newError(ErrSignatureInvalid, "signature verification failed", err)
	}
	return nil
}

// singleAlgVerifier adapts a Verifier (fixed algorithm, fixed key) to
// jws.Verifier, which additionally receives the claimed alg to cross-check.
type singleAlgVerifier struct {
	alg string
	v   Verifier
}

func (s singleAlgVerifier) Verify(alg jws.SignatureAlgorithm, data, signature []byte) error {
	if string(alg) != s.alg {
		return fmt.Errorf("%w: alg mismatch", jws.ErrInvalidSignature)
	}
	return s.v.Verify(data, signature)
}

// NewEdDSASigner and NewEdDSAVerifier expose internal/joseauth's Ed25519
// capability through this package's Signer/Verifier interfaces, since
// callers of this package should not need to import internal packages.
func NewEdDSASigner(privateKeyRaw []byte, keyID string) (Signer, error) {
	inner, err := joseauth.NewEdDSASigner(privateKeyRaw)
	if err != nil {
		return nil, err
	}
	return &joseSignerAdapter{inner: inner, kid: keyID}, nil
}

func NewEdDSAVerifier(publicKeyRaw []byte) (Verifier, error) {
	inner, err := joseauth.NewEdDSAVerifier(publicKeyRaw)
	if err != nil {
		return nil, err
	}
	return &joseVerifierAdapter{inner: inner, alg: string(joseauth.AlgEdDSA)}, nil
}

type joseSignerAdapter struct {
	inner jws.Signer
	kid   string
}

func (a *joseSignerAdapter) Algorithm() string { return string(a.inner.Alg()) }
func (a *joseSignerAdapter) KeyID() string      { return a.kid }
func (a *joseSignerAdapter) Sign(data []byte) ([]byte, error) { return a.inner.Sign(data) }

type joseVerifierAdapter struct {
	inner jws.Verifier
	alg   string
}

func (a *joseVerifierAdapter) Algorithm() string { return a.alg }
func (a *joseVerifierAdapter) Verify(data, signature []byte) error {
	return a.inner.Verify(jws.SignatureAlgorithm(a.alg), data, signature)
}

// buildHeaderJSON produces the canonical JOSE header bytes for alg, kid,
// and any extra caller-supplied headers (e.g. "typ"), in insertion order
// with "alg" always first.
func buildHeaderJSON(alg, kid string, extra *OrderedMap) ([]byte, error) {
	h := NewOrderedMap()
	h.Set("alg", StringValue(alg))
	if extra != nil {
		for _, k := range extra.Keys() {
			if k == "alg" {
				continue
			}
			v, _ := extra.Get(k)
			h.Set(k, v)
		}
	}
	if kid != "" && !h.Has("kid") {
		h.Set("kid", StringValue(kid))
	}
	return CanonicalJSON(ObjectValue(h))
}

// signRaw base64url-encodes headerBytes itself (so we retain full control
// of header key order) and payload, signs "header.payload" with signer, and
// parses the assembled compact string back through jws.ParseCompact.
func signRaw(signer jws.Signer, headerBytes, payload []byte) (*jws.JWS, error) {
	headerEncoded := encodeB64URL(headerBytes)
	payloadEncoded := encodeB64URL(payload)
	signature, err := signer.Sign([]byte(headerEncoded + "." + payloadEncoded))
	if err != nil {
		return nil, err
	}
	compact := headerEncoded + "." + payloadEncoded + "." + encodeB64URL(signature)
	return jws.ParseCompact(compact)
}

// rawHeaderToValue decodes inner's header back into our Value model,
// bypassing jws.Header's fixed struct shape so headers this library
// doesn't know about (cty, kid, custom SD-JWT typ values) survive intact.
func rawHeaderToValue(inner *jws.JWS) (*OrderedMap, Value, error) {
	parts := strings.SplitN(inner.Compact(), ".", 2)
	if len(parts) == 0 {
		return nil, Value{}, fmt.Errorf("empty compact JWS")
	}
	raw, err := decodeB64URL(parts[0])
	if err != nil {
		return nil, Value{}, err
	}
	v, err := ParseValue(raw)
	if err != nil {
		return nil, Value{}, err
	}
	obj, ok := v.AsObject()
	if !ok {
		return nil, Value{}, fmt.Errorf("JWS header is not a JSON object")
	}
	return obj, v, nil
}
