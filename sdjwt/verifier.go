package sdjwt

import (
	"crypto/subtle"
)

// VerificationPolicy configures C8.
type VerificationPolicy struct {
	// KeyResolver resolves the issuer's verification key. Required.
	KeyResolver KeyResolver

	// AllowedSigningAlgorithms, if non-nil, restricts accepted issuer JWS
	// "alg" values beyond the built-in deny-list.
	AllowedSigningAlgorithms map[string]bool

	// AllowWeakAlgorithms unlocks MD5/SHA-1 as a valid _sd_alg.
	AllowWeakAlgorithms bool

	// ExpectedIssuer, if non-empty, requires payload "iss" to match.
	ExpectedIssuer string

	// ExpectedAudience, if non-empty, requires the KB-JWS "aud" to match.
	ExpectedAudience string

	// ExpectedNonce, if non-empty, requires the KB-JWS "nonce" to match.
	ExpectedNonce string

	// MaxKeyBindingAge bounds |now - iat| for the KB-JWS, in seconds.
	// Defaults to 600 (10 minutes) when zero.
	MaxKeyBindingAge int64

	// RequireKeyBinding fails verification when no KB-JWS is present.
	RequireKeyBinding bool

	// Now supplies the current time as Unix seconds for freshness checks,
	// so the core never reads the wall clock itself (spec §5).
	Now int64

	// AllowLegacyTyp additionally accepts the legacy "vc+sd-jwt;sd-jwt"
	// typ spelling for the SD-JWT VC profile (C9). Defaults to false
	// (reject legacy), the spec §9 resolution of the "two VC typ values"
	// open question.
	AllowLegacyTyp bool

	// VCPolicy, if non-nil, additionally applies the SD-JWT VC profile's
	// verification rules (C9).
	VCPolicy *VCVerificationPolicy
}

// VerificationResult is C8's output: the reconstructed claim tree plus
// flags describing what was verified.
type VerificationResult struct {
	Claims          Value
	KeyBindingVerified bool
	HashAlgorithm   HashAlgorithm
}

// Verify parses, verifies, and reconstructs a compact SD-JWT presentation
// per spec §4.8.
func Verify(compact string, policy VerificationPolicy) (*VerificationResult, error) {
	parsed, err := ParseCompact(compact)
	if err != nil {
		return nil, err
	}

	issuerJWS, err := ParseJWS(parsed.JWS)
	if err != nil {
		return nil, err
	}
	if err := issuerJWS.Verify(policy.KeyResolver, policy.AllowedSigningAlgorithms); err != nil {
		return nil, err
	}

	payload, err := ParseValue(issuerJWS.Payload())
	if err != nil {
		return nil, newError(ErrMalformedJws, "issuer payload is not valid JSON", err)
	}
	payloadObj, ok := payload.AsObject()
	if !ok {
		return nil, newError(ErrMalformedJws, "issuer payload is not a JSON object", nil)
	}

	hashAlg := SHA256
	if v, ok := payloadObj.Get("_sd_alg"); ok {
		s, ok := v.AsString()
		if !ok {
			return nil, newError(ErrUnsupportedAlgorithm, "_sd_alg must be a string", nil)
		}
		hashAlg = normalizeHashAlgorithm(s)
	}
	if _, err := resolveHashAlgorithm(hashAlg, policy.AllowWeakAlgorithms); err != nil {
		return nil, err
	}

	digestMap := make(map[string]*Disclosure, len(parsed.DisclosureSegs))
	for _, seg := range parsed.DisclosureSegs {
		d, err := ParseDisclosure(seg)
		if err != nil {
			// A disclosure that no longer decodes (e.g. one tampered with in
			// transit) is left out of the reconstruction, like a disclosure
			// whose digest no _sd or "..." entry references.
			continue
		}
		dg, err := d.Digest(hashAlg, policy.AllowWeakAlgorithms)
		if err != nil {
			return nil, err
		}
		if _, exists := digestMap[dg]; exists {
			return nil, newError(ErrDuplicateClaim, "duplicate disclosure digest in presentation", nil)
		}
		digestMap[dg] = d
	}

	rc := &reconstructor{digestMap: digestMap}
	reconstructed, err := rc.reconstructObject(payloadObj)
	if err != nil {
		return nil, err
	}

	if policy.ExpectedIssuer != "" {
		issVal, ok := reconstructed.Get("iss")
		issStr, _ := issVal.AsString()
		if !ok || issStr != policy.ExpectedIssuer {
			return nil, newError(ErrIssuerMismatch, "issuer does not match expected value", nil)
		}
	}

	kbVerified := false
	if parsed.HasKeyBinding {
		if err := verifyKeyBinding(parsed, payloadObj, hashAlg, policy); err != nil {
			return nil, err
		}
		kbVerified = true
	} else if policy.RequireKeyBinding {
		return nil, newError(ErrKeyBindingKeyMissing, "Key Binding required but absent", nil)
	}

	if policy.VCPolicy != nil {
		if !acceptableVCTyp(issuerJWS.headerString("typ"), policy.AllowLegacyTyp) {
			return nil, newError(ErrMissingRequiredClaim, "unacceptable SD-JWT VC typ header", nil)
		}
		if err := applyVCVerificationPolicy(reconstructed, payloadObj, policy.VCPolicy); err != nil {
			return nil, err
		}
	}

	return &VerificationResult{
		Claims:             ObjectValue(reconstructed),
		KeyBindingVerified: kbVerified,
		HashAlgorithm:      hashAlg,
	}, nil
}

// reconstructor walks the verified payload tree, substituting disclosed
// values for digests found in digestMap (spec §4.8 step 5).
type reconstructor struct {
	digestMap map[string]*Disclosure
}

func (rc *reconstructor) reconstructObject(in *OrderedMap) (*OrderedMap, error) {
	out := NewOrderedMap()
	for _, key := range in.Keys() {
		if key == "_sd" || key == "_sd_alg" {
			continue
		}
		val, _ := in.Get(key)
		rv, err := rc.reconstructValue(val)
		if err != nil {
			return nil, err
		}
		if out.Has(key) {
			return nil, newError(ErrDuplicateClaim, "claim collides with existing key: "+key, nil)
		}
		out.Set(key, rv)
	}

	if sdVal, ok := in.Get("_sd"); ok {
		digests, ok := sdVal.AsArray()
		if !ok {
			return nil, newError(ErrMalformedJws, "_sd must be a JSON array", nil)
		}
		for _, dv := range digests {
			dg, ok := dv.AsString()
			if !ok {
				return nil, newError(ErrMalformedJws, "_sd entries must be strings", nil)
			}
			disc, found := rc.digestMap[dg]
			if !found {
				continue // undisclosed claim or decoy: skip silently
			}
			name, hasName := disc.ClaimName()
			if !hasName {
				return nil, newError(ErrDisclosureTypeMismatch, "array-element disclosure referenced from _sd", nil)
			}
			if reservedKeys[name] {
				continue
			}
			if out.Has(name) {
				return nil, newError(ErrDuplicateClaim, "disclosed claim collides with existing key: "+name, nil)
			}
			rv, err := rc.reconstructValue(disc.Value())
			if err != nil {
				return nil, err
			}
			out.Set(name, rv)
		}
	}

	return out, nil
}

func (rc *reconstructor) reconstructArray(in []Value) ([]Value, error) {
	out := make([]Value, 0, len(in))
	for _, item := range in {
		if obj, ok := item.AsObject(); ok && obj.Len() == 1 {
			if dv, ok := obj.Get("..."); ok {
				dg, ok := dv.AsString()
				if !ok {
					return nil, newError(ErrMalformedJws, "\"...\" marker digest must be a string", nil)
				}
				disc, found := rc.digestMap[dg]
				if !found {
					continue // omit: digest doesn't resolve
				}
				if _, hasName := disc.ClaimName(); hasName {
					return nil, newError(ErrDisclosureTypeMismatch, "object-property disclosure referenced from array", nil)
				}
				rv, err := rc.reconstructValue(disc.Value())
				if err != nil {
					return nil, err
				}
				out = append(out, rv)
				continue
			}
		}
		rv, err := rc.reconstructValue(item)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, nil
}

func (rc *reconstructor) reconstructValue(v Value) (Value, error) {
	switch v.Kind {
	case KindObject:
		if v.Object == nil {
			return v, nil
		}
		out, err := rc.reconstructObject(v.Object)
		if err != nil {
			return Value{}, err
		}
		return ObjectValue(out), nil
	case KindArray:
		out, err := rc.reconstructArray(v.Array)
		if err != nil {
			return Value{}, err
		}
		return ArrayValue(out), nil
	default:
		return v, nil
	}
}

// verifyKeyBinding re-derives sd_hash and checks it, along with freshness
// and policy assertions, against the KB-JWS (spec §4.8 step 6).
func verifyKeyBinding(parsed *ParsedCompact, payload *OrderedMap, hashAlg HashAlgorithm, policy VerificationPolicy) error {
	holderVerifier, err := holderVerifierFromCnf(payload)
	if err != nil {
		return err
	}

	kbJWS, err := ParseJWS(parsed.KeyBindingJWS)
	if err != nil {
		return err
	}
	staticResolver := staticKeyResolver{alg: kbJWS.Alg(), v: holderVerifier}
	if err := kbJWS.Verify(staticResolver, nil); err != nil {
		return err
	}

	kbPayload, err := ParseValue(kbJWS.Payload())
	if err != nil {
		return newError(ErrMalformedJws, "KB-JWS payload is not valid JSON", err)
	}
	kbObj, ok := kbPayload.AsObject()
	if !ok {
		return newError(ErrMalformedJws, "KB-JWS payload is not a JSON object", nil)
	}

	sdHashVal, ok := kbObj.Get("sd_hash")
	claimedHash, _ := sdHashVal.AsString()
	if !ok || claimedHash == "" {
		return newError(ErrDigestMismatch, "KB-JWS missing sd_hash", nil)
	}

	prefix := serializeCompactEncoded(parsed.JWS, parsed.DisclosureSegs, "")
	expectedHash, err := digest(hashAlg, policy.AllowWeakAlgorithms, []byte(prefix))
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(expectedHash), []byte(claimedHash)) != 1 {
		return newError(ErrDigestMismatch, "sd_hash does not match recomputed value", nil)
	}

	if policy.ExpectedAudience != "" {
		audVal, ok := kbObj.Get("aud")
		aud, _ := audVal.AsString()
		if !ok || subtle.ConstantTimeCompare([]byte(aud), []byte(policy.ExpectedAudience)) != 1 {
			return newError(ErrAudienceMismatch, "KB-JWS aud does not match expected value", nil)
		}
	}
	if policy.ExpectedNonce != "" {
		nonceVal, ok := kbObj.Get("nonce")
		nonce, _ := nonceVal.AsString()
		if !ok || subtle.ConstantTimeCompare([]byte(nonce), []byte(policy.ExpectedNonce)) != 1 {
			return newError(ErrNonceMismatch, "KB-JWS nonce does not match expected value", nil)
		}
	}

	maxAge := policy.MaxKeyBindingAge
	if maxAge == 0 {
		maxAge = 600
	}
	iatVal, ok := kbObj.Get("iat")
	if !ok || iatVal.Kind != KindNumber {
		return newError(ErrStaleKeyBinding, "KB-JWS missing iat", nil)
	}
	iat, err := parseIntLiteral(iatVal.Number)
	if err != nil {
		return newError(ErrStaleKeyBinding, "KB-JWS iat is not an integer", err)
	}
	now := policy.Now
	age := now - iat
	if age < 0 {
		age = -age
	}
	if age > maxAge {
		return newError(ErrStaleKeyBinding, "KB-JWS iat is outside the allowed freshness window", nil)
	}

	return nil
}

func holderVerifierFromCnf(payload *OrderedMap) (Verifier, error) {
	cnfVal, ok := payload.Get("cnf")
	if !ok {
		return nil, newError(ErrUnknownKey, "payload has no cnf claim for Key Binding", nil)
	}
	cnfObj, ok := cnfVal.AsObject()
	if !ok {
		return nil, newError(ErrUnknownKey, "cnf claim is not a JSON object", nil)
	}
	jwkVal, ok := cnfObj.Get("jwk")
	if !ok {
		return nil, newError(ErrUnknownKey, "cnf claim has no jwk", nil)
	}
	jwkObj, ok := jwkVal.AsObject()
	if !ok {
		return nil, newError(ErrUnknownKey, "cnf.jwk is not a JSON object", nil)
	}
	return verifierFromJWK(jwkObj)
}

type staticKeyResolver struct {
	alg string
	v   Verifier
}

func (r staticKeyResolver) ResolveKey(alg, kid string) (Verifier, error) {
	if alg != r.alg {
		return nil, newError(ErrAlgorithmNotAllowed, "KB-JWS algorithm does not match holder key", nil)
	}
	return r.v, nil
}

func parseIntLiteral(lit string) (int64, error) {
	var neg bool
	s := lit
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var n int64
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, newError(ErrMalformedJws, "not an integer literal: "+lit, nil)
		}
		n = n*10 + int64(c-'0')
	}
	if neg {
		n = -n
	}
	return n, nil
}
