package sdjwt

import "strconv"

// Issuance represents a holder's parsed, not-yet-presented SD-JWT
// issuance. Construction reads the payload's _sd_alg without verifying
// the issuer's signature — the holder is not the trust authority for its
// own credential, so that read is inherently untrusted (spec §9) and is
// re-validated by the verifier at presentation time.
type Issuance struct {
	jws          *CompactJWS
	payload      Value
	hashAlg      HashAlgorithm
	disclosures  []*Disclosure
}

// ParseIssuance parses a compact SD-JWT issuance string for holder use.
func ParseIssuance(compact string) (*Issuance, error) {
	parsed, err := ParseCompact(compact)
	if err != nil {
		return nil, err
	}

	jws, err := ParseJWS(parsed.JWS)
	if err != nil {
		return nil, err
	}

	payload, err := ParseValue(jws.Payload())
	if err != nil {
		return nil, newError(ErrMalformedJws, "issuer payload is not valid JSON", err)
	}

	hashAlg := SHA256
	if obj, ok := payload.AsObject(); ok {
		if v, ok := obj.Get("_sd_alg"); ok {
			if s, ok := v.AsString(); ok {
				hashAlg = normalizeHashAlgorithm(s)
			}
		}
	}

	disclosures := make([]*Disclosure, 0, len(parsed.DisclosureSegs))
	for _, seg := range parsed.DisclosureSegs {
		d, err := ParseDisclosure(seg)
		if err != nil {
			return nil, err
		}
		disclosures = append(disclosures, d)
	}

	return &Issuance{
		jws:         jws,
		payload:     payload,
		hashAlg:     hashAlg,
		disclosures: disclosures,
	}, nil
}

// Disclosures returns all disclosures carried by the issuance, in the
// order they appeared in the compact string.
func (iss *Issuance) Disclosures() []*Disclosure { return iss.disclosures }

// HashAlgorithm returns the (untrusted, holder-read) _sd_alg value.
func (iss *Issuance) HashAlgorithm() HashAlgorithm { return iss.hashAlg }

// Payload returns the issuer-signed payload, unverified.
func (iss *Issuance) Payload() Value { return iss.payload }

// DisclosureSelector decides whether a given disclosure should be
// included in a presentation.
type DisclosureSelector func(d *Disclosure) bool

// SelectAll includes every disclosure in the issuance.
func SelectAll(*Disclosure) bool { return true }

// SelectByClaimName includes only object-property disclosures whose claim
// name is in names.
func SelectByClaimName(names ...string) DisclosureSelector {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(d *Disclosure) bool {
		name, ok := d.ClaimName()
		return ok && set[name]
	}
}

// PresentationOptions configures C7's presentation construction.
type PresentationOptions struct {
	// Selector decides which disclosures to include. Defaults to
	// SelectAll when nil.
	Selector DisclosureSelector

	// KeyBinding requests a KB-JWS be attached. Leave nil to omit Key
	// Binding entirely.
	KeyBinding *KeyBindingRequest
}

// KeyBindingRequest carries the inputs needed to produce a KB-JWS.
type KeyBindingRequest struct {
	Signer Signer
	Nonce  string
	Audience string
	IssuedAt int64 // Unix seconds; caller supplies so the core never reads wall-clock itself
}

// PresentationResult is C7's output.
type PresentationResult struct {
	Compact     string
	Disclosures []*Disclosure
}

// Present builds a presentation from iss per opts: select the disclosures
// to reveal, optionally attach Key Binding, and re-serialize via C6.
func Present(iss *Issuance, opts PresentationOptions) (*PresentationResult, error) {
	selector := opts.Selector
	if selector == nil {
		selector = SelectAll
	}

	var selected []*Disclosure
	var selectedSegs []string
	for _, d := range iss.disclosures {
		if selector(d) {
			selected = append(selected, d)
			selectedSegs = append(selectedSegs, d.Encoded())
		}
	}

	if opts.KeyBinding == nil {
		compact := serializeCompactEncoded(iss.jws.Compact(), selectedSegs, "")
		return &PresentationResult{Compact: compact, Disclosures: selected}, nil
	}

	kb := opts.KeyBinding
	if kb.Signer == nil {
		return nil, newError(ErrKeyBindingKeyMissing, "Key Binding requested without a signing key", nil)
	}
	if kb.Signer.Algorithm() == "" {
		return nil, newError(ErrUnknownAlgorithm, "Key Binding signer has no algorithm", nil)
	}

	prefix := serializeCompactEncoded(iss.jws.Compact(), selectedSegs, "") // ends in trailing "~"
	sdHash, err := digest(iss.hashAlg, false, []byte(prefix))
	if err != nil {
		return nil, err
	}

	kbPayloadObj := NewOrderedMap()
	kbPayloadObj.Set("iat", NumberValue(strconv.FormatInt(kb.IssuedAt, 10)))
	kbPayloadObj.Set("aud", StringValue(kb.Audience))
	kbPayloadObj.Set("nonce", StringValue(kb.Nonce))
	kbPayloadObj.Set("sd_hash", StringValue(sdHash))

	kbPayloadBytes, err := CanonicalJSON(ObjectValue(kbPayloadObj))
	if err != nil {
		return nil, newError(ErrMalformedJws, "failed to serialize KB-JWS payload", err)
	}

	kbHeaders := NewOrderedMap()
	kbHeaders.Set("typ", StringValue("kb+jwt"))

	kbJWS, err := SignJWS(kb.Signer, kbHeaders, kbPayloadBytes)
	if err != nil {
		return nil, err
	}

	compact := serializeCompactEncoded(iss.jws.Compact(), selectedSegs, kbJWS.Compact())
	return &PresentationResult{Compact: compact, Disclosures: selected}, nil
}
