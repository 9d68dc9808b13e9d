package sdjwt

// IssuanceOptions configures C5, the issuance transformer.
type IssuanceOptions struct {
	// HashAlgorithm selects the digest function and the _sd_alg value
	// stamped into the payload. Defaults to SHA256 when empty.
	HashAlgorithm HashAlgorithm

	// AllowWeakAlgorithms unlocks MD5/SHA-1 for HashAlgorithm; for
	// negative-compatibility testing only, never production issuance.
	AllowWeakAlgorithms bool

	// DecoyCount is the number of random decoy digests injected into the
	// top-level _sd array.
	DecoyCount int

	// Signer produces the issuer's JWS over the final payload.
	Signer Signer

	// TypeHeader is the JWS "typ" header value. Defaults to "dc+sd-jwt".
	TypeHeader string

	// HolderPublicKeyJWK, if a JSON object, is embedded as payload.cnf.jwk so a
	// later presentation can carry Key Binding.
	HolderPublicKeyJWK Value

	// Directive selects which claims are disclosable. If ForceAllDisclosable
	// is true, Directive is ignored and every leaf becomes disclosable.
	Directive Directive

	// ForceAllDisclosable is the force_all_disclosable shortcut.
	ForceAllDisclosable bool

	// ExtraHeaders are merged into the JWS header alongside alg/typ, e.g. kid.
	ExtraHeaders *OrderedMap
}

// IssuanceResult is C5's output: the signed compact issuance string, the
// ordered list of real disclosures the holder needs to retain, and the set
// of decoy digests produced (for audit only — they carry no claim).
type IssuanceResult struct {
	Compact     string
	Disclosures []*Disclosure
	DecoyDigests []string
}

// Issue runs the recursive transform over claims, producing a signed
// SD-JWT issuance string per spec §4.5.
func Issue(claims Value, opts IssuanceOptions) (*IssuanceResult, error) {
	if opts.Signer == nil {
		return nil, newError(ErrMalformedJws, "issuance requires a signer", nil)
	}

	alg := opts.HashAlgorithm
	if alg == "" {
		alg = SHA256
	}
	if _, err := resolveHashAlgorithm(alg, opts.AllowWeakAlgorithms); err != nil {
		return nil, err
	}

	root, ok := claims.AsObject()
	if !ok {
		return nil, newError(ErrMalformedDisclosure, "issuance input must be a JSON object", nil)
	}

	dir := opts.Directive
	if opts.ForceAllDisclosable {
		dir = ForceAllDirective()
	}

	tx := &issuanceTransform{alg: alg, allowWeak: opts.AllowWeakAlgorithms}
	outObj, err := tx.transformObject(root, dir)
	if err != nil {
		return nil, err
	}

	if opts.DecoyCount > 0 {
		existing, _ := outObj.Get("_sd")
		sdArr, _ := existing.AsArray()
		digests := make([]string, len(sdArr))
		for i, v := range sdArr {
			digests[i], _ = v.AsString()
		}
		for i := 0; i < opts.DecoyCount; i++ {
			d, err := generateDecoyDigest(alg)
			if err != nil {
				return nil, newError(ErrCancelled, "failed to generate decoy digest", err)
			}
			digests = append(digests, d)
			tx.decoys = append(tx.decoys, d)
		}
		if err := shuffleStrings(digests); err != nil {
			return nil, newError(ErrCancelled, "failed to shuffle _sd array", err)
		}
		sdVals := make([]Value, len(digests))
		for i, d := range digests {
			sdVals[i] = StringValue(d)
		}
		outObj.Set("_sd", ArrayValue(sdVals))
	}

	if opts.HolderPublicKeyJWK.Kind == KindObject {
		cnf := NewOrderedMap()
		cnf.Set("jwk", opts.HolderPublicKeyJWK)
		outObj.Set("cnf", ObjectValue(cnf))
	}

	outObj.Set("_sd_alg", StringValue(string(alg)))

	payloadBytes, err := CanonicalJSON(ObjectValue(outObj))
	if err != nil {
		return nil, newError(ErrMalformedDisclosure, "failed to serialize payload", err)
	}

	typ := opts.TypeHeader
	if typ == "" {
		typ = "dc+sd-jwt"
	}
	headers := NewOrderedMap()
	headers.Set("typ", StringValue(typ))
	if opts.ExtraHeaders != nil {
		for _, k := range opts.ExtraHeaders.Keys() {
			v, _ := opts.ExtraHeaders.Get(k)
			headers.Set(k, v)
		}
	}

	signed, err := SignJWS(opts.Signer, headers, payloadBytes)
	if err != nil {
		return nil, err
	}

	compact, err := SerializeCompact(signed.Compact(), tx.disclosures, "")
	if err != nil {
		return nil, err
	}

	return &IssuanceResult{
		Compact:      compact,
		Disclosures:  tx.disclosures,
		DecoyDigests: tx.decoys,
	}, nil
}

// issuanceTransform carries the accumulating list of real disclosures and
// shared algorithm settings through the recursive walk.
type issuanceTransform struct {
	alg         HashAlgorithm
	allowWeak   bool
	disclosures []*Disclosure
	decoys      []string
}

// transformObject walks an object node: entries marked hidden by dir are
// replaced with a disclosure + digest pushed into _sd; others recurse in
// place. Returns the transformed (output) object.
func (tx *issuanceTransform) transformObject(in *OrderedMap, dir Directive) (*OrderedMap, error) {
	out := NewOrderedMap()
	var digests []string

	for _, key := range in.Keys() {
		if reservedKeys[key] {
			return nil, newError(ErrReservedKeyUsed, "claims object contains reserved key: "+key, nil)
		}
		val, _ := in.Get(key)

		if dir.fieldHidden(key) {
			inner, err := tx.transformValue(val, dir.fieldDirective(key))
			if err != nil {
				return nil, err
			}
			salt, err := generateSalt()
			if err != nil {
				return nil, newError(ErrCancelled, "failed to generate salt", err)
			}
			disc, err := NewObjectDisclosure(salt, key, inner)
			if err != nil {
				return nil, err
			}
			d, err := disc.Digest(tx.alg, tx.allowWeak)
			if err != nil {
				return nil, err
			}
			tx.disclosures = append(tx.disclosures, disc)
			digests = append(digests, d)
			continue
		}

		sub := dir.fieldDirective(key)
		transformed, err := tx.transformValue(val, sub)
		if err != nil {
			return nil, err
		}
		out.Set(key, transformed)
	}

	if len(digests) > 0 {
		if existing, ok := out.Get("_sd"); ok {
			arr, _ := existing.AsArray()
			for _, v := range arr {
				s, _ := v.AsString()
				digests = append(digests, s)
			}
		}
		if err := shuffleStrings(digests); err != nil {
			return nil, newError(ErrCancelled, "failed to shuffle _sd array", err)
		}
		sdVals := make([]Value, len(digests))
		for i, d := range digests {
			sdVals[i] = StringValue(d)
		}
		out.Set("_sd", ArrayValue(sdVals))
	}

	return out, nil
}

// transformArray walks an array node: elements marked hidden by dir become
// {"...": digest} markers; others recurse in place.
func (tx *issuanceTransform) transformArray(in []Value, dir Directive) ([]Value, error) {
	out := make([]Value, 0, len(in))
	for i, val := range in {
		if dir.elementHidden(i) {
			inner, err := tx.transformValue(val, dir.elementDirective(i))
			if err != nil {
				return nil, err
			}
			salt, err := generateSalt()
			if err != nil {
				return nil, newError(ErrCancelled, "failed to generate salt", err)
			}
			disc, err := NewArrayDisclosure(salt, inner)
			if err != nil {
				return nil, err
			}
			d, err := disc.Digest(tx.alg, tx.allowWeak)
			if err != nil {
				return nil, err
			}
			tx.disclosures = append(tx.disclosures, disc)

			marker := NewOrderedMap()
			marker.Set("...", StringValue(d))
			out = append(out, ObjectValue(marker))
			continue
		}

		sub := dir.elementDirective(i)
		transformed, err := tx.transformValue(val, sub)
		if err != nil {
			return nil, err
		}
		out = append(out, transformed)
	}
	return out, nil
}

// transformValue dispatches a single node to the object, array, or scalar
// case. Scalars are never themselves made disclosable; only their
// containing entry/element is (spec §4.5).
func (tx *issuanceTransform) transformValue(v Value, dir Directive) (Value, error) {
	switch v.Kind {
	case KindObject:
		if v.Object == nil {
			return v, nil
		}
		out, err := tx.transformObject(v.Object, dir)
		if err != nil {
			return Value{}, err
		}
		return ObjectValue(out), nil
	case KindArray:
		out, err := tx.transformArray(v.Array, dir)
		if err != nil {
			return Value{}, err
		}
		return ArrayValue(out), nil
	default:
		return v, nil
	}
}
