package sdjwt

// legacy VC typ spelling accepted only when
// VerificationPolicy.AllowLegacyTyp is set, carried over from pre-final
// SD-JWT VC drafts.
const legacyVCTyp = "vc+sd-jwt;sd-jwt"

// currentVCTyp is the JWS "typ" header SD-JWT VC issuance stamps.
const currentVCTyp = "vc+sd-jwt"

// VCIssuanceOptions extends IssuanceOptions with the fields the SD-JWT VC
// profile requires or makes optional (spec §4.9).
type VCIssuanceOptions struct {
	IssuanceOptions

	// VCT is the credential's collision-resistant type identifier.
	// Required.
	VCT string

	// Issuer is the payload "iss" value. Required.
	Issuer string

	// VCTIntegrity, if non-empty, is placed under "vct#integrity": a hash
	// of externally fetched type metadata the profile does not itself
	// fetch or validate (spec §4.9 — this is a collaborator boundary).
	VCTIntegrity string

	// Status, if non-nil, is embedded verbatim under "status": an opaque
	// pointer to a revocation oracle this profile never interprets.
	Status Value
}

// IssueVC wraps Issue, adding the SD-JWT VC profile's required claims and
// typ header atop the generic issuance transform (spec §4.9).
func IssueVC(claims Value, opts VCIssuanceOptions) (*IssuanceResult, error) {
	if opts.VCT == "" {
		return nil, newError(ErrMissingRequiredClaim, "SD-JWT VC issuance requires vct", nil)
	}
	if opts.Issuer == "" {
		return nil, newError(ErrMissingRequiredClaim, "SD-JWT VC issuance requires iss", nil)
	}

	obj, ok := claims.AsObject()
	if !ok {
		return nil, newError(ErrMalformedDisclosure, "issuance input must be a JSON object", nil)
	}
	wrapped := obj.Clone()
	wrapped.Set("vct", StringValue(opts.VCT))
	wrapped.Set("iss", StringValue(opts.Issuer))
	if opts.VCTIntegrity != "" {
		wrapped.Set("vct#integrity", StringValue(opts.VCTIntegrity))
	}
	if opts.Status.Kind != KindNull {
		wrapped.Set("status", opts.Status)
	}

	inner := opts.IssuanceOptions
	if inner.TypeHeader == "" {
		inner.TypeHeader = currentVCTyp
	}
	return Issue(ObjectValue(wrapped), inner)
}

// TypeMetadataResolver fetches and hashes externally-published SD-JWT VC
// type metadata for vct#integrity verification. Out of core scope per
// spec §4.9; this profile exposes only the interface.
type TypeMetadataResolver interface {
	ResolveTypeMetadataDigest(vct string) (string, error)
}

// StatusValidator checks a credential's "status" claim against a
// revocation oracle. Out of core scope per spec §4.9.
type StatusValidator interface {
	ValidateStatus(status Value) error
}

// VCVerificationPolicy configures the SD-JWT VC profile's additional
// verification rules atop VerificationPolicy (spec §4.9).
type VCVerificationPolicy struct {
	// ExpectedVCT, if non-empty, requires the reconstructed "vct" to
	// match.
	ExpectedVCT string

	// TypeMetadata, if non-nil, is consulted to verify vct#integrity when
	// that claim is present.
	TypeMetadata TypeMetadataResolver

	// Status, if non-nil, is invoked with the reconstructed "status"
	// claim when present.
	Status StatusValidator
}

// applyVCVerificationPolicy enforces the SD-JWT VC profile's rules against
// the already-reconstructed claim tree.
func applyVCVerificationPolicy(reconstructed *OrderedMap, verifiedPayload *OrderedMap, policy *VCVerificationPolicy) error {
	vctVal, hasVCT := reconstructed.Get("vct")
	vct, _ := vctVal.AsString()
	if !hasVCT || vct == "" {
		return newError(ErrMissingRequiredClaim, "SD-JWT VC requires vct", nil)
	}
	if _, hasIss := reconstructed.Get("iss"); !hasIss {
		return newError(ErrMissingRequiredClaim, "SD-JWT VC requires iss", nil)
	}
	if policy.ExpectedVCT != "" && vct != policy.ExpectedVCT {
		return newError(ErrMissingRequiredClaim, "vct does not match expected value", nil)
	}

	if integrityVal, ok := verifiedPayload.Get("vct#integrity"); ok {
		integrity, _ := integrityVal.AsString()
		if policy.TypeMetadata != nil {
			digest, err := policy.TypeMetadata.ResolveTypeMetadataDigest(vct)
			if err != nil {
				return newError(ErrCancelled, "type metadata resolution failed", err)
			}
			if digest != integrity {
				return newError(ErrDigestMismatch, "vct#integrity does not match resolved type metadata", nil)
			}
		}
	}

	if statusVal, ok := reconstructed.Get("status"); ok && policy.Status != nil {
		if err := policy.Status.ValidateStatus(statusVal); err != nil {
			return newError(ErrCancelled, "status validation failed", err)
		}
	}

	return nil
}

// acceptableVCTyp reports whether typ is an acceptable SD-JWT VC "typ"
// header value. allowLegacy additionally accepts the pre-final draft
// spelling; it defaults to false (reject).
func acceptableVCTyp(typ string, allowLegacy bool) bool {
	if typ == currentVCTyp || typ == "dc+sd-jwt" {
		return true
	}
	return allowLegacy && typ == legacyVCTyp
}
