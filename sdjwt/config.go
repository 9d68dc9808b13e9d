package sdjwt

import (
	"github.com/go-playground/validator/v10"
)

// validate is the package-level validator instance, with the custom
// sdjwtalg rule registered once at package initialization, so
// domain-specific string shapes are checked by a validation rule instead
// of a hand-rolled switch statement per field.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("sdjwtalg", validateSDJWTAlg); err != nil {
		panic("sdjwt: failed to register sdjwtalg validator: " + err.Error())
	}
	return v
}

// validateSDJWTAlg checks that a field names a hash algorithm this
// package's registry recognizes, independent of whether weak algorithms
// are currently allowed (that gate is enforced separately at call time,
// since it is a runtime policy decision, not a static shape check).
func validateSDJWTAlg(fl validator.FieldLevel) bool {
	alg := normalizeHashAlgorithm(fl.Field().String())
	_, known := registry[alg]
	return known
}

// issuanceConfig mirrors the fields of IssuanceOptions that admit static
// validation (spec §6's issuance configuration enumeration), expressed as
// a plain struct with validate tags because IssuanceOptions itself carries
// interface- and Value-typed fields (Signer, HolderPublicKeyJWK) that the
// validator cannot usefully introspect.
type issuanceConfig struct {
	HashAlgorithm string `validate:"omitempty,sdjwtalg"`
	DecoyCount    int    `validate:"gte=0"`
	TypeHeader    string `validate:"omitempty,printascii"`
}

// ValidateIssuanceOptions statically validates the configuration fields of
// opts (spec §6's issuance configuration enumeration), separately from the
// runtime checks (signer presence, weak-algorithm gate) Issue performs.
func ValidateIssuanceOptions(opts IssuanceOptions) error {
	cfg := issuanceConfig{
		HashAlgorithm: string(opts.HashAlgorithm),
		DecoyCount:    opts.DecoyCount,
		TypeHeader:    opts.TypeHeader,
	}
	if err := validate.Struct(cfg); err != nil {
		return newError(ErrUnsupportedAlgorithm, "invalid issuance options: "+err.Error(), err)
	}
	return nil
}

// verificationConfig mirrors VerificationPolicy's statically validatable
// fields.
type verificationConfig struct {
	ExpectedIssuer   string `validate:"omitempty,printascii"`
	ExpectedAudience string `validate:"omitempty,printascii"`
	ExpectedNonce    string `validate:"omitempty,printascii"`
	MaxKeyBindingAge int64  `validate:"gte=0"`
}

// ValidateVerificationPolicy statically validates the configuration fields
// of policy (spec §6's verification policy enumeration).
func ValidateVerificationPolicy(policy VerificationPolicy) error {
	cfg := verificationConfig{
		ExpectedIssuer:   policy.ExpectedIssuer,
		ExpectedAudience: policy.ExpectedAudience,
		ExpectedNonce:    policy.ExpectedNonce,
		MaxKeyBindingAge: policy.MaxKeyBindingAge,
	}
	if err := validate.Struct(cfg); err != nil {
		return newError(ErrUnsupportedAlgorithm, "invalid verification policy: "+err.Error(), err)
	}
	return nil
}
