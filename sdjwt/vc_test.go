package sdjwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueVCRequiresVCTAndIssuer(t *testing.T) {
	keys := newTestKeyPair(t)
	claims := mustParseClaims(t, `{"sub":"u1"}`)

	_, err := IssueVC(claims, VCIssuanceOptions{
		IssuanceOptions: IssuanceOptions{HashAlgorithm: SHA256, Signer: keys.signer},
		Issuer:          "https://i.example",
	})
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, ErrMissingRequiredClaim, kind)

	_, err = IssueVC(claims, VCIssuanceOptions{
		IssuanceOptions: IssuanceOptions{HashAlgorithm: SHA256, Signer: keys.signer},
		VCT:             "https://vct.example/identity",
	})
	require.Error(t, err)
	kind, _ = KindOf(err)
	assert.Equal(t, ErrMissingRequiredClaim, kind)
}

func TestIssueVCAndVerifyWithProfile(t *testing.T) {
	keys := newTestKeyPair(t)
	claims := mustParseClaims(t, `{"sub":"u1","given_name":"Alice"}`)

	result, err := IssueVC(claims, VCIssuanceOptions{
		IssuanceOptions: IssuanceOptions{
			HashAlgorithm: SHA256,
			Signer:        keys.signer,
			Directive:     Directive{}.HideField("given_name"),
		},
		VCT:    "https://vct.example/identity",
		Issuer: "https://i.example",
	})
	require.NoError(t, err)

	iss, err := ParseIssuance(result.Compact)
	require.NoError(t, err)
	present, err := Present(iss, PresentationOptions{Selector: SelectAll})
	require.NoError(t, err)

	out, err := Verify(present.Compact, VerificationPolicy{
		KeyResolver: singleKeyResolver{v: keys.verifier},
		VCPolicy: &VCVerificationPolicy{
			ExpectedVCT: "https://vct.example/identity",
		},
	})
	require.NoError(t, err)

	obj, _ := out.Claims.AsObject()
	vct, _ := obj.Get("vct")
	vctStr, _ := vct.AsString()
	assert.Equal(t, "https://vct.example/identity", vctStr)
}

func TestVerifyVCRejectsMismatchedVCT(t *testing.T) {
	keys := newTestKeyPair(t)
	claims := mustParseClaims(t, `{"sub":"u1"}`)

	result, err := IssueVC(claims, VCIssuanceOptions{
		IssuanceOptions: IssuanceOptions{HashAlgorithm: SHA256, Signer: keys.signer},
		VCT:             "https://vct.example/a",
		Issuer:          "https://i.example",
	})
	require.NoError(t, err)

	iss, err := ParseIssuance(result.Compact)
	require.NoError(t, err)
	present, err := Present(iss, PresentationOptions{Selector: SelectAll})
	require.NoError(t, err)

	_, err = Verify(present.Compact, VerificationPolicy{
		KeyResolver: singleKeyResolver{v: keys.verifier},
		VCPolicy:    &VCVerificationPolicy{ExpectedVCT: "https://vct.example/b"},
	})
	require.Error(t, err)
}

func TestAcceptableVCTyp(t *testing.T) {
	assert.True(t, acceptableVCTyp("vc+sd-jwt", false))
	assert.True(t, acceptableVCTyp("dc+sd-jwt", false))
	assert.False(t, acceptableVCTyp(legacyVCTyp, false))
	assert.True(t, acceptableVCTyp(legacyVCTyp, true))
}
