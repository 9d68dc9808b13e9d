package sdjwt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario A — hidden name, revealed email.
func TestScenarioAHiddenNameRevealedEmail(t *testing.T) {
	keys := newTestKeyPair(t)
	claims := mustParseClaims(t, `{"iss":"https://i.example","sub":"u1","given_name":"Alice","email":"a@example.com"}`)

	dir := Directive{}.HideField("given_name").HideField("email")
	result, err := Issue(claims, IssuanceOptions{
		HashAlgorithm: SHA256,
		Signer:        keys.signer,
		Directive:     dir,
	})
	require.NoError(t, err)
	require.Len(t, result.Disclosures, 2)

	iss, err := ParseIssuance(result.Compact)
	require.NoError(t, err)

	present, err := Present(iss, PresentationOptions{
		Selector: SelectByClaimName("email"),
	})
	require.NoError(t, err)

	out, err := Verify(present.Compact, VerificationPolicy{
		KeyResolver: singleKeyResolver{v: keys.verifier},
	})
	require.NoError(t, err)

	obj, _ := out.Claims.AsObject()
	email, ok := obj.Get("email")
	require.True(t, ok)
	s, _ := email.AsString()
	assert.Equal(t, "a@example.com", s)
	assert.False(t, obj.Has("given_name"))
	sub, _ := obj.Get("sub")
	subStr, _ := sub.AsString()
	assert.Equal(t, "u1", subStr)

	// A second verifier given the full set reconstructs both.
	presentAll, err := Present(iss, PresentationOptions{Selector: SelectAll})
	require.NoError(t, err)
	outAll, err := Verify(presentAll.Compact, VerificationPolicy{
		KeyResolver: singleKeyResolver{v: keys.verifier},
	})
	require.NoError(t, err)
	objAll, _ := outAll.Claims.AsObject()
	assert.True(t, objAll.Has("given_name"))
	assert.True(t, objAll.Has("email"))
}

// Scenario B — array-element disclosure.
func TestScenarioBArrayElementDisclosure(t *testing.T) {
	keys := newTestKeyPair(t)
	claims := mustParseClaims(t, `{"iss":"https://i.example","nationalities":["US","DE","FR"]}`)

	dir := Directive{}.WithField("nationalities", HideElements(true, false, true))
	result, err := Issue(claims, IssuanceOptions{
		HashAlgorithm: SHA256,
		Signer:        keys.signer,
		Directive:     dir,
	})
	require.NoError(t, err)
	require.Len(t, result.Disclosures, 2)

	iss, err := ParseIssuance(result.Compact)
	require.NoError(t, err)

	// present only the disclosure covering index 2 ("FR")
	var target *Disclosure
	for _, d := range result.Disclosures {
		v, _ := d.Value().AsString()
		if v == "FR" {
			target = d
		}
	}
	require.NotNil(t, target)

	present, err := Present(iss, PresentationOptions{
		Selector: func(d *Disclosure) bool { return d.Equal(target) },
	})
	require.NoError(t, err)

	out, err := Verify(present.Compact, VerificationPolicy{
		KeyResolver: singleKeyResolver{v: keys.verifier},
	})
	require.NoError(t, err)

	obj, _ := out.Claims.AsObject()
	natVal, ok := obj.Get("nationalities")
	require.True(t, ok)
	nats, _ := natVal.AsArray()
	require.Len(t, nats, 2)
	n0, _ := nats[0].AsString()
	n1, _ := nats[1].AsString()
	assert.Equal(t, "DE", n0)
	assert.Equal(t, "FR", n1)
}

// Scenario C — Key Binding freshness and nonce/audience mismatch.
func TestScenarioCKeyBindingFreshness(t *testing.T) {
	issuerKeys := newTestKeyPair(t)
	holderKeys := newTestKeyPair(t)
	claims := mustParseClaims(t, `{"iss":"https://i.example","sub":"u1"}`)

	result, err := Issue(claims, IssuanceOptions{
		HashAlgorithm:      SHA256,
		Signer:             issuerKeys.signer,
		HolderPublicKeyJWK: holderKeys.jwk,
	})
	require.NoError(t, err)

	iss, err := ParseIssuance(result.Compact)
	require.NoError(t, err)

	now := int64(1_700_000_000)
	present, err := Present(iss, PresentationOptions{
		Selector: SelectAll,
		KeyBinding: &KeyBindingRequest{
			Signer:   holderKeys.signer,
			Nonce:    "N1",
			Audience: "https://verifier",
			IssuedAt: now,
		},
	})
	require.NoError(t, err)

	resolver := singleKeyResolver{v: issuerKeys.verifier}

	out, err := Verify(present.Compact, VerificationPolicy{
		KeyResolver:      resolver,
		ExpectedNonce:    "N1",
		ExpectedAudience: "https://verifier",
		Now:              now,
	})
	require.NoError(t, err)
	assert.True(t, out.KeyBindingVerified)

	// iat 11 minutes stale with default 600s max age.
	staleResult, err := Present(iss, PresentationOptions{
		Selector: SelectAll,
		KeyBinding: &KeyBindingRequest{
			Signer:   holderKeys.signer,
			Nonce:    "N1",
			Audience: "https://verifier",
			IssuedAt: now - 11*60,
		},
	})
	require.NoError(t, err)
	_, err = Verify(staleResult.Compact, VerificationPolicy{
		KeyResolver:      resolver,
		ExpectedNonce:    "N1",
		ExpectedAudience: "https://verifier",
		Now:              now,
	})
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, ErrStaleKeyBinding, kind)

	// replay with mismatched expected nonce.
	_, err = Verify(present.Compact, VerificationPolicy{
		KeyResolver:      resolver,
		ExpectedNonce:    "N2",
		ExpectedAudience: "https://verifier",
		Now:              now,
	})
	require.Error(t, err)
	kind, _ = KindOf(err)
	assert.Equal(t, ErrNonceMismatch, kind)
}

// Scenario D — tampered disclosure is silently dropped, not an error.
func TestScenarioDTamperedDisclosureSilentlyOmitted(t *testing.T) {
	keys := newTestKeyPair(t)
	claims := mustParseClaims(t, `{"iss":"https://i.example","email":"a@example.com"}`)

	dir := Directive{}.HideField("email")
	result, err := Issue(claims, IssuanceOptions{
		HashAlgorithm: SHA256,
		Signer:        keys.signer,
		Directive:     dir,
	})
	require.NoError(t, err)
	require.Len(t, result.Disclosures, 1)

	tampered := result.Disclosures[0].Encoded()
	tampered = flipLastChar(tampered)

	compact, err := SerializeCompact(
		(mustIssuanceJWS(t, result.Compact)), nil, "")
	require.NoError(t, err)
	compact = compact + tampered + "~"

	out, err := Verify(compact, VerificationPolicy{
		KeyResolver: singleKeyResolver{v: keys.verifier},
	})
	require.NoError(t, err)
	obj, _ := out.Claims.AsObject()
	assert.False(t, obj.Has("email"))
}

// Scenario E — weak algorithm rejection.
func TestScenarioEWeakAlgorithmRejection(t *testing.T) {
	keys := newTestKeyPair(t)
	claims := mustParseClaims(t, `{"iss":"https://i.example"}`)

	result, err := Issue(claims, IssuanceOptions{
		HashAlgorithm:       weakSHA1,
		AllowWeakAlgorithms: true,
		Signer:              keys.signer,
	})
	require.NoError(t, err)

	_, err = Verify(result.Compact, VerificationPolicy{
		KeyResolver: singleKeyResolver{v: keys.verifier},
	})
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, ErrWeakAlgorithm, kind)

	out, err := Verify(result.Compact, VerificationPolicy{
		KeyResolver:         singleKeyResolver{v: keys.verifier},
		AllowWeakAlgorithms: true,
	})
	require.NoError(t, err)
	assert.Equal(t, weakSHA1, out.HashAlgorithm)
}

// Scenario F — reserved key injection fails before signing.
func TestScenarioFReservedKeyInjection(t *testing.T) {
	keys := newTestKeyPair(t)
	claims := mustParseClaims(t, `{"_sd":["x"],"sub":"u1"}`)

	_, err := Issue(claims, IssuanceOptions{
		HashAlgorithm: SHA256,
		Signer:        keys.signer,
	})
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, ErrReservedKeyUsed, kind)
}

func TestZeroDecoysAndNoDisclosuresProducesNoSDArray(t *testing.T) {
	keys := newTestKeyPair(t)
	claims := mustParseClaims(t, `{"iss":"https://i.example","sub":"u1"}`)

	result, err := Issue(claims, IssuanceOptions{
		HashAlgorithm: SHA256,
		Signer:        keys.signer,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Disclosures)

	iss, err := ParseIssuance(result.Compact)
	require.NoError(t, err)
	payloadObj, _ := iss.Payload().AsObject()
	assert.False(t, payloadObj.Has("_sd"))
}

func TestDecoyDigestsAreIndistinguishableFromRealOnesToVerifier(t *testing.T) {
	keys := newTestKeyPair(t)
	claims := mustParseClaims(t, `{"iss":"https://i.example","email":"a@example.com"}`)

	dir := Directive{}.HideField("email")
	result, err := Issue(claims, IssuanceOptions{
		HashAlgorithm: SHA256,
		Signer:        keys.signer,
		Directive:     dir,
		DecoyCount:    3,
	})
	require.NoError(t, err)
	assert.Len(t, result.DecoyDigests, 3)

	iss, err := ParseIssuance(result.Compact)
	require.NoError(t, err)
	present, err := Present(iss, PresentationOptions{Selector: SelectAll})
	require.NoError(t, err)

	out, err := Verify(present.Compact, VerificationPolicy{
		KeyResolver: singleKeyResolver{v: keys.verifier},
	})
	require.NoError(t, err)
	obj, _ := out.Claims.AsObject()
	assert.True(t, obj.Has("email"))
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	keys := newTestKeyPair(t)
	claims := mustParseClaims(t, `{"iss":"https://i.example"}`)

	result, err := Issue(claims, IssuanceOptions{HashAlgorithm: SHA256, Signer: keys.signer})
	require.NoError(t, err)

	// flip the first character of the JWS signature segment, which always
	// changes the decoded signature bytes.
	jwsCompact := []byte(mustIssuanceJWS(t, result.Compact))
	sigStart := strings.LastIndex(string(jwsCompact), ".") + 1
	if jwsCompact[sigStart] == 'A' {
		jwsCompact[sigStart] = 'B'
	} else {
		jwsCompact[sigStart] = 'A'
	}
	tampered := string(jwsCompact) + "~"
	_, err = Verify(tampered, VerificationPolicy{KeyResolver: singleKeyResolver{v: keys.verifier}})
	require.Error(t, err)
}

func flipLastChar(s string) string {
	if len(s) == 0 {
		return s
	}
	b := []byte(s)
	last := b[len(b)-1]
	if last == 'A' {
		b[len(b)-1] = 'B'
	} else {
		b[len(b)-1] = 'A'
	}
	return string(b)
}

func mustIssuanceJWS(t *testing.T, compact string) string {
	t.Helper()
	parsed, err := ParseCompact(compact)
	require.NoError(t, err)
	return parsed.JWS
}
