package sdjwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateIssuanceOptionsAcceptsKnownAlgorithm(t *testing.T) {
	err := ValidateIssuanceOptions(IssuanceOptions{HashAlgorithm: SHA256, DecoyCount: 2})
	assert.NoError(t, err)
}

func TestValidateIssuanceOptionsRejectsUnknownAlgorithm(t *testing.T) {
	err := ValidateIssuanceOptions(IssuanceOptions{HashAlgorithm: HashAlgorithm("sha-unknown")})
	assert.Error(t, err)
}

func TestValidateIssuanceOptionsRejectsNegativeDecoyCount(t *testing.T) {
	err := ValidateIssuanceOptions(IssuanceOptions{HashAlgorithm: SHA256, DecoyCount: -1})
	assert.Error(t, err)
}

func TestValidateVerificationPolicyRejectsNegativeMaxAge(t *testing.T) {
	err := ValidateVerificationPolicy(VerificationPolicy{MaxKeyBindingAge: -1})
	assert.Error(t, err)
}
