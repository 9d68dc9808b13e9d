package sdjwt

import "encoding/base64"

// b64 is the URL-safe, unpadded alphabet RFC 9901 (and RFC 7515 before it)
// mandates for every encoded segment: disclosures, digests, and JWS parts.
var b64 = base64.URLEncoding.WithPadding(base64.NoPadding)

// encodeB64URL base64url-encodes data with no padding.
func encodeB64URL(data []byte) string {
	return b64.EncodeToString(data)
}

// decodeB64URL decodes an unpadded base64url string. Non-alphabet
// characters, including '=' padding, are reported as ErrInvalidEncoding.
func decodeB64URL(s string) ([]byte, error) {
	b, err := b64.DecodeString(s)
	if err != nil {
		return nil, newError(ErrInvalidEncoding, "invalid base64url encoding", err)
	}
	return b, nil
}
