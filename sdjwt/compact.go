package sdjwt

import "strings"

// ParsedCompact is the result of splitting a compact SD-JWT (or SD-JWT
// presentation) into its three logical parts, per the grammar in spec §6:
//
//	SD-JWT = JWS "~" Disclosures [ KB-JWS ]
//
// Serializing a ParsedCompact always reproduces the original string
// (spec §8 round-trip law), since the segment list is kept verbatim
// rather than re-derived from decoded disclosures.
type ParsedCompact struct {
	JWS             string
	DisclosureSegs  []string
	KeyBindingJWS   string // "" if absent
	HasKeyBinding   bool
}

// SerializeCompact assembles jwsCompact, disclosures (in order), and an
// optional kbJWS into the compact SD-JWT string. Pass "" for kbJWS when
// there is no Key Binding; the result then ends in a single trailing "~".
func SerializeCompact(jwsCompact string, disclosures []*Disclosure, kbJWS string) (string, error) {
	if jwsCompact == "" {
		return "", newError(ErrMalformedCompact, "JWS segment must not be empty", nil)
	}
	var b strings.Builder
	b.WriteString(jwsCompact)
	b.WriteByte('~')
	for _, d := range disclosures {
		b.WriteString(d.Encoded())
		b.WriteByte('~')
	}
	if kbJWS != "" {
		b.WriteString(kbJWS)
	}
	return b.String(), nil
}

// serializeCompactEncoded is like SerializeCompact but takes already
// base64url-encoded disclosure strings directly, for the holder's
// presentation path where only a subset of parsed disclosures is kept.
func serializeCompactEncoded(jwsCompact string, disclosureSegs []string, kbJWS string) string {
	var b strings.Builder
	b.WriteString(jwsCompact)
	b.WriteByte('~')
	for _, seg := range disclosureSegs {
		b.WriteString(seg)
		b.WriteByte('~')
	}
	if kbJWS != "" {
		b.WriteString(kbJWS)
	}
	return b.String()
}

// ParseCompact splits a compact SD-JWT string into its JWS, disclosure
// segments, and optional KB-JWS, per the strict grammar of spec §6: the
// first segment (JWS) must be non-empty, every intermediate segment must
// be non-empty, and at least two segments (JWS plus the trailing "~")
// must be present. This is stricter than a bare strings.Split, which would
// silently accept a missing trailing separator or collapse consecutive
// "~~" into an ambiguous empty segment without rejecting it.
func ParseCompact(compact string) (*ParsedCompact, error) {
	if compact == "" {
		return nil, newError(ErrMalformedCompact, "compact SD-JWT must not be empty", nil)
	}

	segments := strings.Split(compact, "~")
	if len(segments) < 2 {
		return nil, newError(ErrMalformedCompact, "compact SD-JWT must contain at least one '~'", nil)
	}

	if segments[0] == "" {
		return nil, newError(ErrMalformedCompact, "JWS segment must not be empty", nil)
	}

	last := segments[len(segments)-1]
	middle := segments[1 : len(segments)-1]

	for _, seg := range middle {
		if seg == "" {
			return nil, newError(ErrMalformedCompact, "disclosure segment must not be empty", nil)
		}
	}

	parsed := &ParsedCompact{
		JWS:            segments[0],
		DisclosureSegs: middle,
	}
	if last != "" {
		parsed.KeyBindingJWS = last
		parsed.HasKeyBinding = true
	}
	return parsed, nil
}
