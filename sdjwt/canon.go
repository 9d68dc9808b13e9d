package sdjwt

import (
	"bytes"
	"encoding/json"
)

// writeCanonicalJSON is the canonicalization oracle for everything this
// package serializes before encoding or digesting it: every disclosure's
// canonical JSON form, the issuer payload, JWS headers and the KB-JWS
// payload run through this function, so any divergence here breaks
// interoperability with other implementations. (The verifier digests the
// received disclosure segments as they are and does not re-serialize.)
//
// It follows the recursive writer pattern of RFC 8785 (JCS) canonicalizers
// (marshal each node by hand, disable HTML escaping, pass number literals
// through verbatim) but deliberately does NOT sort object keys the way
// JCS does: SD-JWT's canonical disclosure form preserves the source's
// insertion order (see spec §3/§9), so this writer walks an OrderedMap
// instead of a sorted key slice.
func writeCanonicalJSON(buf *bytes.Buffer, v Value) error {
	switch v.Kind {
	case KindNull:
		buf.WriteString("null")
		return nil
	case KindBool:
		if v.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case KindNumber:
		buf.WriteString(v.Number)
		return nil
	case KindString:
		return writeCanonicalString(buf, v.String)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.Array {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonicalJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case KindObject:
		buf.WriteByte('{')
		if v.Object != nil {
			for i, k := range v.Object.Keys() {
				if i > 0 {
					buf.WriteByte(',')
				}
				if err := writeCanonicalString(buf, k); err != nil {
					return err
				}
				buf.WriteByte(':')
				val, _ := v.Object.Get(k)
				if err := writeCanonicalJSON(buf, val); err != nil {
					return err
				}
			}
		}
		buf.WriteByte('}')
		return nil
	}
	return newError(ErrMalformedDisclosure, "unknown value kind", nil)
}

// writeCanonicalString writes s as a minimally escaped JSON string: no HTML
// escaping (Go's default json.Marshal escapes '<', '>', '&', which RFC 9901
// does not require and which would make digests diverge from other
// implementations' output).
func writeCanonicalString(buf *bytes.Buffer, s string) error {
	var scratch bytes.Buffer
	enc := json.NewEncoder(&scratch)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(scratch.Bytes(), []byte{'\n'}))
	return nil
}

// CanonicalJSON returns the canonical JSON encoding of v as used for
// disclosure and digest computation throughout this package.
func CanonicalJSON(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonicalJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
