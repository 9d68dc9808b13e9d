package sdjwt

import (
	"crypto/subtle"
)

// reserved claim names a disclosure may never use, per spec §3/§6.
var reservedKeys = map[string]bool{
	"_sd":     true,
	"_sd_alg": true,
	"...":     true,
}

// Disclosure represents one SD-JWT disclosure: a salt, an optional claim
// name (absent for array-element disclosures), and a claim value. Its
// canonical JSON and base64url-encoded forms are computed eagerly at
// construction time so that Digest (and later comparisons) never have to
// re-derive them.
type Disclosure struct {
	salt      string
	claimName *string
	value     Value
	canonical []byte
	encoded   string
}

// Salt returns the disclosure's salt.
func (d *Disclosure) Salt() string { return d.salt }

// ClaimName returns the disclosure's claim name and whether it has one
// (array-element disclosures do not).
func (d *Disclosure) ClaimName() (string, bool) {
	if d.claimName == nil {
		return "", false
	}
	return *d.claimName, true
}

// Value returns the disclosed claim value.
func (d *Disclosure) Value() Value { return d.value }

// Encoded returns the base64url-without-padding encoding of the
// disclosure's canonical JSON form, i.e. the string that appears between
// "~" delimiters in a compact SD-JWT.
func (d *Disclosure) Encoded() string { return d.encoded }

// Equal reports whether two disclosures have the same encoded form, using
// a constant-time comparison per spec §5.
func (d *Disclosure) Equal(other *Disclosure) bool {
	if other == nil {
		return false
	}
	if len(d.encoded) != len(other.encoded) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(d.encoded), []byte(other.encoded)) == 1
}

// NewObjectDisclosure builds a disclosure hiding an object property named
// claimName with the given value. salt must already be a base64url string
// with at least 128 bits of entropy; use generateSalt to create one.
func NewObjectDisclosure(salt, claimName string, value Value) (*Disclosure, error) {
	if claimName == "" {
		return nil, newError(ErrMalformedDisclosure, "claim name must not be empty", nil)
	}
	if reservedKeys[claimName] {
		return nil, newError(ErrReservedKeyUsed, "disclosure claim name is reserved: "+claimName, nil)
	}
	return buildDisclosure(salt, &claimName, value)
}

// NewArrayDisclosure builds a disclosure hiding an array element with the
// given value.
func NewArrayDisclosure(salt string, value Value) (*Disclosure, error) {
	return buildDisclosure(salt, nil, value)
}

func buildDisclosure(salt string, claimName *string, value Value) (*Disclosure, error) {
	if salt == "" {
		return nil, newError(ErrMalformedDisclosure, "salt must not be empty", nil)
	}

	array := []Value{StringValue(salt)}
	if claimName != nil {
		array = append(array, StringValue(*claimName))
	}
	array = append(array, value)

	canonical, err := CanonicalJSON(ArrayValue(array))
	if err != nil {
		return nil, newError(ErrMalformedDisclosure, "failed to canonicalize disclosure", err)
	}

	return &Disclosure{
		salt:      salt,
		claimName: claimName,
		value:     value,
		canonical: canonical,
		encoded:   encodeB64URL(canonical),
	}, nil
}

// ParseDisclosure decodes a disclosure from its base64url-encoded form, the
// representation used between "~" delimiters in a compact SD-JWT.
func ParseDisclosure(encoded string) (*Disclosure, error) {
	if encoded == "" {
		return nil, newError(ErrMalformedDisclosure, "disclosure must not be empty", nil)
	}

	raw, err := decodeB64URL(encoded)
	if err != nil {
		return nil, newError(ErrMalformedDisclosure, "failed to decode disclosure", err)
	}

	v, err := ParseValue(raw)
	if err != nil {
		return nil, newError(ErrMalformedDisclosure, "disclosure is not valid JSON", err)
	}

	items, ok := v.AsArray()
	if !ok {
		return nil, newError(ErrMalformedDisclosure, "disclosure is not a JSON array", nil)
	}
	if len(items) != 2 && len(items) != 3 {
		return nil, newError(ErrMalformedDisclosure, "disclosure array must have 2 or 3 elements", nil)
	}

	salt, ok := items[0].AsString()
	if !ok || salt == "" {
		return nil, newError(ErrMalformedDisclosure, "disclosure salt must be a non-empty string", nil)
	}

	var claimName *string
	var value Value
	if len(items) == 3 {
		name, ok := items[1].AsString()
		if !ok {
			return nil, newError(ErrMalformedDisclosure, "disclosure claim name must be a string", nil)
		}
		if reservedKeys[name] {
			return nil, newError(ErrMalformedDisclosure, "disclosure claim name is reserved: "+name, nil)
		}
		claimName = &name
		value = items[2]
	} else {
		value = items[1]
	}

	return &Disclosure{
		salt:      salt,
		claimName: claimName,
		value:     value,
		canonical: raw,
		encoded:   encoded,
	}, nil
}

// Digest returns the base64url-encoded digest of d's encoded form under
// alg, the value that gets placed in an _sd array or "..." marker.
func (d *Disclosure) Digest(alg HashAlgorithm, allowWeak bool) (string, error) {
	return digest(alg, allowWeak, []byte(d.encoded))
}
