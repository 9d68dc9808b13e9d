package sdjwt

import (
	"crypto/md5"  //nolint:gosec // only reachable via AllowWeakAlgorithms, for negative-compatibility tests
	"crypto/sha1" //nolint:gosec // see above
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"strings"
)

// HashAlgorithm names a digest algorithm recognized by the hash registry.
type HashAlgorithm string

const (
	SHA256 HashAlgorithm = "sha-256"
	SHA384 HashAlgorithm = "sha-384"
	SHA512 HashAlgorithm = "sha-512"

	// weak algorithms, usable only with AllowWeakAlgorithms for
	// negative-compatibility tests per spec §4.2.
	weakMD5  HashAlgorithm = "md5"
	weakSHA1 HashAlgorithm = "sha-1"
)

// registry maps a normalized algorithm identifier to its digest factory.
// Factories, not instances, are stored so concurrent callers never share
// mutable hash.Hash state (see spec §5).
var registry = map[HashAlgorithm]func() hash.Hash{
	SHA256:   sha256.New,
	SHA384:   sha512.New384,
	SHA512:   sha512.New,
	weakMD5:  md5.New,
	weakSHA1: sha1.New,
}

var weakAlgorithms = map[HashAlgorithm]bool{
	weakMD5:  true,
	weakSHA1: true,
}

// normalizeHashAlgorithm lowercases an algorithm identifier the way
// spec §4.2 requires for the _sd_alg claim.
func normalizeHashAlgorithm(alg string) HashAlgorithm {
	return HashAlgorithm(strings.ToLower(alg))
}

// resolveHashAlgorithm looks up alg, rejecting unknown and (unless allowed)
// weak algorithms.
func resolveHashAlgorithm(alg HashAlgorithm, allowWeak bool) (func() hash.Hash, error) {
	factory, ok := registry[alg]
	if !ok {
		return nil, newError(ErrUnsupportedAlgorithm, "unknown hash algorithm: "+string(alg), nil)
	}
	if weakAlgorithms[alg] && !allowWeak {
		return nil, newError(ErrWeakAlgorithm, "weak hash algorithm requires AllowWeakAlgorithms: "+string(alg), nil)
	}
	return factory, nil
}

// digest computes H(data) under alg and base64url-encodes the result
// without padding, as required for both disclosure digests and sd_hash.
func digest(alg HashAlgorithm, allowWeak bool, data []byte) (string, error) {
	factory, err := resolveHashAlgorithm(alg, allowWeak)
	if err != nil {
		return "", err
	}
	h := factory()
	h.Write(data)
	return encodeB64URL(h.Sum(nil)), nil
}
