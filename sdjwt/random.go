package sdjwt

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	saltBytes  = 16 // 128 bits, the minimum spec §3 requires
	decoyBytes = 64
)

// generateSalt returns a fresh, base64url-encoded disclosure salt with at
// least 128 bits of entropy, drawn from the OS's cryptographic randomness
// source (never math/rand; see spec §9 on the PRNG-shuffle defect it warns
// against).
func generateSalt() (string, error) {
	b := make([]byte, saltBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return encodeB64URL(b), nil
}

// generateDecoyDigest computes the digest of a fresh random buffer, never
// of any real disclosure, so it is indistinguishable from a genuine digest
// to a verifier (spec §4.5 post-processing).
func generateDecoyDigest(alg HashAlgorithm) (string, error) {
	b := make([]byte, decoyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate decoy: %w", err)
	}
	return digest(alg, false, b)
}

// shuffleStrings performs a cryptographically strong Fisher-Yates shuffle
// in place, used to randomize the order of a payload's _sd array so its
// position cannot leak which claims are hidden (spec §4.5).
func shuffleStrings(items []string) error {
	for i := len(items) - 1; i > 0; i-- {
		j, err := randIntn(i + 1)
		if err != nil {
			return err
		}
		items[i], items[j] = items[j], items[i]
	}
	return nil
}

func randIntn(n int) (int, error) {
	max := big.NewInt(int64(n))
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		return 0, fmt.Errorf("crypto rand: %w", err)
	}
	return int(v.Int64()), nil
}
