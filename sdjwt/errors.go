package sdjwt

import "fmt"

// ErrorKind names one failure mode from the core's error taxonomy. Issue,
// IssueVC, ParseIssuance, Present, Verify and the compact, disclosure and
// JWS helpers report every failure as exactly one of these. ParseValue,
// FromInterface, NewEdDSASigner and NewEdDSAVerifier return plain errors.
type ErrorKind string

const (
	ErrInvalidEncoding       ErrorKind = "invalid_encoding"
	ErrMalformedCompact      ErrorKind = "malformed_compact"
	ErrMalformedDisclosure   ErrorKind = "malformed_disclosure"
	ErrMalformedJws          ErrorKind = "malformed_jws"
	ErrSignatureInvalid      ErrorKind = "signature_invalid"
	ErrAlgorithmNotAllowed   ErrorKind = "algorithm_not_allowed"
	ErrUnsupportedAlgorithm  ErrorKind = "unsupported_algorithm"
	ErrWeakAlgorithm         ErrorKind = "weak_algorithm"
	ErrUnknownKey            ErrorKind = "unknown_key"
	ErrDigestMismatch        ErrorKind = "digest_mismatch"
	ErrDuplicateClaim        ErrorKind = "duplicate_claim"
	ErrDisclosureTypeMismatch ErrorKind = "disclosure_type_mismatch"
	ErrMissingRequiredClaim  ErrorKind = "missing_required_claim"
	ErrStaleKeyBinding       ErrorKind = "stale_key_binding"
	ErrAudienceMismatch      ErrorKind = "audience_mismatch"
	ErrNonceMismatch         ErrorKind = "nonce_mismatch"
	ErrIssuerMismatch        ErrorKind = "issuer_mismatch"
	ErrReservedKeyUsed       ErrorKind = "reserved_key_used"
	ErrCancelled             ErrorKind = "cancelled"
	ErrKeyBindingKeyMissing  ErrorKind = "key_binding_key_missing"
	ErrUnknownAlgorithm      ErrorKind = "unknown_algorithm"
)

// Error is the error type those operations return. It
// carries a stable Kind a caller can switch on, a human-readable Message,
// and never includes raw salts or disclosures unrelated to the failure.
type Error struct {
	Kind    ErrorKind
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("sdjwt: %s: %s: %s", e.Kind, e.Message, e.err)
	}
	return fmt.Sprintf("sdjwt: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, &sdjwt.Error{Kind: sdjwt.ErrStaleKeyBinding}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, err: cause}
}

// KindOf extracts the ErrorKind from err if it is (or wraps) an *Error.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Kind, true
	}
	return "", false
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}
