package minimalcipher

import "fmt"

// Kind classifies an Error into one of the seven failure categories this
// library surfaces. Callers branch on Kind, never on Message text.
type Kind string

const (
	// InvalidArgument covers wrong types, wrong lengths, empty recipients,
	// or a malformed version flag, caught before any crypto work begins.
	// Encrypt also returns it when CEK generation, content sealing, key
	// agreement (e.g. a low-order recipient key) or CEK wrapping fails.
	InvalidArgument Kind = "invalid_argument"
	// UnsupportedAlgorithm covers an unknown enc or recipient alg.
	UnsupportedAlgorithm Kind = "unsupported_algorithm"
	// MalformedDocument covers missing fields, non-base64url content, or a
	// bad epk encoding.
	MalformedDocument Kind = "malformed_document"
	// UnknownKey is returned when a resolver has no key for a given kid.
	UnknownKey Kind = "unknown_key"
	// NoMatchingRecipient is returned when no recipient entry's kid matches
	// the local key-agreement key's id.
	NoMatchingRecipient Kind = "no_matching_recipient"
	// DecryptionFailed is the single, undifferentiated failure for any
	// unwrap or AEAD-open failure, regardless of root cause.
	DecryptionFailed Kind = "decryption_failed"
	// KeyProviderError classifies a key provider (HSM or KMS) failure. No
	// operation in this package currently returns it: a resolver failure
	// surfaces as UnknownKey, and a decrypt-side provider failure as
	// DecryptionFailed.
	KeyProviderError Kind = "key_provider_error"
)

// Error is the single exported error type this library returns. Kind lets
// callers branch (e.g. retry on KeyProviderError, never on
// DecryptionFailed); Cause preserves the underlying error for
// errors.Is/errors.As without exposing it through Message.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("minimalcipher: %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("minimalcipher: %s: %s", e.Kind, e.Message)
}

// Unwrap exposes Cause to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Cause }

func newErr(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}
