// Package content implements the two content-encryption profiles this
// module supports: "recommended" (XChaCha20-Poly1305) and "fips"
// (AES-256-GCM). Both are modeled behind the same Profile interface so the
// choice is a tagged variant picked once at construction, not a string
// switch scattered through the call stack.
package content

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// CEKSize is the length in bytes of the content encryption key; both
// profiles use a 256-bit CEK.
const CEKSize = 32

// TagSize is the length in bytes of the AEAD authentication tag both
// profiles produce.
const TagSize = 16

// Enc is the JWE "enc" header value identifying a content-encryption
// profile on the wire.
type Enc string

// The two supported "enc" values.
const (
	EncC20P    Enc = "C20P"
	EncA256GCM Enc = "A256GCM"
)

// ErrInvalidArgument is returned when a caller passes a key, IV, or tag of
// the wrong length, before any crypto primitive is invoked.
var ErrInvalidArgument = errors.New("content: invalid argument")

// ErrDecryptionFailed is the single, undifferentiated failure surfaced for
// any AEAD open failure, regardless of whether the tag, AAD, or CEK was
// wrong.
var ErrDecryptionFailed = errors.New("content: decryption failed")

// Sealed is the output of sealing a payload: the ciphertext and
// authentication tag kept as separate fields per the JWE wire format.
type Sealed struct {
	IV         []byte
	Ciphertext []byte
	Tag        []byte
}

// Profile is one content-encryption algorithm: a fixed IV size and the
// ability to seal/open under a CEK with externally supplied AAD.
type Profile interface {
	// Enc returns this profile's wire "enc" identifier.
	Enc() Enc
	// IVSize returns the required nonce length for this profile.
	IVSize() int
	// GenerateKey returns a fresh random 32-byte CEK.
	GenerateKey() ([]byte, error)
	// Seal encrypts payload under cek, authenticating aad, returning a
	// fresh random IV alongside the ciphertext and tag.
	Seal(payload, aad, cek []byte) (*Sealed, error)
	// Open decrypts ciphertext under cek, verifying tag against aad and iv.
	Open(ciphertext, iv, tag, aad, cek []byte) ([]byte, error)
}

// Recommended is the XChaCha20-Poly1305 profile: a 256-bit key, a 192-bit
// (24-byte) random nonce, and a 128-bit tag. The wide nonce makes random
// generation safely collision-resistant across the lifetime of a CEK,
// which is why this is the default profile.
type recommended struct{}

// Recommended is the default content-encryption profile.
var Recommended Profile = recommended{}

func (recommended) Enc() Enc    { return EncC20P }
func (recommended) IVSize() int { return chacha20poly1305.NonceSizeX }

func (recommended) GenerateKey() ([]byte, error) {
	return generateKey()
}

func (recommended) Seal(payload, aad, cek []byte) (*Sealed, error) {
	if len(cek) != CEKSize {
		return nil, ErrInvalidArgument
	}

	aead, err := chacha20poly1305.NewX(cek)
	if err != nil {
		return nil, fmt.Errorf("content: %w", ErrInvalidArgument)
	}

	iv := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}

	return sealWithAEAD(aead, iv, payload, aad)
}

func (recommended) Open(ciphertext, iv, tag, aad, cek []byte) ([]byte, error) {
	if len(cek) != CEKSize || len(iv) != chacha20poly1305.NonceSizeX || len(tag) != TagSize {
		return nil, ErrInvalidArgument
	}

	aead, err := chacha20poly1305.NewX(cek)
	if err != nil {
		return nil, fmt.Errorf("content: %w", ErrInvalidArgument)
	}

	return openWithAEAD(aead, iv, ciphertext, tag, aad)
}

// Fips is the AES-256-GCM profile: a 256-bit key, a 96-bit (12-byte) random
// nonce, and a 128-bit tag. Caller-level message-count limits from NIST SP
// 800-38D apply to a single CEK; enforcing them is outside this module's
// scope, which only ever seals one message per CEK.
type fips struct{}

// Fips is the FIPS 140-compliant content-encryption profile.
var Fips Profile = fips{}

func (fips) Enc() Enc    { return EncA256GCM }
func (fips) IVSize() int { return 12 }

func (fips) GenerateKey() ([]byte, error) {
	return generateKey()
}

func (fips) Seal(payload, aad, cek []byte) (*Sealed, error) {
	if len(cek) != CEKSize {
		return nil, ErrInvalidArgument
	}

	block, err := aes.NewCipher(cek)
	if err != nil {
		return nil, fmt.Errorf("content: %w", ErrInvalidArgument)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, aead.NonceSize())
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}

	return sealWithAEAD(aead, iv, payload, aad)
}

func (fips) Open(ciphertext, iv, tag, aad, cek []byte) ([]byte, error) {
	if len(cek) != CEKSize || len(iv) != 12 || len(tag) != TagSize {
		return nil, ErrInvalidArgument
	}

	block, err := aes.NewCipher(cek)
	if err != nil {
		return nil, fmt.Errorf("content: %w", ErrInvalidArgument)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return openWithAEAD(aead, iv, ciphertext, tag, aad)
}

func generateKey() ([]byte, error) {
	cek := make([]byte, CEKSize)
	if _, err := rand.Read(cek); err != nil {
		return nil, err
	}
	return cek, nil
}

func sealWithAEAD(aead cipher.AEAD, iv, payload, aad []byte) (*Sealed, error) {
	ctWithTag := aead.Seal(nil, iv, payload, aad)
	if len(ctWithTag) < TagSize {
		return nil, errors.New("content: AEAD output shorter than the tag size")
	}

	split := len(ctWithTag) - TagSize
	ciphertext := make([]byte, split)
	copy(ciphertext, ctWithTag[:split])
	tag := make([]byte, TagSize)
	copy(tag, ctWithTag[split:])

	return &Sealed{IV: iv, Ciphertext: ciphertext, Tag: tag}, nil
}

func openWithAEAD(aead cipher.AEAD, iv, ciphertext, tag, aad []byte) ([]byte, error) {
	ctWithTag := make([]byte, 0, len(ciphertext)+len(tag))
	ctWithTag = append(ctWithTag, ciphertext...)
	ctWithTag = append(ctWithTag, tag...)

	pt, err := aead.Open(nil, iv, ctWithTag, aad)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return pt, nil
}

// ForEnc returns the Profile matching a wire "enc" value, or false if it is
// not one of the two profiles this module supports.
func ForEnc(enc Enc) (Profile, bool) {
	switch enc {
	case EncC20P:
		return Recommended, true
	case EncA256GCM:
		return Fips, true
	default:
		return nil, false
	}
}
