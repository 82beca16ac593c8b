package primitives

import (
	"crypto/aes"
	"errors"
)

// defaultIV is the RFC 3394 default integrity check register.
var defaultIV = [8]byte{0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6}

// KWKSize is the required length in bytes of the key-wrapping key.
const KWKSize = 32

// ErrWrongKeySize is returned when the CEK or KWK does not have the length
// this module works with.
var ErrWrongKeySize = errors.New("primitives: key has the wrong length")

// AESKeyWrap wraps a 32-byte CEK under a 32-byte KWK per RFC 3394, producing
// 40 bytes of output (one extra 64-bit block holding the integrity check
// value).
func AESKeyWrap(kwk, cek []byte) ([]byte, error) {
	if len(kwk) != KWKSize {
		return nil, ErrWrongKeySize
	}
	if len(cek) == 0 || len(cek)%8 != 0 {
		return nil, errors.New("primitives: CEK length must be a non-zero multiple of 8")
	}

	block, err := aes.NewCipher(kwk)
	if err != nil {
		return nil, err
	}

	n := len(cek) / 8
	r := make([]byte, (n+1)*8)
	copy(r[:8], defaultIV[:])
	copy(r[8:], cek)

	b := make([]byte, 16)
	for j := 0; j <= 5; j++ {
		for i := 1; i <= n; i++ {
			copy(b[:8], r[:8])
			copy(b[8:], r[i*8:i*8+8])

			block.Encrypt(b, b)

			t := uint64(j)*uint64(n) + uint64(i)
			for k := 0; k < 8; k++ {
				b[7-k] ^= byte(t >> (8 * k))
			}

			copy(r[:8], b[:8])
			copy(r[i*8:i*8+8], b[8:])
		}
	}

	return r, nil
}

// AESKeyUnwrap inverts AESKeyWrap, verifying the RFC 3394 integrity check
// value in constant time. A wrong KWK value and a tampered block both fail
// that check and produce the same error; a KWK of the wrong length
// (ErrWrongKeySize) and a wrapped input of invalid length each produce a
// distinct error.
func AESKeyUnwrap(kwk, wrapped []byte) ([]byte, error) {
	if len(kwk) != KWKSize {
		return nil, ErrWrongKeySize
	}
	if len(wrapped)%8 != 0 || len(wrapped) < 24 {
		return nil, errors.New("primitives: wrapped key has invalid length")
	}

	block, err := aes.NewCipher(kwk)
	if err != nil {
		return nil, err
	}

	n := len(wrapped)/8 - 1
	r := make([]byte, (n+1)*8)
	copy(r, wrapped)

	b := make([]byte, 16)
	for j := 5; j >= 0; j-- {
		for i := n; i >= 1; i-- {
			t := uint64(j)*uint64(n) + uint64(i)
			copy(b[:8], r[:8])
			for k := 0; k < 8; k++ {
				b[7-k] ^= byte(t >> (8 * k))
			}
			copy(b[8:], r[i*8:i*8+8])

			block.Decrypt(b, b)

			copy(r[:8], b[:8])
			copy(r[i*8:i*8+8], b[8:])
		}
	}

	if !constantTimeEqual(r[:8], defaultIV[:]) {
		return nil, errors.New("primitives: integrity check failed")
	}

	return r[8:], nil
}

// constantTimeEqual compares two equal-length byte slices without
// short-circuiting on the first mismatch.
func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var v byte
	for i := range a {
		v |= a[i] ^ b[i]
	}
	return v == 0
}
