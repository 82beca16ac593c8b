// Package primitives provides the thin, byte-oriented crypto contract the
// rest of the module is built on: randomness, SHA-256, X25519 key
// agreement, and AES Key Wrap. The content-encryption AEADs (AES-GCM and
// XChaCha20-Poly1305) are not here; internal/content calls them directly.
package primitives

import (
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"errors"
)

// X25519PublicKeySize is the length in bytes of a raw X25519 public key.
const X25519PublicKeySize = 32

// ErrLowOrderPoint is returned when an ECDH derivation produces an all-zero
// shared secret, which indicates a contributory / small-subgroup public key.
var ErrLowOrderPoint = errors.New("primitives: ECDH produced a low-order (all-zero) shared secret")

// Random returns n cryptographically secure random bytes.
func Random(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// SHA256 returns the SHA-256 digest of data.
func SHA256(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// X25519KeyPair is an ephemeral or static X25519 keypair in raw byte form.
type X25519KeyPair struct {
	Private *ecdh.PrivateKey
	Public  [X25519PublicKeySize]byte
}

// X25519Generate generates a fresh X25519 keypair using the process CSPRNG.
func X25519Generate() (*X25519KeyPair, error) {
	priv, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}

	var pub [X25519PublicKeySize]byte
	copy(pub[:], priv.PublicKey().Bytes())

	return &X25519KeyPair{Private: priv, Public: pub}, nil
}

// X25519Derive computes the ECDH shared secret between a local private key
// and a remote raw public key. It rejects an all-zero result defensively,
// even though crypto/ecdh's X25519 implementation already refuses known
// low-order public keys.
func X25519Derive(priv *ecdh.PrivateKey, remotePub [X25519PublicKeySize]byte) ([]byte, error) {
	pub, err := ecdh.X25519().NewPublicKey(remotePub[:])
	if err != nil {
		return nil, err
	}

	z, err := priv.ECDH(pub)
	if err != nil {
		return nil, err
	}

	if isAllZero(z) {
		return nil, ErrLowOrderPoint
	}

	return z, nil
}

// X25519PrivateFromSeed reconstructs an *ecdh.PrivateKey from raw seed bytes,
// used by callers that hold their static private key as a 32-byte value.
func X25519PrivateFromSeed(seed []byte) (*ecdh.PrivateKey, error) {
	return ecdh.X25519().NewPrivateKey(seed)
}

func isAllZero(b []byte) bool {
	var v byte
	for _, c := range b {
		v |= c
	}
	return v == 0
}

// Zeroize overwrites b with zeros in place. Best-effort: Go's garbage
// collector may have already copied the underlying bytes elsewhere, but it
// still removes the easiest-to-find copy.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
