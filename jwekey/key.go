// Package jwekey defines the key material this module operates on: a
// recipient's static X25519 public key, the caller-supplied resolver and
// key-agreement capability that produce and consume it, and the on-wire
// JWK/multibase encodings the codec accepts.
package jwekey

import (
	"context"
	"crypto/ecdh"

	"github.com/digitalcredentials/minimal-cipher-go/internal/primitives"
)

// PublicKeySize is the length in bytes of a raw X25519 public key.
const PublicKeySize = 32

// PublicKey is an X25519 public key paired with the key identifier (kid)
// it was resolved under. It is immutable once constructed.
type PublicKey struct {
	KID string
	X   [PublicKeySize]byte
}

// ResolvedKey is what a KeyResolver returns: a DID-document-style key
// descriptor whose public key material may arrive as a JWK or as a
// multibase string (spec §6). If PublicKeyJWK is set it is used and
// PublicKeyMultibase is ignored; if neither is set the codec rejects the key.
type ResolvedKey struct {
	ID                 string
	Type               string
	PublicKeyJWK       *JWK
	PublicKeyMultibase string
}

// KeyResolver resolves a recipient's kid to its public key material. It
// may suspend on network or storage I/O; callers pass a context so that
// suspension can be cancelled cooperatively.
type KeyResolver func(ctx context.Context, kid string) (*ResolvedKey, error)

// KeyAgreementKey is a local, possibly HSM-backed X25519 key capable of
// ECDH-ES. Its secret material never needs to leave the provider: only
// DeriveSecret is required to decrypt.
type KeyAgreementKey interface {
	// ID returns this key's identifier (kid), matched against the
	// recipient headers of an incoming document.
	ID() string
	// Type returns the declared key-agreement algorithm, e.g.
	// "X25519KeyAgreementKey2020".
	Type() string
	// DeriveSecret performs X25519 ECDH between this key's private
	// material and pub, returning the 32-byte shared secret.
	DeriveSecret(ctx context.Context, pub *PublicKey) ([]byte, error)
}

// KeyWrapper is an optional capability a KeyAgreementKey may also
// implement: a higher-level KEK abstraction (e.g. an HSM or KMS) that
// performs wrap/unwrap itself instead of handing back a raw shared secret
// for this module's internal Concat-KDF + AES-KW pipeline.
type KeyWrapper interface {
	// WrapKey derives a key-wrapping key for pub and wraps cek under it,
	// returning the wrapped bytes and the ephemeral public key used.
	WrapKey(ctx context.Context, cek []byte, pub *PublicKey) (wrapped []byte, epk *PublicKey, err error)
	// UnwrapKey derives the key-wrapping key for the given ephemeral
	// public key and unwraps wrapped under it.
	UnwrapKey(ctx context.Context, wrapped []byte, epk *PublicKey) ([]byte, error)
}

// StaticKeyAgreementKey is a plain, in-memory KeyAgreementKey backed by a
// raw X25519 private key. Most callers that are not backed by an HSM will
// use this.
type StaticKeyAgreementKey struct {
	id      string
	private *ecdh.PrivateKey
}

// NewStaticKeyAgreementKey builds a StaticKeyAgreementKey from a 32-byte
// X25519 private key seed.
func NewStaticKeyAgreementKey(id string, privateSeed []byte) (*StaticKeyAgreementKey, error) {
	priv, err := primitives.X25519PrivateFromSeed(privateSeed)
	if err != nil {
		return nil, err
	}
	return &StaticKeyAgreementKey{id: id, private: priv}, nil
}

// ID implements KeyAgreementKey.
func (k *StaticKeyAgreementKey) ID() string { return k.id }

// Type implements KeyAgreementKey.
func (k *StaticKeyAgreementKey) Type() string { return "X25519KeyAgreementKey2020" }

// Public returns this key's public counterpart.
func (k *StaticKeyAgreementKey) Public() *PublicKey {
	var x [PublicKeySize]byte
	copy(x[:], k.private.PublicKey().Bytes())
	return &PublicKey{KID: k.id, X: x}
}

// DeriveSecret implements KeyAgreementKey.
func (k *StaticKeyAgreementKey) DeriveSecret(_ context.Context, pub *PublicKey) ([]byte, error) {
	return primitives.X25519Derive(k.private, pub.X)
}

// Private exposes the underlying private key for internal callers that
// need to re-derive a shared secret through the shared primitives package
// rather than through this interface (avoids an import cycle between
// jwekey and internal/agreement).
func (k *StaticKeyAgreementKey) Private() *ecdh.PrivateKey { return k.private }
