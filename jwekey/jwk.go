package jwekey

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/multiformats/go-multibase"
)

// JWK is the on-wire ephemeral public key shape this module emits and
// accepts: an OKP (octet key pair) JWK for the X25519 curve.
type JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
}

// x25519MulticodecPrefix is the two-byte varint multicodec prefix for an
// X25519 public key as used by did:key (multicodec 0xec, varint-encoded).
var x25519MulticodecPrefix = [2]byte{0xec, 0x01}

// EncodeJWK encodes a raw X25519 public key as an OKP JWK, the only epk
// encoding this module ever writes to the wire.
func EncodeJWK(pub [PublicKeySize]byte) *JWK {
	return &JWK{
		Kty: "OKP",
		Crv: "X25519",
		X:   base64.RawURLEncoding.EncodeToString(pub[:]),
	}
}

// DecodeJWK decodes an OKP/X25519 JWK to a raw 32-byte public key. It
// rejects anything else — wrong kty/crv, wrong length, padded base64url —
// as a malformed key rather than guessing at intent.
func DecodeJWK(jwk *JWK) ([PublicKeySize]byte, error) {
	var out [PublicKeySize]byte

	if jwk == nil {
		return out, errors.New("jwekey: missing epk")
	}
	if jwk.Kty != "OKP" {
		return out, fmt.Errorf("jwekey: unsupported JWK kty %q", jwk.Kty)
	}
	if jwk.Crv != "X25519" {
		return out, fmt.Errorf("jwekey: unsupported JWK crv %q", jwk.Crv)
	}

	x, err := decodeUnpaddedBase64URL(jwk.X)
	if err != nil {
		return out, fmt.Errorf("jwekey: invalid JWK x: %w", err)
	}
	if len(x) != PublicKeySize {
		return out, fmt.Errorf("jwekey: invalid X25519 public key length %d", len(x))
	}

	copy(out[:], x)
	return out, nil
}

// decodeUnpaddedBase64URL decodes s as unpadded base64url, rejecting any
// padded input outright so callers cannot smuggle an aliasable encoding
// past the decoder (spec: "implementers must not accept padded variants").
func decodeUnpaddedBase64URL(s string) ([]byte, error) {
	for _, c := range s {
		if c == '=' {
			return nil, errors.New("padded base64url is not accepted")
		}
	}
	return base64.RawURLEncoding.DecodeString(s)
}

// DecodeMultibase decodes a publicKeyMultibase resolver value to a raw
// 32-byte X25519 public key. It accepts either the bare 32-byte key or the
// did:key-style encoding with a leading 2-byte X25519 multicodec prefix.
func DecodeMultibase(s string) ([PublicKeySize]byte, error) {
	var out [PublicKeySize]byte

	_, data, err := multibase.Decode(s)
	if err != nil {
		return out, fmt.Errorf("jwekey: invalid multibase key: %w", err)
	}

	switch len(data) {
	case PublicKeySize:
		copy(out[:], data)
		return out, nil
	case PublicKeySize + len(x25519MulticodecPrefix):
		if data[0] != x25519MulticodecPrefix[0] || data[1] != x25519MulticodecPrefix[1] {
			return out, errors.New("jwekey: multibase key has an unrecognized multicodec prefix")
		}
		copy(out[:], data[len(x25519MulticodecPrefix):])
		return out, nil
	default:
		return out, fmt.Errorf("jwekey: multibase key has unexpected length %d", len(data))
	}
}

// ResolvePublicKey extracts a raw X25519 public key from whichever encoding
// a ResolvedKey carries, rejecting any other shape as malformed. This is
// the single place the module translates external key encodings into the
// raw form key agreement operates on (spec §9 open question).
func ResolvePublicKey(kid string, rk *ResolvedKey) (*PublicKey, error) {
	if rk == nil {
		return nil, errors.New("jwekey: resolver returned no key")
	}

	switch {
	case rk.PublicKeyJWK != nil:
		x, err := DecodeJWK(rk.PublicKeyJWK)
		if err != nil {
			return nil, err
		}
		return &PublicKey{KID: kid, X: x}, nil

	case rk.PublicKeyMultibase != "":
		x, err := DecodeMultibase(rk.PublicKeyMultibase)
		if err != nil {
			return nil, err
		}
		return &PublicKey{KID: kid, X: x}, nil

	default:
		return nil, errors.New("jwekey: resolved key carries neither a JWK nor a multibase encoding")
	}
}
