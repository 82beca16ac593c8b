package jwekey

import (
	"testing"

	"github.com/multiformats/go-multibase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeJWKRoundTrip(t *testing.T) {
	var x [PublicKeySize]byte
	for i := range x {
		x[i] = byte(i)
	}

	jwk := EncodeJWK(x)
	assert.Equal(t, "OKP", jwk.Kty)
	assert.Equal(t, "X25519", jwk.Crv)

	decoded, err := DecodeJWK(jwk)
	require.NoError(t, err)
	assert.Equal(t, x, decoded)
}

func TestDecodeJWKRejectsWrongKty(t *testing.T) {
	jwk := &JWK{Kty: "EC", Crv: "X25519", X: "AAAA"}
	_, err := DecodeJWK(jwk)
	assert.Error(t, err)
}

func TestDecodeJWKRejectsWrongCrv(t *testing.T) {
	jwk := &JWK{Kty: "OKP", Crv: "Ed25519", X: "AAAA"}
	_, err := DecodeJWK(jwk)
	assert.Error(t, err)
}

func TestDecodeJWKRejectsPaddedBase64(t *testing.T) {
	var x [PublicKeySize]byte
	jwk := EncodeJWK(x)
	jwk.X = jwk.X + "=="
	_, err := DecodeJWK(jwk)
	assert.Error(t, err)
}

func TestDecodeJWKRejectsWrongLength(t *testing.T) {
	jwk := &JWK{Kty: "OKP", Crv: "X25519", X: "AAAA"}
	_, err := DecodeJWK(jwk)
	assert.Error(t, err)
}

func TestDecodeJWKRejectsNil(t *testing.T) {
	_, err := DecodeJWK(nil)
	assert.Error(t, err)
}

func TestDecodeMultibaseRawKey(t *testing.T) {
	var x [PublicKeySize]byte
	for i := range x {
		x[i] = byte(i + 1)
	}

	encoded, err := multibase.Encode(multibase.Base58BTC, x[:])
	require.NoError(t, err)

	decoded, err := DecodeMultibase(encoded)
	require.NoError(t, err)
	assert.Equal(t, x, decoded)
}

func TestDecodeMultibaseDidKeyPrefixed(t *testing.T) {
	var x [PublicKeySize]byte
	for i := range x {
		x[i] = byte(i + 2)
	}

	prefixed := append([]byte{0xec, 0x01}, x[:]...)
	encoded, err := multibase.Encode(multibase.Base58BTC, prefixed)
	require.NoError(t, err)

	decoded, err := DecodeMultibase(encoded)
	require.NoError(t, err)
	assert.Equal(t, x, decoded)
}

func TestDecodeMultibaseRejectsUnknownPrefix(t *testing.T) {
	var x [PublicKeySize]byte
	prefixed := append([]byte{0x01, 0x01}, x[:]...)
	encoded, err := multibase.Encode(multibase.Base58BTC, prefixed)
	require.NoError(t, err)

	_, err = DecodeMultibase(encoded)
	assert.Error(t, err)
}

func TestDecodeMultibaseRejectsWrongLength(t *testing.T) {
	encoded, err := multibase.Encode(multibase.Base58BTC, []byte("too-short"))
	require.NoError(t, err)

	_, err = DecodeMultibase(encoded)
	assert.Error(t, err)
}

func TestDecodeMultibaseRejectsInvalidEncoding(t *testing.T) {
	_, err := DecodeMultibase("not-a-multibase-string!!")
	assert.Error(t, err)
}

func TestResolvePublicKeyPrefersJWK(t *testing.T) {
	var x [PublicKeySize]byte
	for i := range x {
		x[i] = byte(i + 3)
	}
	var other [PublicKeySize]byte
	for i := range other {
		other[i] = byte(i + 100)
	}
	otherEncoded, err := multibase.Encode(multibase.Base58BTC, other[:])
	require.NoError(t, err)

	rk := &ResolvedKey{PublicKeyJWK: EncodeJWK(x), PublicKeyMultibase: otherEncoded}
	pub, err := ResolvePublicKey("did:example:123#key-1", rk)
	require.NoError(t, err)
	assert.Equal(t, "did:example:123#key-1", pub.KID)
	assert.Equal(t, x, pub.X)
}

func TestResolvePublicKeyFallsBackToMultibase(t *testing.T) {
	var x [PublicKeySize]byte
	for i := range x {
		x[i] = byte(i + 4)
	}
	encoded, err := multibase.Encode(multibase.Base58BTC, x[:])
	require.NoError(t, err)

	rk := &ResolvedKey{PublicKeyMultibase: encoded}
	pub, err := ResolvePublicKey("did:example:123#key-1", rk)
	require.NoError(t, err)
	assert.Equal(t, x, pub.X)
}

func TestResolvePublicKeyRejectsEmptyResolvedKey(t *testing.T) {
	_, err := ResolvePublicKey("kid", &ResolvedKey{})
	assert.Error(t, err)
}

func TestResolvePublicKeyRejectsNilResolvedKey(t *testing.T) {
	_, err := ResolvePublicKey("kid", nil)
	assert.Error(t, err)
}
