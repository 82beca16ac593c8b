package primitives

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RFC 3394 §4.6 test vector: wrapping a 256-bit key with a 256-bit KEK.
func TestAESKeyWrap_RFC3394Vector(t *testing.T) {
	kek, err := hex.DecodeString("000102030405060708090A0B0C0D0E0F101112131415161718191A1B1C1D1E1F")
	require.NoError(t, err)
	cek32, err := hex.DecodeString("00112233445566778899AABBCCDDEEFF000102030405060708090A0B0C0D0E0F")
	require.NoError(t, err)
	want, err := hex.DecodeString("28C9F404C4B810F4CBCCB35CFB87F8263F5786E2D80ED326CBC7F0E71A99F43BFB988B9B7A02DD21")

	require.NoError(t, err)

	wrapped, err := AESKeyWrap(kek, cek32)
	require.NoError(t, err)
	assert.Equal(t, want, wrapped)

	unwrapped, err := AESKeyUnwrap(kek, wrapped)
	require.NoError(t, err)
	assert.Equal(t, cek32, unwrapped)
}

func TestAESKeyUnwrap_TamperedCiphertextFails(t *testing.T) {
	kwk, err := Random(KWKSize)
	require.NoError(t, err)
	cek, err := Random(32)
	require.NoError(t, err)

	wrapped, err := AESKeyWrap(kwk, cek)
	require.NoError(t, err)

	wrapped[0] ^= 0xFF

	_, err = AESKeyUnwrap(kwk, wrapped)
	assert.Error(t, err)
}

func TestAESKeyUnwrap_WrongKWKFails(t *testing.T) {
	kwk, err := Random(KWKSize)
	require.NoError(t, err)
	other, err := Random(KWKSize)
	require.NoError(t, err)
	cek, err := Random(32)
	require.NoError(t, err)

	wrapped, err := AESKeyWrap(kwk, cek)
	require.NoError(t, err)

	_, err = AESKeyUnwrap(other, wrapped)
	assert.Error(t, err)
}

func TestAESKeyWrap_RejectsWrongSizes(t *testing.T) {
	_, err := AESKeyWrap([]byte("short"), make([]byte, 32))
	assert.Error(t, err)

	kwk, err := Random(KWKSize)
	require.NoError(t, err)

	_, err = AESKeyWrap(kwk, make([]byte, 7))
	assert.Error(t, err)
}
