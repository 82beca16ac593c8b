package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profiles() map[string]Profile {
	return map[string]Profile{"recommended": Recommended, "fips": Fips}
}

func TestRoundTrip(t *testing.T) {
	for name, p := range profiles() {
		t.Run(name, func(t *testing.T) {
			cek, err := p.GenerateKey()
			require.NoError(t, err)

			aad := []byte("aad-bytes")
			payload := []byte("hello, jwe")

			sealed, err := p.Seal(payload, aad, cek)
			require.NoError(t, err)
			assert.Len(t, sealed.IV, p.IVSize())
			assert.Len(t, sealed.Tag, TagSize)

			out, err := p.Open(sealed.Ciphertext, sealed.IV, sealed.Tag, aad, cek)
			require.NoError(t, err)
			assert.Equal(t, payload, out)
		})
	}
}

func TestEmptyPayloadRoundTrip(t *testing.T) {
	for name, p := range profiles() {
		t.Run(name, func(t *testing.T) {
			cek, err := p.GenerateKey()
			require.NoError(t, err)

			sealed, err := p.Seal(nil, []byte("aad"), cek)
			require.NoError(t, err)
			assert.Len(t, sealed.Ciphertext, 0)
			assert.Len(t, sealed.Tag, TagSize)

			out, err := p.Open(sealed.Ciphertext, sealed.IV, sealed.Tag, []byte("aad"), cek)
			require.NoError(t, err)
			assert.Empty(t, out)
		})
	}
}

func TestNoncesAreNonDeterministic(t *testing.T) {
	for name, p := range profiles() {
		t.Run(name, func(t *testing.T) {
			cek, err := p.GenerateKey()
			require.NoError(t, err)

			a, err := p.Seal([]byte("x"), nil, cek)
			require.NoError(t, err)
			b, err := p.Seal([]byte("x"), nil, cek)
			require.NoError(t, err)

			assert.NotEqual(t, a.IV, b.IV)
		})
	}
}

func TestAADMismatchFails(t *testing.T) {
	for name, p := range profiles() {
		t.Run(name, func(t *testing.T) {
			cek, err := p.GenerateKey()
			require.NoError(t, err)

			sealed, err := p.Seal([]byte("payload"), []byte("aad-a"), cek)
			require.NoError(t, err)

			_, err = p.Open(sealed.Ciphertext, sealed.IV, sealed.Tag, []byte("aad-b"), cek)
			assert.ErrorIs(t, err, ErrDecryptionFailed)
		})
	}
}

func TestTamperedTagFails(t *testing.T) {
	for name, p := range profiles() {
		t.Run(name, func(t *testing.T) {
			cek, err := p.GenerateKey()
			require.NoError(t, err)

			sealed, err := p.Seal([]byte("payload"), nil, cek)
			require.NoError(t, err)
			sealed.Tag[0] ^= 0xFF

			_, err = p.Open(sealed.Ciphertext, sealed.IV, sealed.Tag, nil, cek)
			assert.ErrorIs(t, err, ErrDecryptionFailed)
		})
	}
}

func TestTamperedCiphertextFails(t *testing.T) {
	for name, p := range profiles() {
		t.Run(name, func(t *testing.T) {
			cek, err := p.GenerateKey()
			require.NoError(t, err)

			sealed, err := p.Seal([]byte("payload"), nil, cek)
			require.NoError(t, err)
			sealed.Ciphertext[0] ^= 0xFF

			_, err = p.Open(sealed.Ciphertext, sealed.IV, sealed.Tag, nil, cek)
			assert.ErrorIs(t, err, ErrDecryptionFailed)
		})
	}
}

func TestWrongCEKFails(t *testing.T) {
	for name, p := range profiles() {
		t.Run(name, func(t *testing.T) {
			cek, err := p.GenerateKey()
			require.NoError(t, err)
			other, err := p.GenerateKey()
			require.NoError(t, err)

			sealed, err := p.Seal([]byte("payload"), nil, cek)
			require.NoError(t, err)

			_, err = p.Open(sealed.Ciphertext, sealed.IV, sealed.Tag, nil, other)
			assert.ErrorIs(t, err, ErrDecryptionFailed)
		})
	}
}

func TestInvalidArgumentRejectedBeforeCrypto(t *testing.T) {
	for name, p := range profiles() {
		t.Run(name, func(t *testing.T) {
			_, err := p.Seal([]byte("x"), nil, []byte("too-short"))
			assert.ErrorIs(t, err, ErrInvalidArgument)

			cek, err := p.GenerateKey()
			require.NoError(t, err)

			_, err = p.Open([]byte("ct"), []byte("bad-iv"), make([]byte, TagSize), nil, cek)
			assert.ErrorIs(t, err, ErrInvalidArgument)

			_, err = p.Open([]byte("ct"), make([]byte, p.IVSize()), []byte("bad-tag"), nil, cek)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestForEnc(t *testing.T) {
	p, ok := ForEnc(EncC20P)
	assert.True(t, ok)
	assert.Equal(t, Recommended, p)

	p, ok = ForEnc(EncA256GCM)
	assert.True(t, ok)
	assert.Equal(t, Fips, p)

	_, ok = ForEnc("bogus")
	assert.False(t, ok)
}
