// Package agreement implements ECDH-ES over X25519 with Concat-KDF
// (NIST SP 800-56A §5.8.1) to produce a fixed 256-bit key-wrapping key, per
// the wrapping algorithm identifier "ECDH-ES+A256KW".
package agreement

import (
	"crypto/ecdh"
	"encoding/binary"

	"github.com/digitalcredentials/minimal-cipher-go/internal/primitives"
)

// AlgorithmID is the fixed Concat-KDF AlgorithmID for this module's one
// wrapping algorithm. It never varies with the content-encryption profile.
const AlgorithmID = "ECDH-ES+A256KW"

// KWKSize is the length in bytes of the derived key-wrapping key (256 bits).
const KWKSize = 32

// Ephemeral holds the outcome of running ECDH-ES for one recipient: the
// derived key-wrapping key and the ephemeral public key to publish in that
// recipient's header. The raw shared secret is zeroised before this struct
// is returned. The ephemeral *ecdh.PrivateKey is discarded but not
// zeroised: crypto/ecdh offers no way to clear its internal scalar.
type Ephemeral struct {
	KWK          [KWKSize]byte
	EphemeralPub [primitives.X25519PublicKeySize]byte
}

// Derive runs ECDH-ES against recipientPub: it generates a fresh ephemeral
// X25519 keypair, computes the shared secret, and feeds it through
// Concat-KDF to produce the key-wrapping key. The ephemeral keypair is
// scoped to this call and never reused.
func Derive(recipientPub [primitives.X25519PublicKeySize]byte) (*Ephemeral, error) {
	eph, err := primitives.X25519Generate()
	if err != nil {
		return nil, err
	}
	defer zeroizePrivate(eph.Private)

	z, err := primitives.X25519Derive(eph.Private, recipientPub)
	if err != nil {
		return nil, err
	}
	defer primitives.Zeroize(z)

	kwk := concatKDF(z, KWKSize)

	out := &Ephemeral{EphemeralPub: eph.Public}
	copy(out.KWK[:], kwk)
	primitives.Zeroize(kwk)

	return out, nil
}

// DeriveForDecrypt re-derives the same key-wrapping key on the recipient
// side: priv is the recipient's static X25519 private key, epk is the
// ephemeral public key taken from the recipient's header.
func DeriveForDecrypt(priv *ecdh.PrivateKey, epk [primitives.X25519PublicKeySize]byte) ([KWKSize]byte, error) {
	var kwk [KWKSize]byte

	z, err := primitives.X25519Derive(priv, epk)
	if err != nil {
		return kwk, err
	}
	defer primitives.Zeroize(z)

	derived := concatKDF(z, KWKSize)
	copy(kwk[:], derived)
	primitives.Zeroize(derived)

	return kwk, nil
}

// DeriveKWKFromSecret runs Concat-KDF over an already-computed shared
// secret z, zeroising z before returning. This is the path used when the
// caller's KeyAgreementKey performs DeriveSecret itself (e.g. an HSM),
// rather than exposing its static private key for DeriveForDecrypt.
func DeriveKWKFromSecret(z []byte) ([KWKSize]byte, error) {
	var kwk [KWKSize]byte
	defer primitives.Zeroize(z)

	derived := concatKDF(z, KWKSize)
	copy(kwk[:], derived)
	primitives.Zeroize(derived)

	return kwk, nil
}

// concatKDF implements the single-step Concat KDF from NIST SP 800-56A
// §5.8.1 using SHA-256 as the hash. PartyUInfo and PartyVInfo are empty;
// SuppPubInfo is the requested key length in bits. One round suffices
// because SHA-256's output is exactly 32 bytes, the only keyLen this
// module ever asks for.
func concatKDF(z []byte, keyLen int) []byte {
	algID := lengthPrefixed([]byte(AlgorithmID))
	partyU := lengthPrefixed(nil)
	partyV := lengthPrefixed(nil)

	suppPubInfo := make([]byte, 4)
	binary.BigEndian.PutUint32(suppPubInfo, uint32(keyLen)*8)

	otherInfo := make([]byte, 0, len(algID)+len(partyU)+len(partyV)+len(suppPubInfo))
	otherInfo = append(otherInfo, algID...)
	otherInfo = append(otherInfo, partyU...)
	otherInfo = append(otherInfo, partyV...)
	otherInfo = append(otherInfo, suppPubInfo...)

	out := make([]byte, 0, keyLen)
	for counter := uint32(1); len(out) < keyLen; counter++ {
		counterBuf := make([]byte, 4)
		binary.BigEndian.PutUint32(counterBuf, counter)

		h := append(append([]byte{}, counterBuf...), z...)
		h = append(h, otherInfo...)

		out = append(out, primitives.SHA256(h)...)
	}

	return out[:keyLen]
}

// lengthPrefixed returns data prefixed with its length as a 4-byte
// big-endian integer, per the Concat-KDF OtherInfo encoding.
func lengthPrefixed(data []byte) []byte {
	out := make([]byte, 4+len(data))
	binary.BigEndian.PutUint32(out, uint32(len(data)))
	copy(out[4:], data)
	return out
}

// zeroizePrivate clears the byte slice returned by priv.Bytes(), which is a
// copy; the scalar held inside priv itself is left unchanged.
func zeroizePrivate(priv *ecdh.PrivateKey) {
	b := priv.Bytes()
	primitives.Zeroize(b)
}
