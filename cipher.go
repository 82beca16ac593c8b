// Package minimalcipher implements a minimal JSON Web Encryption (JWE)
// library: authenticated encryption and decryption of arbitrary payloads to
// one or more recipients identified by X25519 key-agreement keys, emitted
// and consumed as JWE documents in RFC 7516 general JSON serialization.
//
// Key material storage, DID/URL key resolution, credential framing, and
// logging are treated as external collaborators — callers supply a
// KeyResolver and a KeyAgreementKey; this package owns only the
// content-encryption and key-agreement pipeline.
package minimalcipher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/digitalcredentials/minimal-cipher-go/internal/content"
	"github.com/digitalcredentials/minimal-cipher-go/internal/primitives"
	"github.com/digitalcredentials/minimal-cipher-go/jwedoc"
	"github.com/digitalcredentials/minimal-cipher-go/jwekey"
)

// Version selects a content-encryption profile at construction. The
// wrapping algorithm is fixed to ECDH-ES+A256KW regardless of Version.
type Version string

const (
	// Recommended selects XChaCha20-Poly1305 ("C20P"), the default.
	Recommended Version = "recommended"
	// Fips selects AES-256-GCM ("A256GCM").
	Fips Version = "fips"
)

// Cipher is the public facade: construct once per Version, then call
// Encrypt/Decrypt (or the Object variants) any number of times. A Cipher
// holds no mutable state and is safe for concurrent use.
type Cipher struct {
	profile content.Profile
}

// New constructs a Cipher for the given version. An empty Version defaults
// to Recommended, matching spec.md §4.7.
func New(version Version) (*Cipher, error) {
	switch version {
	case "", Recommended:
		return &Cipher{profile: content.Recommended}, nil
	case Fips:
		return &Cipher{profile: content.Fips}, nil
	default:
		return nil, newErr(InvalidArgument, fmt.Sprintf("unknown version %q", version), nil)
	}
}

// Encrypt seals data under a fresh CEK and assembles a JWE document for
// every recipient template. recipients must be non-empty; resolver must be
// non-nil. The state machine is Init → CekGenerated → ContentSealed →
// RecipientsAssembled → Emitted; any step's failure aborts the whole
// operation and zeroises the CEK before returning.
func (c *Cipher) Encrypt(ctx context.Context, data []byte, recipients []RecipientTemplate, resolver jwekey.KeyResolver) (*jwedoc.Document, error) {
	if len(recipients) == 0 {
		return nil, newErr(InvalidArgument, "recipients must be non-empty", nil)
	}
	if resolver == nil {
		return nil, newErr(InvalidArgument, "resolver must not be nil", nil)
	}

	// CekGenerated
	cek, err := c.profile.GenerateKey()
	if err != nil {
		return nil, newErr(InvalidArgument, "generate cek", err)
	}
	defer primitives.Zeroize(cek)

	protected, err := jwedoc.BuildProtected(string(c.profile.Enc()))
	if err != nil {
		return nil, newErr(InvalidArgument, "build protected header", err)
	}
	aad := jwedoc.AAD(protected)

	// ContentSealed
	sealed, err := c.profile.Seal(data, aad, cek)
	if err != nil {
		return nil, newErr(InvalidArgument, "seal content", err)
	}

	// RecipientsAssembled
	recs, err := assembleRecipients(ctx, cek, recipients, resolver)
	if err != nil {
		return nil, err
	}

	// Emitted
	return jwedoc.Marshal(protected, recs, sealed.IV, sealed.Ciphertext, sealed.Tag), nil
}

// EncryptObject JSON-serializes obj to UTF-8 bytes, then encrypts it.
func (c *Cipher) EncryptObject(ctx context.Context, obj any, recipients []RecipientTemplate, resolver jwekey.KeyResolver) (*jwedoc.Document, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, newErr(InvalidArgument, "marshal object", err)
	}
	return c.Encrypt(ctx, data, recipients, resolver)
}

// Decrypt parses doc, selects the recipient entry matching kak's id, and
// recovers the original payload. Once a recipient has been selected, a
// failure of the derived secret, the key unwrap, or the AEAD open surfaces
// as DecryptionFailed, whichever was the actual cause. An epk,
// encrypted_key, iv, ciphertext or tag that does not decode, or an iv or tag
// of the wrong length, is reported as MalformedDocument instead.
func (c *Cipher) Decrypt(ctx context.Context, doc *jwedoc.Document, kak jwekey.KeyAgreementKey) ([]byte, error) {
	if doc == nil {
		return nil, newErr(InvalidArgument, "document must not be nil", nil)
	}
	if kak == nil {
		return nil, newErr(InvalidArgument, "key agreement key must not be nil", nil)
	}

	hdr, err := jwedoc.ParseProtected(doc.Protected)
	if err != nil {
		return nil, newErr(MalformedDocument, "parse protected header", err)
	}

	profile, ok := content.ForEnc(content.Enc(hdr.Enc))
	if !ok {
		return nil, newErr(UnsupportedAlgorithm, fmt.Sprintf("unsupported enc %q", hdr.Enc), nil)
	}

	rec, err := selectRecipient(doc.Recipients, kak.ID())
	if err != nil {
		return nil, err
	}

	cek, err := unwrapCEK(ctx, rec, kak)
	if err != nil {
		return nil, err
	}
	defer primitives.Zeroize(cek)

	iv, err := jwedoc.DecodeB64(doc.IV)
	if err != nil {
		return nil, newErr(MalformedDocument, "decode iv", err)
	}
	ciphertext, err := jwedoc.DecodeB64(doc.Ciphertext)
	if err != nil {
		return nil, newErr(MalformedDocument, "decode ciphertext", err)
	}
	tag, err := jwedoc.DecodeB64(doc.Tag)
	if err != nil {
		return nil, newErr(MalformedDocument, "decode tag", err)
	}

	if len(iv) != profile.IVSize() || len(tag) != content.TagSize {
		return nil, newErr(MalformedDocument, "iv or tag length mismatch for enc "+hdr.Enc, nil)
	}

	aad := jwedoc.AAD(doc.Protected)
	plaintext, err := profile.Open(ciphertext, iv, tag, aad, cek)
	if err != nil {
		return nil, newErr(DecryptionFailed, "open content", err)
	}

	return plaintext, nil
}

// DecryptObject decrypts doc and JSON-parses the resulting bytes.
func (c *Cipher) DecryptObject(ctx context.Context, doc *jwedoc.Document, kak jwekey.KeyAgreementKey) (any, error) {
	data, err := c.Decrypt(ctx, doc, kak)
	if err != nil {
		return nil, err
	}

	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, newErr(MalformedDocument, "decrypted payload is not valid JSON", err)
	}
	return out, nil
}
