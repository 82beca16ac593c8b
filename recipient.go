package minimalcipher

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/digitalcredentials/minimal-cipher-go/internal/agreement"
	"github.com/digitalcredentials/minimal-cipher-go/internal/primitives"
	"github.com/digitalcredentials/minimal-cipher-go/jwedoc"
	"github.com/digitalcredentials/minimal-cipher-go/jwekey"
)

// recipientAlg is the only recipient key-encryption algorithm this module
// emits or accepts.
const recipientAlg = agreement.AlgorithmID

// RecipientTemplate names one encrypt-target: the kid to resolve and the
// key-encryption algorithm to assemble under. Alg is currently always
// "ECDH-ES+A256KW"; the field exists so a caller request for anything else
// fails with UnsupportedAlgorithm rather than being silently coerced.
type RecipientTemplate struct {
	KID string
	Alg string
}

// assembleRecipients builds the wire "recipients" array for cek, resolving
// each template's public key and running key agreement + wrap
// independently. Work fans out across goroutines bounded by len(templates)
// (spec.md §5 permits parallelising recipient assembly); results land in a
// pre-sized slice addressed by index so output order is deterministic
// regardless of completion order, and if more than one recipient fails the
// error reported is the one at the lowest index, not the first to finish.
func assembleRecipients(ctx context.Context, cek []byte, templates []RecipientTemplate, resolver jwekey.KeyResolver) ([]jwedoc.Recipient, error) {
	n := len(templates)
	results := make([]jwedoc.Recipient, n)
	errs := make([]error, n)

	g, gctx := errgroup.WithContext(ctx)
	for i, tmpl := range templates {
		i, tmpl := i, tmpl
		g.Go(func() error {
			rec, err := assembleOneRecipient(gctx, cek, tmpl, resolver)
			if err != nil {
				errs[i] = err
				return err
			}
			results[i] = *rec
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func assembleOneRecipient(ctx context.Context, cek []byte, tmpl RecipientTemplate, resolver jwekey.KeyResolver) (*jwedoc.Recipient, error) {
	if tmpl.Alg != recipientAlg {
		return nil, newErr(UnsupportedAlgorithm, "recipient alg "+tmpl.Alg+" is not supported", nil)
	}

	resolved, err := resolver(ctx, tmpl.KID)
	if err != nil {
		return nil, newErr(UnknownKey, "resolve kid "+tmpl.KID, err)
	}

	pub, err := jwekey.ResolvePublicKey(tmpl.KID, resolved)
	if err != nil {
		return nil, newErr(MalformedDocument, "decode resolved public key for "+tmpl.KID, err)
	}

	eph, err := agreement.Derive(pub.X)
	if err != nil {
		return nil, newErr(InvalidArgument, "key agreement for "+tmpl.KID, err)
	}

	wrapped, err := primitives.AESKeyWrap(eph.KWK[:], cek)
	if err != nil {
		return nil, newErr(InvalidArgument, "wrap cek for "+tmpl.KID, err)
	}

	return &jwedoc.Recipient{
		Header: jwedoc.RecipientHeader{
			KID: tmpl.KID,
			Alg: tmpl.Alg,
			EPK: jwekey.EncodeJWK(eph.EphemeralPub),
		},
		EncryptedKey: jwedoc.EncodeB64(wrapped),
	}, nil
}

// selectRecipient scans recipients for the first entry whose kid matches
// ownID and whose alg is the one this module supports. It never tries a
// second candidate on failure, to avoid an oracle across multiple
// near-matching entries (spec.md §4.5, "never try several").
func selectRecipient(recipients []jwedoc.Recipient, ownID string) (*jwedoc.Recipient, error) {
	for i := range recipients {
		if recipients[i].Header.KID == ownID && recipients[i].Header.Alg == recipientAlg {
			return &recipients[i], nil
		}
	}
	return nil, newErr(NoMatchingRecipient, "no recipient entry matches kid "+ownID, nil)
}

// unwrapCEK derives the key-wrapping key for rec (via kak's KeyWrapper
// capability if present, otherwise via DeriveSecret + Concat-KDF) and
// unwraps rec's encrypted_key. A missing or malformed epk and an
// encrypted_key that does not decode are reported as MalformedDocument;
// every later failure — the KeyWrapper's unwrap, the derived secret, or the
// wrapped-key integrity check — collapses to DecryptionFailed (spec.md §5,
// §8 invariant 10).
func unwrapCEK(ctx context.Context, rec *jwedoc.Recipient, kak jwekey.KeyAgreementKey) ([]byte, error) {
	if rec.Header.EPK == nil {
		return nil, newErr(MalformedDocument, "recipient header missing epk", nil)
	}
	epkX, err := jwekey.DecodeJWK(rec.Header.EPK)
	if err != nil {
		return nil, newErr(MalformedDocument, "recipient epk is malformed", err)
	}
	wrapped, err := jwedoc.DecodeB64(rec.EncryptedKey)
	if err != nil {
		return nil, newErr(MalformedDocument, "recipient encrypted_key is malformed", err)
	}

	epk := &jwekey.PublicKey{X: epkX}

	if wrapper, ok := kak.(jwekey.KeyWrapper); ok {
		cek, err := wrapper.UnwrapKey(ctx, wrapped, epk)
		if err != nil {
			return nil, newErr(DecryptionFailed, "unwrap failed", err)
		}
		return cek, nil
	}

	z, err := kak.DeriveSecret(ctx, epk)
	if err != nil {
		return nil, newErr(DecryptionFailed, "unwrap failed", err)
	}

	kwk, err := agreement.DeriveKWKFromSecret(z)
	if err != nil {
		return nil, newErr(DecryptionFailed, "unwrap failed", err)
	}

	cek, err := primitives.AESKeyUnwrap(kwk[:], wrapped)
	if err != nil {
		return nil, newErr(DecryptionFailed, "unwrap failed", err)
	}
	return cek, nil
}
