// Package jwedoc implements the JWE General JSON Serialization wire format
// (RFC 7516 §7.2.1): constructing and parsing the protected header,
// per-recipient entries, and the base64url-encoded body fields, plus the
// additional-authenticated-data (AAD) composition that binds them together.
package jwedoc

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/digitalcredentials/minimal-cipher-go/jwekey"
)

// ProtectedHeader is the sole content of the JWE protected header: the
// content-encryption algorithm identifier.
type ProtectedHeader struct {
	Enc string `json:"enc"`
}

// RecipientHeader is one recipient's unprotected header.
type RecipientHeader struct {
	KID string     `json:"kid"`
	Alg string     `json:"alg"`
	EPK *jwekey.JWK `json:"epk"`
}

// Recipient is one entry of a JWE document's "recipients" array.
type Recipient struct {
	Header       RecipientHeader `json:"header"`
	EncryptedKey string          `json:"encrypted_key"`
}

// Document is the full JWE General JSON Serialization document (RFC 7516
// §7.2.1). Protected is retained verbatim from the wire — or produced once
// at encrypt time — and is never re-derived from re-serializing its decoded
// contents, because it is the exact byte input to AAD.
type Document struct {
	Protected  string      `json:"protected"`
	Recipients []Recipient `json:"recipients"`
	IV         string      `json:"iv"`
	Ciphertext string      `json:"ciphertext"`
	Tag        string      `json:"tag"`
}

// EncodeB64 encodes data as unpadded base64url.
func EncodeB64(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeB64 decodes s as unpadded base64url, rejecting padded input
// outright (spec: "implementers must not accept padded variants on parse
// to avoid aliasing").
func DecodeB64(s string) ([]byte, error) {
	if strings.ContainsRune(s, '=') {
		return nil, fmt.Errorf("jwedoc: padded base64url is not accepted")
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("jwedoc: invalid base64url: %w", err)
	}
	return b, nil
}

// BuildProtected serializes a ProtectedHeader and returns its base64url
// encoding — the exact string that becomes both the document's "protected"
// field and the AAD input.
func BuildProtected(enc string) (string, error) {
	raw, err := json.Marshal(ProtectedHeader{Enc: enc})
	if err != nil {
		return "", fmt.Errorf("jwedoc: marshal protected header: %w", err)
	}
	return EncodeB64(raw), nil
}

// ParseProtected decodes a document's "protected" field to its enc value.
// It never re-serializes protected — callers needing it as AAD must use
// the original string, available from Document.Protected.
func ParseProtected(protected string) (*ProtectedHeader, error) {
	raw, err := DecodeB64(protected)
	if err != nil {
		return nil, fmt.Errorf("jwedoc: invalid protected header: %w", err)
	}

	var hdr ProtectedHeader
	if err := json.Unmarshal(raw, &hdr); err != nil {
		return nil, fmt.Errorf("jwedoc: protected header is not valid JSON: %w", err)
	}
	if hdr.Enc == "" {
		return nil, fmt.Errorf("jwedoc: protected header missing enc")
	}

	return &hdr, nil
}

// AAD returns the additional-authenticated-data bytes for a document: the
// ASCII bytes of the verbatim protected string, never a re-serialization of
// its decoded contents (spec §4.6, §9).
func AAD(protected string) []byte {
	return []byte(protected)
}

// Marshal assembles a Document from its already-encoded parts. protected
// must already be the base64url string produced by BuildProtected; this
// function does not recompute it, preserving the byte-exact AAD contract.
func Marshal(protected string, recipients []Recipient, iv, ciphertext, tag []byte) *Document {
	return &Document{
		Protected:  protected,
		Recipients: recipients,
		IV:         EncodeB64(iv),
		Ciphertext: EncodeB64(ciphertext),
		Tag:        EncodeB64(tag),
	}
}

// MarshalJSON serializes a Document to its RFC 7516 JSON wire form.
func MarshalJSON(doc *Document) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("jwedoc: marshal document: %w", err)
	}
	return raw, nil
}

// ParseJSON parses raw JSON bytes into a Document, checking only
// structural well-formedness (required fields present and of the right
// shape). Semantic validation — enc support, length invariants, recipient
// matching — is the caller's responsibility.
func ParseJSON(raw []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("jwedoc: malformed JWE JSON: %w", err)
	}

	if doc.Protected == "" {
		return nil, fmt.Errorf("jwedoc: missing protected")
	}
	if len(doc.Recipients) == 0 {
		return nil, fmt.Errorf("jwedoc: recipients must be non-empty")
	}
	if doc.IV == "" {
		return nil, fmt.Errorf("jwedoc: missing iv")
	}
	if doc.Tag == "" {
		return nil, fmt.Errorf("jwedoc: missing tag")
	}

	return &doc, nil
}
