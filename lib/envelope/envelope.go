// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package envelope

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/deserlab/lib/fault"
)

// Envelope is a payload and the signature that accompanies it. It is
// immutable: accessors return copies.
type Envelope struct {
	payload   []byte
	signature []byte
}

// New returns an envelope holding copies of payload and signature.
func New(payload, signature []byte) Envelope {
	return Envelope{
		payload:   bytes.Clone(payload),
		signature: bytes.Clone(signature),
	}
}

// Parse decodes the base64 wire fields. Blank or invalid base64 in
// either field is a MalformedEnvelope error.
func Parse(payloadBase64, signatureBase64 string) (Envelope, error) {
	payload, err := DecodeField("payloadBase64", payloadBase64)
	if err != nil {
		return Envelope{}, err
	}
	signature, err := DecodeField("sigBase64", signatureBase64)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{payload: payload, signature: signature}, nil
}

// DecodeField decodes one standard base64 wire field. name appears in
// the error message.
func DecodeField(name, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fault.Malformed(name+" is blank", nil)
	}
	decoded, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fault.Malformed(name+" is not valid base64", err)
	}
	return decoded, nil
}

// Payload returns a copy of the payload bytes.
func (e Envelope) Payload() []byte { return bytes.Clone(e.payload) }

// Signature returns a copy of the signature bytes.
func (e Envelope) Signature() []byte { return bytes.Clone(e.signature) }

// PayloadBase64 returns the payload in its wire form.
func (e Envelope) PayloadBase64() string {
	return base64.StdEncoding.EncodeToString(e.payload)
}

// SignatureBase64 returns the signature in its wire form.
func (e Envelope) SignatureBase64() string {
	return base64.StdEncoding.EncodeToString(e.signature)
}

// Size returns the payload length in bytes.
func (e Envelope) Size() int { return len(e.payload) }

type wireEnvelope struct {
	PayloadBase64 string `json:"payloadBase64"`
	SigBase64     string `json:"sigBase64"`
}

// MarshalJSON implements json.Marshaler.
func (e Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireEnvelope{
		PayloadBase64: e.PayloadBase64(),
		SigBase64:     e.SignatureBase64(),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var wire wireEnvelope
	if err := json.Unmarshal(data, &wire); err != nil {
		return fault.Malformed("envelope is not a JSON object", err)
	}
	parsed, err := Parse(wire.PayloadBase64, wire.SigBase64)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// fingerprintKey is the BLAKE3 domain key for payload fingerprints:
// the ASCII name zero-padded to 32 bytes.
var fingerprintKey = [32]byte{
	'd', 'e', 's', 'e', 'r', 'l', 'a', 'b', '.', 'e', 'n', 'v', 'e', 'l', 'o', 'p',
	'e', '.', 'p', 'a', 'y', 'l', 'o', 'a', 'd', 0, 0, 0, 0, 0, 0, 0,
}

// Fingerprint returns the hex BLAKE3 keyed digest of the payload.
func (e Envelope) Fingerprint() string {
	return Fingerprint(e.payload)
}

// Fingerprint returns the hex BLAKE3 keyed digest of payload bytes.
func Fingerprint(payload []byte) string {
	hasher, err := blake3.NewKeyed(fingerprintKey[:])
	if err != nil {
		panic("envelope: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(payload)
	return hex.EncodeToString(hasher.Sum(nil))
}
