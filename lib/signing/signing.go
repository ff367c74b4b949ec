// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package signing authenticates envelope payloads with HMAC-SHA256.
//
// A [Key] signs the exact payload bytes it is given and verifies a
// presented signature against them. Nothing is normalized between sign
// and verify: a single flipped bit in either the payload or the
// signature fails verification.
//
// The key material lives in a [secret.Buffer] and never appears in
// errors, String output, or logs.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"github.com/bureau-foundation/deserlab/lib/secret"
)

// Size is the length in bytes of a signature.
const Size = sha256.Size

// Key is an HMAC-SHA256 signing key. It is safe for concurrent use and
// read-only after construction.
type Key struct {
	material *secret.Buffer
}

// NewKey takes ownership of material: it is copied into protected
// memory and the caller's slice is zeroed.
func NewKey(material []byte) (*Key, error) {
	if len(material) == 0 {
		return nil, errors.New("signing: key material is empty")
	}
	buffer, err := secret.NewFromBytes(material)
	if err != nil {
		return nil, err
	}
	return &Key{material: buffer}, nil
}

// FromBuffer wraps an existing protected buffer. The Key takes
// ownership and closes it on Close.
func FromBuffer(buffer *secret.Buffer) (*Key, error) {
	if buffer == nil || buffer.Len() == 0 {
		return nil, errors.New("signing: key material is empty")
	}
	return &Key{material: buffer}, nil
}

// Sign returns HMAC-SHA256(key, payload).
func (k *Key) Sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, k.material.Bytes())
	mac.Write(payload)
	return mac.Sum(nil)
}

// SignBase64 returns the standard padded base64 form of Sign.
func (k *Key) SignBase64(payload []byte) string {
	return base64.StdEncoding.EncodeToString(k.Sign(payload))
}

// Verify reports whether presented is the base64 signature of payload.
// A presented value that is not valid base64 does not verify. The
// comparison takes the same time for every signature of correct length.
func (k *Key) Verify(payload []byte, presented string) bool {
	signature, err := base64.StdEncoding.DecodeString(presented)
	if err != nil {
		return false
	}
	return k.VerifyBytes(payload, signature)
}

// VerifyBytes is Verify for an already-decoded signature.
func (k *Key) VerifyBytes(payload, signature []byte) bool {
	expected := k.Sign(payload)
	if len(signature) != len(expected) {
		return false
	}
	return hmac.Equal(expected, signature)
}

// String never renders key material.
func (k *Key) String() string {
	return "signing.Key{HMAC-SHA256}"
}

// Close releases the key material.
func (k *Key) Close() error {
	return k.material.Close()
}
