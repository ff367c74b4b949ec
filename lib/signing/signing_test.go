// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"
)

func newTestKey(t *testing.T, material string) *Key {
	t.Helper()
	key, err := NewKey([]byte(material))
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}
	t.Cleanup(func() { key.Close() })
	return key
}

func TestSignMatchesHMACSHA256(t *testing.T) {
	key := newTestKey(t, "change-me")
	payload := []byte("payload bytes")

	mac := hmac.New(sha256.New, []byte("change-me"))
	mac.Write(payload)
	want := mac.Sum(nil)

	if got := key.Sign(payload); !hmac.Equal(got, want) {
		t.Fatalf("Sign = %x, want %x", got, want)
	}
	if key.SignBase64(payload) != base64.StdEncoding.EncodeToString(want) {
		t.Error("SignBase64 is not the standard base64 of Sign")
	}
}

func TestVerifyRoundtrip(t *testing.T) {
	key := newTestKey(t, "k")
	payload := []byte{0xd9, 0xd9, 0xf7, 0x63, 'a', 'b', 'c'}
	if !key.Verify(payload, key.SignBase64(payload)) {
		t.Fatal("signature over the same payload did not verify")
	}
}

func TestVerifyRejectsEverySingleBitFlip(t *testing.T) {
	key := newTestKey(t, "k")
	payload := []byte("a signed payload")
	signature := key.Sign(payload)

	for bit := range len(payload) * 8 {
		tampered := append([]byte(nil), payload...)
		tampered[bit/8] ^= 1 << (bit % 8)
		if key.VerifyBytes(tampered, signature) {
			t.Fatalf("payload bit %d flipped but signature verified", bit)
		}
	}
	for bit := range len(signature) * 8 {
		tampered := append([]byte(nil), signature...)
		tampered[bit/8] ^= 1 << (bit % 8)
		if key.VerifyBytes(payload, tampered) {
			t.Fatalf("signature bit %d flipped but signature verified", bit)
		}
	}
}

func TestVerifyRejectsMalformedSignatures(t *testing.T) {
	key := newTestKey(t, "k")
	payload := []byte("payload")
	signature := key.Sign(payload)

	cases := map[string]string{
		"empty":      "",
		"not base64": "!!!not-base64!!!",
		"truncated":  base64.StdEncoding.EncodeToString(signature[:Size-1]),
		"extended":   base64.StdEncoding.EncodeToString(append(signature, 0)),
	}
	for name, presented := range cases {
		if key.Verify(payload, presented) {
			t.Errorf("%s signature verified", name)
		}
	}
}

func TestDifferentKeysDisagree(t *testing.T) {
	first := newTestKey(t, "one")
	second := newTestKey(t, "two")
	payload := []byte("payload")
	if second.Verify(payload, first.SignBase64(payload)) {
		t.Fatal("signature from one key verified under another")
	}
}

func TestNewKeyZerosMaterialAndHidesIt(t *testing.T) {
	material := []byte("do-not-print-me")
	key, err := NewKey(material)
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}
	defer key.Close()

	for index, value := range material {
		if value != 0 {
			t.Fatalf("material byte %d not zeroed", index)
		}
	}
	for _, rendered := range []string{key.String(), fmt.Sprint(key), fmt.Sprintf("%v", key)} {
		if strings.Contains(rendered, "do-not-print-me") {
			t.Fatalf("key material rendered: %s", rendered)
		}
	}
	if _, err := NewKey(nil); err == nil {
		t.Error("NewKey(nil) should fail")
	}
}
