// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package envelope turns values into signed payloads.
//
// An [Envelope] is a canonical CBOR payload plus its HMAC-SHA256
// signature. [Encoder.Encode] produces one from a [gadget.Value]; the
// same value and key always produce the same bytes and signature. The
// JSON wire form is
//
//	{"payloadBase64": "...", "sigBase64": "..."}
//
// with standard padded base64 in both fields.
//
// Decoding is not done here. Payload bytes are interpreted only by the
// policy-gated decoder in lib/decoder, after the caller has decided
// whether a signature is required.
//
// Payload bytes are never logged. Use [Envelope.Fingerprint] (a BLAKE3
// keyed digest) to correlate payloads in logs.
package envelope
