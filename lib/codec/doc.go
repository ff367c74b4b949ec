// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR configuration for envelope payloads.
//
// Payloads are self-describing CBOR (RFC 8949). The encoder uses Core
// Deterministic Encoding (RFC 8949 §4.2): sorted map keys, smallest
// integer encoding, no indefinite-length items. The same logical value
// always produces identical bytes, which is what makes signatures over
// payload bytes meaningful.
//
// Decoding is deliberately not a one-shot Unmarshal into a typed
// value. The policy-gated decoder walks payloads node by node using
// the raw types exported here ([RawMessage], [RawTag]) and a decode
// mode built from explicit [Limits] with [NewDecMode]. This package
// never registers application types with the CBOR library, so no
// constructor can run as a side effect of parsing.
//
// Structural tags used on the wire:
//
//   - 55799 (self-described CBOR): prefixes every encoded payload.
//   - 28 (shareable) and 29 (sharedref): the value-sharing extension,
//     used for back-references to an earlier value in the stream.
//
// For inspecting payloads:
//
//	notation, err := codec.Diagnose(payload)
package codec
