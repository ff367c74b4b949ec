// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package deser is the entry point to the deserialization engine.
//
// A [Service] ties together the signing key, the envelope encoder, the
// two decode policies, and the event ledger:
//
//   - [Service.Encode] signs a value into an envelope.
//   - [Service.DecodeSandboxed] decodes without a signature under the
//     permissive policy. The dangerous fixture.GadgetRecord still
//     materializes here, and each one is recorded in the ledger. This
//     path exists to demonstrate a deserialization gadget and is not a
//     security boundary.
//   - [Service.DecodeStrict] checks the payload size, then verifies the
//     signature over the exact payload bytes, and only then decodes
//     under the strict policy and requires the expected discriminant.
//   - [Service.TriggerCount] and [Service.EventsSnapshot] read the
//     ledger.
//
// A disabled service fails every encode and decode with a Disabled
// error before looking at its input. Status and ledger reads keep
// working.
//
// The service never logs payload bytes, signatures, or key material.
// Payloads are identified in logs by their BLAKE3 fingerprint.
package deser
