// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package decoder materializes values from untrusted payload bytes
// under an explicit [policy.Policy].
//
// [Decode] walks the payload one node at a time in stream order. Every
// node passes four gates before anything is constructed, and the first
// gate to reject ends the decode:
//
//  1. size: the running count of consumed bytes must stay within
//     MaxBytes
//  2. depth: the node's depth in the value graph (root is 1) must stay
//     within MaxDepth
//  3. references: shareable (tag 28) and sharedref (tag 29) markers
//     must stay within MaxReferences
//  4. type: the node's discriminant must be allowed by the policy and
//     be a member of the variant table
//
// Only then does the variant's constructor run. Constructing a
// fixture.GadgetRecord reports to the supplied [gadget.Recorder], so a
// rejected payload never produces a trigger, whatever position the
// record holds in the stream.
//
// Structural wrappers (the root self-described tag and the sharing
// tags) do not name a discriminant themselves. Their type decision is
// [policy.Undecided] until the wrapped or referenced value's
// discriminant is resolved, and the resolved discriminant is gated
// like any other.
//
// Every failure is a *fault.Error. Lower-level failures (malformed
// CBOR, a record body with the wrong shape, integer overflow, a panic
// inside a constructor) are reported as MalformedEnvelope. No partial
// value is ever returned.
//
// Decode is reentrant: each call owns its cursor and counters.
package decoder
