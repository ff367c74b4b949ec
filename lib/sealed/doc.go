// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed keeps the envelope signing secret encrypted at rest.
//
// A sealed secret is an age (x25519) ciphertext, base64-encoded so it
// can sit inline in a YAML config file. Only the holder of the
// matching age identity can recover the secret:
//
//	identity, _ := sealed.GenerateIdentity()
//	ciphertext, _ := sealed.Seal(secretBytes, identity.Recipient)
//	buffer, _ := sealed.Open(ciphertext, identity.Private)
//
// Identities and recovered plaintext are [secret.Buffer] values, so the
// cleartext never lives on the Go heap longer than the age API forces
// it to.
package sealed
