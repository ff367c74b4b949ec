// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package fault defines the terminal error taxonomy shared by the
// envelope codec, the policy-gated decoder, and the engine facade.
//
// Every failure the engine reports is a *[Error] carrying a [Kind].
// Callers branch on the kind, never on message text:
//
//	if errors.Is(err, fault.ErrSignatureMismatch) { ... }
//
//	var failure *fault.Error
//	if errors.As(err, &failure) && failure.Kind == fault.KindDisallowedType {
//	    log.Printf("rejected discriminant %s", failure.Name)
//	}
//
// The sentinel values (ErrDisabled, ErrMalformedEnvelope, ...) match
// any *Error of the same kind through errors.Is, so detailed errors
// stay comparable without losing their fields.
//
// All kinds are terminal. Nothing in this taxonomy is retryable, and
// no error produced here carries partial results. Messages never
// contain key material: constructors accept only discriminants, sizes,
// and limits.
package fault
