// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package gadget defines the closed set of values that may appear in
// an envelope payload.
//
// Every value is one of five variants, each named by a [Tag]
// (the discriminant checked against a decode policy):
//
//   - [String], [Int], [List]: core primitives and the plain list.
//   - [UserRecord]: a benign record. Its Password field exists only in
//     memory. The wire body type has no password field, so a password
//     cannot be encoded by construction.
//   - [GadgetRecord]: the dangerous record. Constructing it from wire
//     bytes calls [Recorder.RecordTrigger] before the caller ever sees
//     the value, modelling a deserialization gadget that fires at
//     construction time rather than at use time.
//
// The variant table ([Lookup], [LookupWire]) maps discriminants to wire
// tag numbers and constructors. It is fixed at compile time. There is
// no registration API: a discriminant that is not in the table can
// never be constructed, whatever a policy allows.
//
// Anything on the wire that is not a variant resolves to a foreign
// discriminant ([TagBytes], [TagMap], [ForeignTag], ...) so that the
// decoder can report exactly what it rejected.
package gadget
