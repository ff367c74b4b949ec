// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ledger records dangerous materializations.
//
// A [Ledger] pairs an append-only event log with an atomic trigger
// counter. Both only grow: there is no reset, truncate, or remove
// operation. The process-wide instance returned by [Process] is
// created at package initialization and lives until the process exits.
// Tests construct their own with [New] and a fake clock.
//
// The counter and the log are independent. A [Ledger.Snapshot] taken
// while other goroutines are recording may briefly disagree with
// [Ledger.Count] by the number of in-flight writers. Entries from any
// single writer appear in the order that writer recorded them.
package ledger
