// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// The engine does no background work, so the only time operation it
// needs is reading the current instant: ledger entries are timestamped
// and generated sample records carry a creation time. Code that needs
// the time accepts a Clock instead of calling time.Now directly, which
// keeps ledger contents and sample envelopes reproducible in tests:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	events := ledger.New(c)
//	c.Advance(time.Second)
package clock
