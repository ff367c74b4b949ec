// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds key material outside the Go heap.
//
// A [Buffer] is an anonymous mmap region locked into RAM (mlock) and
// excluded from core dumps (MADV_DONTDUMP). The garbage collector never
// sees it, so the secret is not copied around the heap and is gone
// once [Buffer.Close] zeroes and unmaps it.
//
// The signing key that authenticates envelopes and the age identity
// that unseals it both live in Buffers for the life of the process.
//
// Constructors:
//
//   - [New]: a zero-filled buffer of a given size
//   - [NewFromBytes]: copies into protected memory, zeros the source
//   - [ReadFromPath]: reads a file (or stdin for "-"), trimmed
//
// Depends on golang.org/x/sys/unix.
package secret
