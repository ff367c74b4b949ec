// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers. It centralizes
// the raw I/O that happens before the structured logger exists or
// after main has given up: fatal error reporting to stderr and the
// process exit code.
package process
