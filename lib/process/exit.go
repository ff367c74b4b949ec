// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"os"
)

// ExitCoder is implemented by errors that carry their own exit code.
// A command that has already written its output returns one to exit
// non-zero without an extra error line.
type ExitCoder interface {
	ExitCode() int
}

// ExitCode returns the process exit code for err: 0 for nil, the
// code of the first ExitCoder in the chain, or 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coder ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}

// Exit terminates the process for the result of run(). Errors that
// carry an exit code exit silently with it; any other error is
// reported through Fatal.
func Exit(err error) {
	if err == nil {
		return
	}
	var coder ExitCoder
	if errors.As(err, &coder) {
		os.Exit(coder.ExitCode())
	}
	Fatal(err)
}

// Fatal writes "error: err" to stderr and exits with code 1. Use it in
// main() for errors from run() where the structured logger may not be
// initialized.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
