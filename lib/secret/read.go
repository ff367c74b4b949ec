// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// MaxSecretSize bounds how much ReadFromPath will read.
const MaxSecretSize = 64 * 1024

// ReadFromPath reads a secret from a file, or from stdin when path is
// "-". Surrounding whitespace is trimmed and an empty result is an
// error. Every intermediate copy is zeroed.
func ReadFromPath(path string) (*Buffer, error) {
	if path == "-" {
		return ReadFrom(os.Stdin, "stdin")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadFrom(file, path)
}

// ReadFrom reads a secret from reader. name identifies the source in
// error messages.
func ReadFrom(reader io.Reader, name string) (*Buffer, error) {
	data, err := io.ReadAll(io.LimitReader(reader, MaxSecretSize+1))
	defer Zero(data)
	if err != nil {
		return nil, fmt.Errorf("reading secret from %s: %w", name, err)
	}
	if len(data) > MaxSecretSize {
		return nil, fmt.Errorf("secret in %s exceeds %d bytes", name, MaxSecretSize)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("secret in %s is empty", name)
	}
	return NewFromBytes(trimmed)
}
