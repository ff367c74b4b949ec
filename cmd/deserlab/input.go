// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/jsonc"
	"golang.org/x/term"

	"github.com/bureau-foundation/deserlab/lib/fault"
	"github.com/bureau-foundation/deserlab/lib/secret"
)

// maxInputBytes bounds command input files. An envelope at the payload
// limit is well under this once base64 and JSON framing are added.
const maxInputBytes = 1 << 20

// readInput reads a whole input file, or stdin for "-".
func (env *environment) readInput(path string) ([]byte, error) {
	var reader io.Reader
	name := path
	if path == "-" {
		reader, name = env.stdin, "stdin"
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		reader = file
	}

	data, err := io.ReadAll(io.LimitReader(reader, maxInputBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if len(data) > maxInputBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes", name, maxInputBytes)
	}
	return data, nil
}

// readJSONC reads an input file and strips JSONC comments and trailing
// commas, leaving plain JSON.
func (env *environment) readJSONC(path string) ([]byte, error) {
	data, err := env.readInput(path)
	if err != nil {
		return nil, err
	}
	return jsonc.ToJSON(data), nil
}

// envelopeInput is the JSON envelope form. The fields may also sit
// under "envelope", as in the output of encode and samples entries.
type envelopeInput struct {
	PayloadBase64 string         `json:"payloadBase64"`
	SigBase64     string         `json:"sigBase64"`
	Envelope      *envelopeInput `json:"envelope,omitempty"`
}

// readEnvelope reads the base64 fields of an envelope without decoding
// them; classification of bad base64 belongs to the engine.
func (env *environment) readEnvelope(path string) (envelopeInput, error) {
	data, err := env.readJSONC(path)
	if err != nil {
		return envelopeInput{}, err
	}
	var input envelopeInput
	if err := json.Unmarshal(data, &input); err != nil {
		return envelopeInput{}, fault.Malformed("envelope is not a JSON object", err)
	}
	if input.PayloadBase64 == "" && input.SigBase64 == "" && input.Envelope != nil {
		input = *input.Envelope
	}
	return input, nil
}

// readSecret reads a secret into protected memory. On an interactive
// terminal it prompts twice with echo disabled.
func (env *environment) readSecret(path string) (*secret.Buffer, error) {
	if path != "-" {
		return secret.ReadFromPath(path)
	}
	file, ok := env.stdin.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return secret.ReadFrom(env.stdin, "stdin")
	}

	descriptor := int(file.Fd())
	fmt.Fprint(env.stderr, "Signing secret: ")
	first, err := term.ReadPassword(descriptor)
	fmt.Fprintln(env.stderr)
	if err != nil {
		return nil, fmt.Errorf("reading secret: %w", err)
	}
	fmt.Fprint(env.stderr, "Confirm signing secret: ")
	second, err := term.ReadPassword(descriptor)
	fmt.Fprintln(env.stderr)
	if err != nil {
		secret.Zero(first)
		return nil, fmt.Errorf("reading secret confirmation: %w", err)
	}
	match := bytes.Equal(first, second)
	secret.Zero(second)
	if !match {
		secret.Zero(first)
		return nil, fmt.Errorf("secrets do not match")
	}
	buffer, err := secret.ReadFrom(bytes.NewReader(first), "terminal")
	secret.Zero(first)
	return buffer, err
}

// writeJSON writes value as indented JSON followed by a newline.
func writeJSON(writer io.Writer, value any) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
