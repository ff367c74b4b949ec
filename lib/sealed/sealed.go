// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"filippo.io/age"

	"github.com/bureau-foundation/deserlab/lib/secret"
)

// MaxPlaintextSize bounds how much Open will decrypt. Signing secrets
// are short; anything larger is not one.
const MaxPlaintextSize = secret.MaxSecretSize

// Identity is an age x25519 identity. Private holds the
// AGE-SECRET-KEY-1... string in protected memory; Recipient is the
// matching age1... public key and is safe to publish.
type Identity struct {
	Private   *secret.Buffer
	Recipient string
}

// Close releases the private key. It is idempotent.
func (i *Identity) Close() error {
	if i.Private == nil {
		return nil
	}
	return i.Private.Close()
}

// GenerateIdentity creates a new identity. The caller must Close it.
func GenerateIdentity() (*Identity, error) {
	generated, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating age identity: %w", err)
	}
	private, err := secret.NewFromBytes([]byte(generated.String()))
	if err != nil {
		return nil, fmt.Errorf("protecting age identity: %w", err)
	}
	return &Identity{Private: private, Recipient: generated.Recipient().String()}, nil
}

// ReadIdentity loads an age identity file (or stdin for "-"). Comment
// lines and blank lines are ignored; the first key line is used.
func ReadIdentity(path string) (*secret.Buffer, error) {
	raw, err := secret.ReadFromPath(path)
	if err != nil {
		return nil, fmt.Errorf("reading age identity: %w", err)
	}
	defer raw.Close()

	for _, line := range bytes.Split(raw.Bytes(), []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		key := bytes.Clone(line)
		if err := ValidateIdentity(key); err != nil {
			secret.Zero(key)
			return nil, err
		}
		return secret.NewFromBytes(key)
	}
	return nil, errors.New("age identity file contains no key")
}

// ValidateIdentity reports whether key parses as an age x25519
// identity. The error never contains the key.
func ValidateIdentity(key []byte) error {
	if _, err := age.ParseX25519Identity(string(key)); err != nil {
		return errors.New("invalid age identity")
	}
	return nil
}

// ValidateRecipient reports whether recipient parses as an age x25519
// public key.
func ValidateRecipient(recipient string) error {
	if _, err := age.ParseX25519Recipient(strings.TrimSpace(recipient)); err != nil {
		return fmt.Errorf("invalid age recipient: %w", err)
	}
	return nil
}

// Seal encrypts plaintext to every recipient and returns standard
// base64 ciphertext.
func Seal(plaintext []byte, recipients ...string) (string, error) {
	if len(plaintext) == 0 {
		return "", errors.New("refusing to seal an empty secret")
	}
	if len(recipients) == 0 {
		return "", errors.New("at least one recipient is required")
	}

	parsed := make([]age.Recipient, 0, len(recipients))
	for _, recipient := range recipients {
		value, err := age.ParseX25519Recipient(strings.TrimSpace(recipient))
		if err != nil {
			return "", fmt.Errorf("parsing recipient %q: %w", recipient, err)
		}
		parsed = append(parsed, value)
	}

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, parsed...)
	if err != nil {
		return "", fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return "", fmt.Errorf("encrypting secret: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalizing age encryption: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext.Bytes()), nil
}

// Open decrypts a Seal ciphertext with identity, which is borrowed and
// not closed. The plaintext is returned in protected memory.
func Open(ciphertext string, identity *secret.Buffer) (*secret.Buffer, error) {
	if identity == nil {
		return nil, errors.New("no age identity")
	}
	parsed, err := age.ParseX25519Identity(identity.String())
	if err != nil {
		return nil, errors.New("invalid age identity")
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(ciphertext))
	if err != nil {
		return nil, fmt.Errorf("decoding sealed secret: %w", err)
	}
	reader, err := age.Decrypt(bytes.NewReader(raw), parsed)
	if err != nil {
		return nil, fmt.Errorf("decrypting sealed secret: %w", err)
	}
	plaintext, err := io.ReadAll(io.LimitReader(reader, MaxPlaintextSize+1))
	if err != nil {
		secret.Zero(plaintext)
		return nil, fmt.Errorf("reading sealed secret: %w", err)
	}
	if len(plaintext) > MaxPlaintextSize {
		secret.Zero(plaintext)
		return nil, fmt.Errorf("sealed secret exceeds %d bytes", MaxPlaintextSize)
	}
	if len(plaintext) == 0 {
		return nil, errors.New("sealed secret is empty")
	}
	return secret.NewFromBytes(plaintext)
}
