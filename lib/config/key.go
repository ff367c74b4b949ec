// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"

	"github.com/bureau-foundation/deserlab/lib/sealed"
	"github.com/bureau-foundation/deserlab/lib/secret"
	"github.com/bureau-foundation/deserlab/lib/signing"
)

// SigningKey resolves the configured secret source into a signing key.
// The caller owns the key and must Close it. Errors never include
// secret material.
func (c *Config) SigningKey() (*signing.Key, error) {
	switch c.SecretSource() {
	case SourceInline:
		return signing.NewKey([]byte(c.Lab.HMACSecret))

	case SourceFile:
		buffer, err := secret.ReadFromPath(c.Lab.HMACSecretFile)
		if err != nil {
			return nil, fmt.Errorf("lab.hmac_secret_file: %w", err)
		}
		return signing.FromBuffer(buffer)

	case SourceSealed:
		identity, err := sealed.ReadIdentity(c.Lab.IdentityFile)
		if err != nil {
			return nil, fmt.Errorf("lab.identity_file: %w", err)
		}
		defer identity.Close()

		buffer, err := sealed.Open(c.Lab.HMACSecretSealed, identity)
		if err != nil {
			return nil, fmt.Errorf("lab.hmac_secret_sealed: %w", err)
		}
		return signing.FromBuffer(buffer)

	default:
		return signing.NewKey([]byte(DefaultSecret))
	}
}
