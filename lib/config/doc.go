// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads deserlab's YAML configuration.
//
// Configuration comes from a single file named by the --config flag
// (via [LoadFile]) or the DESERLAB_CONFIG environment variable (via
// [Load]). There is no file discovery and environment variables never
// override values in the file.
//
// The file may carry development, staging, and production sections
// that override base values when [Config].Environment matches.
// Production is stricter by default: the lab is disabled unless the
// production section enables it, and [Config.Validate] rejects inline
// signing secrets and the built-in development secret.
//
// The signing secret comes from exactly one source:
//
//   - lab.hmac_secret: inline (development only)
//   - lab.hmac_secret_file: a file, or "-" for stdin
//   - lab.hmac_secret_sealed: age ciphertext, opened with the identity
//     in lab.identity_file
//
// With no source configured, development uses [DefaultSecret].
// [Config.SigningKey] resolves the source into a signing key held in
// protected memory.
//
// ${HOME} and ${VAR:-default} patterns are expanded in file paths.
package config
