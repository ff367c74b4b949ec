// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadFromPathTrimsWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret")
	if err := os.WriteFile(path, []byte("  hmac-key\n\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	buffer, err := ReadFromPath(path)
	if err != nil {
		t.Fatalf("ReadFromPath: %v", err)
	}
	defer buffer.Close()
	if buffer.String() != "hmac-key" {
		t.Errorf("secret = %q", buffer.String())
	}
}

func TestReadFromRejectsEmptyAndOversized(t *testing.T) {
	if _, err := ReadFrom(strings.NewReader(" \n\t"), "blank"); err == nil || !strings.Contains(err.Error(), "empty") {
		t.Errorf("blank secret error = %v", err)
	}
	oversized := strings.NewReader(strings.Repeat("x", MaxSecretSize+1))
	if _, err := ReadFrom(oversized, "large"); err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("oversized secret error = %v", err)
	}
}

func TestReadFromPathMissingFile(t *testing.T) {
	if _, err := ReadFromPath(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
