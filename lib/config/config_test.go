// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/deserlab/lib/sealed"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deserlab.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if !cfg.LabEnabled() {
		t.Error("expected lab enabled by default in development")
	}
	if cfg.SecretSource() != SourceDefault || !cfg.UsesDevelopmentSecret() {
		t.Errorf("expected the development secret, got source %s", cfg.SecretSource())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate(): %v", err)
	}
}

func TestLoadRequiresEnvironmentVariable(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error when DESERLAB_CONFIG is not set")
	}
	if !strings.HasPrefix(err.Error(), "DESERLAB_CONFIG environment variable not set") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadFromEnvironmentVariable(t *testing.T) {
	path := writeConfig(t, `
environment: staging
lab:
  enabled: false
  hmac_secret: staging-secret
log:
  level: debug
  format: json
`)
	t.Setenv(EnvironmentVariable, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Environment != Staging {
		t.Errorf("environment = %s", cfg.Environment)
	}
	if cfg.LabEnabled() {
		t.Error("lab.enabled: false was not applied")
	}
	if cfg.SecretSource() != SourceInline || cfg.UsesDevelopmentSecret() {
		t.Errorf("source = %s", cfg.SecretSource())
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestProductionDisablesLabByDefault(t *testing.T) {
	cfg, err := Parse([]byte(`
environment: production
lab:
  enabled: true
  hmac_secret_file: /run/secrets/deserlab
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.LabEnabled() {
		t.Fatal("production enabled the lab without a production section")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestProductionSectionEnablesLab(t *testing.T) {
	cfg, err := Parse([]byte(`
environment: production
lab:
  hmac_secret_file: /run/secrets/base
production:
  lab:
    enabled: true
    hmac_secret_sealed: c2VhbGVk
    identity_file: /etc/deserlab/identity.txt
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !cfg.LabEnabled() {
		t.Fatal("production section did not enable the lab")
	}
	// The override's sealed source replaces the base file source.
	if cfg.Lab.HMACSecretFile != "" || cfg.SecretSource() != SourceSealed {
		t.Errorf("lab = %+v", cfg.Lab)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestDevelopmentOverrideIgnoredInStaging(t *testing.T) {
	cfg, err := Parse([]byte(`
environment: staging
development:
  lab:
    enabled: false
  log:
    level: debug
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !cfg.LabEnabled() || cfg.Log.Level != "info" {
		t.Errorf("development section applied in staging: %+v %+v", cfg.Lab, cfg.Log)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "invalid environment",
			yaml:    "environment: qa\n",
			wantErr: "invalid environment",
		},
		{
			name:    "two secret sources",
			yaml:    "lab:\n  hmac_secret: a\n  hmac_secret_file: /b\n",
			wantErr: "mutually exclusive",
		},
		{
			name:    "sealed without identity",
			yaml:    "lab:\n  hmac_secret_sealed: abc\n",
			wantErr: "requires lab.identity_file",
		},
		{
			name:    "identity without sealed",
			yaml:    "lab:\n  identity_file: /id\n",
			wantErr: "only used with",
		},
		{
			name:    "inline secret in production",
			yaml:    "environment: production\nlab:\n  hmac_secret: change-me\n",
			wantErr: "inline secrets are not allowed",
		},
		{
			name:    "default secret in production",
			yaml:    "environment: production\n",
			wantErr: "production requires",
		},
		{
			name:    "bad log level",
			yaml:    "log:\n  level: verbose\n",
			wantErr: "log.level",
		},
		{
			name:    "bad log format",
			yaml:    "log:\n  format: xml\n",
			wantErr: "log.format",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := Parse([]byte(test.yaml))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			err = cfg.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q", test.wantErr)
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("error %q does not contain %q", err, test.wantErr)
			}
			if strings.Contains(err.Error(), "change-me") {
				t.Errorf("error leaks the secret: %v", err)
			}
		})
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("DESERLAB_TEST_DIR", "/srv/lab")
	tests := []struct {
		input string
		want  string
	}{
		{"${HOME}/secret", "/home/lab/secret"},
		{"${DESERLAB_TEST_DIR}/identity", "/srv/lab/identity"},
		{"${DESERLAB_UNSET_VAR:-/etc/deserlab}/identity", "/etc/deserlab/identity"},
		{"/plain/path", "/plain/path"},
	}
	vars := map[string]string{"HOME": "/home/lab"}
	for _, test := range tests {
		if got := expandVars(test.input, vars); got != test.want {
			t.Errorf("expandVars(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestExpandVariablesLeavesStdinMarker(t *testing.T) {
	cfg, err := Parse([]byte("lab:\n  hmac_secret_file: \"-\"\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Lab.HMACSecretFile != "-" {
		t.Errorf("hmac_secret_file = %q", cfg.Lab.HMACSecretFile)
	}
}

func TestSigningKeySources(t *testing.T) {
	payload := []byte("payload")

	reference, err := Default().SigningKey()
	if err != nil {
		t.Fatalf("default SigningKey: %v", err)
	}
	defer reference.Close()
	defaultSignature := reference.SignBase64(payload)

	t.Run("inline", func(t *testing.T) {
		cfg, err := Parse([]byte("lab:\n  hmac_secret: change-me\n"))
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		key, err := cfg.SigningKey()
		if err != nil {
			t.Fatalf("SigningKey: %v", err)
		}
		defer key.Close()
		if !key.Verify(payload, defaultSignature) {
			t.Error("inline change-me key disagrees with the default key")
		}
	})

	t.Run("file", func(t *testing.T) {
		secretPath := filepath.Join(t.TempDir(), "hmac")
		if err := os.WriteFile(secretPath, []byte("change-me\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		cfg, err := Parse([]byte("lab:\n  hmac_secret_file: " + secretPath + "\n"))
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		key, err := cfg.SigningKey()
		if err != nil {
			t.Fatalf("SigningKey: %v", err)
		}
		defer key.Close()
		if !key.Verify(payload, defaultSignature) {
			t.Error("file key disagrees with the default key")
		}
	})

	t.Run("sealed", func(t *testing.T) {
		identity, err := sealed.GenerateIdentity()
		if err != nil {
			t.Fatalf("GenerateIdentity: %v", err)
		}
		defer identity.Close()

		identityPath := filepath.Join(t.TempDir(), "identity.txt")
		if err := os.WriteFile(identityPath, []byte(identity.Private.String()+"\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		ciphertext, err := sealed.Seal([]byte("change-me"), identity.Recipient)
		if err != nil {
			t.Fatalf("Seal: %v", err)
		}

		cfg, err := Parse([]byte("lab:\n  hmac_secret_sealed: " + ciphertext + "\n  identity_file: " + identityPath + "\n"))
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate: %v", err)
		}
		key, err := cfg.SigningKey()
		if err != nil {
			t.Fatalf("SigningKey: %v", err)
		}
		defer key.Close()
		if !key.Verify(payload, defaultSignature) {
			t.Error("sealed key disagrees with the default key")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		cfg, err := Parse([]byte("lab:\n  hmac_secret_file: /nonexistent/deserlab/secret\n"))
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if _, err := cfg.SigningKey(); err == nil {
			t.Fatal("expected error for a missing secret file")
		}
	})
}
