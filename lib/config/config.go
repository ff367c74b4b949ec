// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file when --config is absent.
const EnvironmentVariable = "DESERLAB_CONFIG"

// DefaultSecret is the development signing secret used when no source
// is configured. Validate rejects it in production.
const DefaultSecret = "change-me"

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config is the deserlab configuration.
type Config struct {
	Environment Environment `yaml:"environment"`

	// Lab configures the deserialization engine.
	Lab LabConfig `yaml:"lab"`

	// Log configures the command logger.
	Log LogConfig `yaml:"log"`

	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Lab *LabConfig `yaml:"lab,omitempty"`
	Log *LogConfig `yaml:"log,omitempty"`
}

// LabConfig configures the engine and its signing secret.
type LabConfig struct {
	// Enabled switches the engine on. When false every encode and
	// decode fails with a Disabled error. Nil means "not set".
	Enabled *bool `yaml:"enabled,omitempty"`

	// HMACSecret is an inline signing secret.
	HMACSecret string `yaml:"hmac_secret,omitempty"`

	// HMACSecretFile is a file holding the signing secret, or "-" for
	// stdin. Surrounding whitespace is trimmed.
	HMACSecretFile string `yaml:"hmac_secret_file,omitempty"`

	// HMACSecretSealed is base64 age ciphertext of the signing secret.
	HMACSecretSealed string `yaml:"hmac_secret_sealed,omitempty"`

	// IdentityFile is the age identity that opens HMACSecretSealed.
	IdentityFile string `yaml:"identity_file,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is auto (text on a terminal, JSON otherwise), text, or
	// json.
	Format string `yaml:"format"`
}

// SecretSource identifies where the signing secret comes from.
type SecretSource string

const (
	SourceDefault SecretSource = "default"
	SourceInline  SecretSource = "inline"
	SourceFile    SecretSource = "file"
	SourceSealed  SecretSource = "sealed"
)

// Default returns the base configuration that a file is merged into.
func Default() *Config {
	enabled := true
	return &Config{
		Environment: Development,
		Lab: LabConfig{
			Enabled: &enabled,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load loads the file named by DESERLAB_CONFIG. It fails when the
// variable is not set.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your deserlab.yaml config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse loads configuration from YAML bytes.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

// applyEnvironmentOverrides applies the section matching Environment.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// The lab stays off in production unless the production
		// section itself turns it on.
		disabled := false
		c.Lab.Enabled = &disabled
	}

	if overrides == nil {
		return
	}

	if lab := overrides.Lab; lab != nil {
		if lab.Enabled != nil {
			enabled := *lab.Enabled
			c.Lab.Enabled = &enabled
		}
		// Secret sources replace each other wholesale so an override
		// never leaves two sources configured.
		if lab.HMACSecret != "" || lab.HMACSecretFile != "" || lab.HMACSecretSealed != "" {
			c.Lab.HMACSecret = lab.HMACSecret
			c.Lab.HMACSecretFile = lab.HMACSecretFile
			c.Lab.HMACSecretSealed = lab.HMACSecretSealed
		}
		if lab.IdentityFile != "" {
			c.Lab.IdentityFile = lab.IdentityFile
		}
	}

	if log := overrides.Log; log != nil {
		if log.Level != "" {
			c.Log.Level = log.Level
		}
		if log.Format != "" {
			c.Log.Format = log.Format
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	if c.Lab.HMACSecretFile != "-" {
		c.Lab.HMACSecretFile = expandVars(c.Lab.HMACSecretFile, vars)
	}
	c.Lab.IdentityFile = expandVars(c.Lab.IdentityFile, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name, defaultValue := parts[1], parts[2]
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// LabEnabled reports whether the engine is switched on.
func (c *Config) LabEnabled() bool {
	return c.Lab.Enabled != nil && *c.Lab.Enabled
}

// SecretSource reports which source SigningKey will read. It assumes
// Validate has passed.
func (c *Config) SecretSource() SecretSource {
	switch {
	case c.Lab.HMACSecret != "":
		return SourceInline
	case c.Lab.HMACSecretFile != "":
		return SourceFile
	case c.Lab.HMACSecretSealed != "":
		return SourceSealed
	}
	return SourceDefault
}

// UsesDevelopmentSecret reports whether the signing secret is the
// well-known DefaultSecret.
func (c *Config) UsesDevelopmentSecret() bool {
	source := c.SecretSource()
	return source == SourceDefault || (source == SourceInline && c.Lab.HMACSecret == DefaultSecret)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains([]Environment{Development, Staging, Production}, c.Environment) {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	sources := 0
	for _, value := range []string{c.Lab.HMACSecret, c.Lab.HMACSecretFile, c.Lab.HMACSecretSealed} {
		if value != "" {
			sources++
		}
	}
	if sources > 1 {
		errs = append(errs, errors.New("lab: hmac_secret, hmac_secret_file, and hmac_secret_sealed are mutually exclusive"))
	}
	if c.Lab.HMACSecretSealed != "" && c.Lab.IdentityFile == "" {
		errs = append(errs, errors.New("lab.hmac_secret_sealed requires lab.identity_file"))
	}
	if c.Lab.IdentityFile != "" && c.Lab.HMACSecretSealed == "" {
		errs = append(errs, errors.New("lab.identity_file is only used with lab.hmac_secret_sealed"))
	}

	if c.Environment == Production {
		if c.Lab.HMACSecret != "" {
			errs = append(errs, errors.New("lab.hmac_secret: inline secrets are not allowed in production"))
		}
		if sources == 0 {
			errs = append(errs, errors.New("lab: production requires hmac_secret_file or hmac_secret_sealed"))
		}
	}

	levels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(levels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", levels))
	}
	formats := []string{"auto", "text", "json"}
	if !slices.Contains(formats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", formats))
	}

	return errors.Join(errs...)
}
