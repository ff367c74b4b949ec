// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/bureau-foundation/deserlab/lib/config"
	"github.com/bureau-foundation/deserlab/lib/deser"
	"github.com/bureau-foundation/deserlab/lib/signing"
)

// environment carries the state shared by one command invocation.
// Configuration, logger, key, and service are built on first use so
// commands that need none of them (inspect, keygen) never read the
// configuration file.
type environment struct {
	streams
	configPath string

	config  *config.Config
	logger  *slog.Logger
	key     *signing.Key
	service *deser.Service
}

// loadConfig reads --config, then DESERLAB_CONFIG, then falls back to
// development defaults with a warning.
func (env *environment) loadConfig() (*config.Config, error) {
	if env.config != nil {
		return env.config, nil
	}

	var cfg *config.Config
	var err error
	defaulted := false
	switch {
	case env.configPath != "":
		cfg, err = config.LoadFile(env.configPath)
	case os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg, defaulted = config.Default(), true
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cfg.Log, env.stderr)
	if err != nil {
		return nil, err
	}
	env.config = cfg
	env.logger = logger
	if defaulted {
		logger.Warn("no configuration file, using development defaults",
			"hint", "pass --config or set "+config.EnvironmentVariable)
	}
	return cfg, nil
}

// getService builds the engine from configuration. The signing key is
// only resolved when the engine is enabled.
func (env *environment) getService() (*deser.Service, error) {
	if env.service != nil {
		return env.service, nil
	}
	cfg, err := env.loadConfig()
	if err != nil {
		return nil, err
	}

	enabled := cfg.LabEnabled()
	if enabled {
		key, err := cfg.SigningKey()
		if err != nil {
			return nil, fmt.Errorf("resolving signing key: %w", err)
		}
		env.key = key
		if cfg.UsesDevelopmentSecret() {
			env.logger.Warn("signing with the well-known development secret",
				"environment", cfg.Environment,
				"source", cfg.SecretSource(),
			)
		}
	}

	service, err := deser.New(deser.Config{
		Enabled: enabled,
		Key:     env.key,
		Logger:  env.logger,
	})
	if err != nil {
		return nil, err
	}
	env.service = service
	return service, nil
}

// Close releases the signing key.
func (env *environment) Close() {
	if env.key != nil {
		env.key.Close()
		env.key = nil
	}
}

// newLogger builds the command logger: a text handler when writing to a
// terminal, JSON otherwise, unless settings force a format.
func newLogger(settings config.LogConfig, writer io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if settings.Level != "" {
		if err := level.UnmarshalText([]byte(settings.Level)); err != nil {
			return nil, fmt.Errorf("log.level: %w", err)
		}
	}
	options := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch settings.Format {
	case "text":
		handler = slog.NewTextHandler(writer, options)
	case "json":
		handler = slog.NewJSONHandler(writer, options)
	case "", "auto":
		if isTerminal(writer) {
			handler = slog.NewTextHandler(writer, options)
		} else {
			handler = slog.NewJSONHandler(writer, options)
		}
	default:
		return nil, fmt.Errorf("log.format: unknown format %q", settings.Format)
	}
	return slog.New(handler), nil
}

func isTerminal(stream any) bool {
	file, ok := stream.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
