// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package deser

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/bureau-foundation/deserlab/lib/clock"
	"github.com/bureau-foundation/deserlab/lib/decoder"
	"github.com/bureau-foundation/deserlab/lib/envelope"
	"github.com/bureau-foundation/deserlab/lib/fault"
	"github.com/bureau-foundation/deserlab/lib/gadget"
	"github.com/bureau-foundation/deserlab/lib/ledger"
	"github.com/bureau-foundation/deserlab/lib/policy"
	"github.com/bureau-foundation/deserlab/lib/signing"
)

// Decode modes, as reported in results and logs.
const (
	ModeSandboxed = "sandboxed"
	ModeStrict    = "strict"
)

// Config holds the service's collaborators.
type Config struct {
	// Enabled switches the engine on.
	Enabled bool

	// Key signs and verifies envelopes. Required when Enabled. The
	// service borrows the key and does not close it.
	Key *signing.Key

	// Ledger receives gadget triggers. Nil means ledger.Process().
	Ledger *ledger.Ledger

	// Logger receives decode outcomes. Nil means slog.Default().
	Logger *slog.Logger

	// Clock supplies createdAt for samples and serialize requests.
	// Nil means the real clock.
	Clock clock.Clock

	// Sandboxed and Strict override the decode policies. Zero values
	// select policy.Sandboxed() and policy.Strict().
	Sandboxed *policy.Policy
	Strict    *policy.Policy
}

// Service is the engine facade. It is safe for concurrent use.
type Service struct {
	enabled   bool
	key       *signing.Key
	encoder   *envelope.Encoder
	ledger    *ledger.Ledger
	logger    *slog.Logger
	clock     clock.Clock
	sandboxed policy.Policy
	strict    policy.Policy
}

// New returns a service for config.
func New(config Config) (*Service, error) {
	service := &Service{
		enabled:   config.Enabled,
		key:       config.Key,
		ledger:    config.Ledger,
		logger:    config.Logger,
		clock:     config.Clock,
		sandboxed: policy.Sandboxed(),
		strict:    policy.Strict(),
	}
	if service.ledger == nil {
		service.ledger = ledger.Process()
	}
	if service.logger == nil {
		service.logger = slog.Default()
	}
	if service.clock == nil {
		service.clock = clock.Real()
	}
	if config.Sandboxed != nil {
		service.sandboxed = *config.Sandboxed
	}
	if config.Strict != nil {
		service.strict = *config.Strict
	}
	if err := errors.Join(service.sandboxed.Validate(), service.strict.Validate()); err != nil {
		return nil, err
	}

	if !service.enabled {
		return service, nil
	}
	if service.key == nil {
		return nil, errors.New("deser: an enabled service requires a signing key")
	}
	encoder, err := envelope.NewEncoder(service.key)
	if err != nil {
		return nil, err
	}
	service.encoder = encoder
	return service, nil
}

// Enabled reports whether the engine is switched on.
func (s *Service) Enabled() bool {
	return s.enabled
}

// Encode signs value into an envelope.
func (s *Service) Encode(value gadget.Value) (envelope.Envelope, error) {
	if !s.enabled {
		return envelope.Envelope{}, fault.Disabled()
	}
	sealed, err := s.encoder.Encode(value)
	if err != nil {
		s.logger.Warn("encode rejected", "kind", fault.KindOf(err), "error", err)
		return envelope.Envelope{}, err
	}
	s.logger.Debug("encoded value",
		"tag", value.Tag(),
		"payload_digest", sealed.Fingerprint(),
		"bytes", sealed.Size(),
	)
	return sealed, nil
}

// DecodeSandboxed decodes an unsigned payload under the sandboxed
// policy and returns the value with its discriminant.
func (s *Service) DecodeSandboxed(payloadBase64 string) (gadget.Value, gadget.Tag, error) {
	if !s.enabled {
		return nil, "", fault.Disabled()
	}
	payload, err := envelope.DecodeField("payloadBase64", payloadBase64)
	if err != nil {
		s.logRejection(ModeSandboxed, nil, err)
		return nil, "", err
	}

	recorder := &callRecorder{ledger: s.ledger}
	value, err := decoder.Decode(payload, s.sandboxed, recorder)
	if err != nil {
		s.logRejection(ModeSandboxed, payload, err)
		return nil, "", err
	}
	s.logDecoded(ModeSandboxed, payload, value, recorder.triggers.Load())
	return value, value.Tag(), nil
}

// DecodeStrict verifies and decodes a signed payload under the strict
// policy, requiring the result to carry the expected discriminant.
//
// Checks run in a fixed order: base64 decoding, payload size, signature,
// then the gated decode. A payload over the size limit is rejected
// before its signature is examined, and a signature failure stops
// everything before any payload byte is interpreted.
func (s *Service) DecodeStrict(payloadBase64, signatureBase64 string, expected gadget.Tag) (gadget.Value, error) {
	if !s.enabled {
		return nil, fault.Disabled()
	}
	payload, err := envelope.DecodeField("payloadBase64", payloadBase64)
	if err != nil {
		s.logRejection(ModeStrict, nil, err)
		return nil, err
	}
	if len(payload) > s.strict.MaxBytes {
		err := fault.TooLarge(len(payload), s.strict.MaxBytes)
		s.logRejection(ModeStrict, payload, err)
		return nil, err
	}
	if !s.key.Verify(payload, signatureBase64) {
		err := fault.SignatureMismatch()
		s.logRejection(ModeStrict, payload, err)
		return nil, err
	}

	recorder := &callRecorder{ledger: s.ledger}
	value, err := decoder.DecodeExpecting(payload, s.strict, recorder, expected)
	if err != nil {
		s.logRejection(ModeStrict, payload, err)
		return nil, err
	}
	s.logDecoded(ModeStrict, payload, value, recorder.triggers.Load())
	return value, nil
}

// TriggerCount returns the number of gadget materializations recorded
// in the ledger.
func (s *Service) TriggerCount() int64 {
	return s.ledger.Count()
}

// EventsSnapshot returns the ledger's events in append order.
func (s *Service) EventsSnapshot() []string {
	return s.ledger.Events()
}

func (s *Service) logDecoded(mode string, payload []byte, value gadget.Value, triggers int64) {
	attributes := []any{
		"mode", mode,
		"tag", value.Tag(),
		"payload_digest", envelope.Fingerprint(payload),
		"bytes", len(payload),
	}
	if triggers > 0 {
		s.logger.Warn("gadget materialized during decode",
			append(attributes, "triggers", triggers, "trigger_count", s.ledger.Count())...)
		return
	}
	s.logger.Info("decoded payload", attributes...)
}

func (s *Service) logRejection(mode string, payload []byte, err error) {
	attributes := []any{
		"mode", mode,
		"kind", fault.KindOf(err),
	}
	if payload != nil {
		attributes = append(attributes, "payload_digest", envelope.Fingerprint(payload), "bytes", len(payload))
	}
	var failure *fault.Error
	if errors.As(err, &failure) && failure.Name != "" {
		attributes = append(attributes, "discriminant", failure.Name)
	}
	s.logger.Info("decode rejected", attributes...)
}

// callRecorder forwards triggers to the ledger and counts the ones
// caused by a single decode.
type callRecorder struct {
	ledger   *ledger.Ledger
	triggers atomic.Int64
}

func (r *callRecorder) RecordTrigger(message string) {
	r.triggers.Add(1)
	r.ledger.RecordTrigger(message)
}
