// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package deser

import (
	"strings"
	"time"

	"github.com/bureau-foundation/deserlab/lib/envelope"
	"github.com/bureau-foundation/deserlab/lib/fault"
	"github.com/bureau-foundation/deserlab/lib/gadget"
)

// Sample names.
const (
	SampleGood = "GOOD_UserRecord"
	SampleBad  = "BAD_GadgetRecord"
)

// SampleGadgetMessage is the message carried by the BAD sample.
const SampleGadgetMessage = "this only records a ledger event when it is decoded"

// PasswordNote accompanies every serialize result.
const PasswordNote = "password is held in memory only and is not part of the serialized payload"

// Sample is a ready-made signed envelope for demonstrations.
type Sample struct {
	Name     string
	Value    gadget.Value
	Envelope envelope.Envelope
}

// Samples returns a benign UserRecord envelope and a dangerous
// GadgetRecord envelope, both signed with the service key.
func (s *Service) Samples() ([]Sample, error) {
	if !s.enabled {
		return nil, fault.Disabled()
	}
	values := []struct {
		name  string
		value gadget.Value
	}{
		{SampleGood, gadget.UserRecord{
			Username:  "student",
			Role:      "ROLE_USER",
			Password:  "super-secret-password",
			CreatedAt: s.now(),
		}},
		{SampleBad, gadget.GadgetRecord{Message: SampleGadgetMessage}},
	}

	samples := make([]Sample, 0, len(values))
	for _, entry := range values {
		sealed, err := s.Encode(entry.value)
		if err != nil {
			return nil, err
		}
		samples = append(samples, Sample{Name: entry.name, Value: entry.value, Envelope: sealed})
	}
	return samples, nil
}

// SerializeRequest describes a UserRecord to encode.
type SerializeRequest struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	Password  string `json:"password"`
	CreatedAt string `json:"createdAt"`
}

// SerializeResult is the signed envelope for a SerializeRequest.
type SerializeResult struct {
	Envelope envelope.Envelope `json:"envelope"`
	Tag      gadget.Tag        `json:"tag"`
	Summary  string            `json:"summary"`
	Note     string            `json:"note"`
}

// SerializeUser encodes a UserRecord from request. Username and role
// are trimmed and required; a blank createdAt becomes the current
// time in RFC 3339. A missing required field is an EncodingError.
func (s *Service) SerializeUser(request SerializeRequest) (SerializeResult, error) {
	if !s.enabled {
		return SerializeResult{}, fault.Disabled()
	}
	username := strings.TrimSpace(request.Username)
	if username == "" {
		return SerializeResult{}, fault.Encoding("missing required field: username", nil)
	}
	role := strings.TrimSpace(request.Role)
	if role == "" {
		return SerializeResult{}, fault.Encoding("missing required field: role", nil)
	}
	createdAt := strings.TrimSpace(request.CreatedAt)
	if createdAt == "" {
		createdAt = s.now()
	}

	record := gadget.UserRecord{
		Username:  username,
		Role:      role,
		Password:  request.Password,
		CreatedAt: createdAt,
	}
	sealed, err := s.Encode(record)
	if err != nil {
		return SerializeResult{}, err
	}
	return SerializeResult{
		Envelope: sealed,
		Tag:      record.Tag(),
		Summary:  record.String(),
		Note:     PasswordNote,
	}, nil
}

// Status reports whether the engine is enabled and how many gadget
// triggers the ledger holds. It works on a disabled service.
type Status struct {
	Enabled      bool  `json:"enabled"`
	TriggerCount int64 `json:"triggerCount"`
}

// Status returns the current status.
func (s *Service) Status() Status {
	return Status{Enabled: s.enabled, TriggerCount: s.TriggerCount()}
}

// DecodeResult summarizes a successful decode for display.
type DecodeResult struct {
	OK           bool       `json:"ok"`
	Mode         string     `json:"mode"`
	Tag          gadget.Tag `json:"tag"`
	Summary      string     `json:"summary"`
	TriggerCount int64      `json:"triggerCount"`
	Events       []string   `json:"events"`
}

// Result builds a DecodeResult for value, snapshotting the ledger.
func (s *Service) Result(mode string, value gadget.Value) DecodeResult {
	return DecodeResult{
		OK:           true,
		Mode:         mode,
		Tag:          value.Tag(),
		Summary:      value.String(),
		TriggerCount: s.TriggerCount(),
		Events:       s.EventsSnapshot(),
	}
}

func (s *Service) now() string {
	return s.clock.Now().UTC().Format(time.RFC3339)
}
