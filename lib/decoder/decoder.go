// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package decoder

import (
	"fmt"

	"github.com/bureau-foundation/deserlab/lib/codec"
	"github.com/bureau-foundation/deserlab/lib/fault"
	"github.com/bureau-foundation/deserlab/lib/gadget"
	"github.com/bureau-foundation/deserlab/lib/ledger"
	"github.com/bureau-foundation/deserlab/lib/policy"
)

// decMode checks well-formedness and decodes leaves and record bodies.
// Its nesting limit sits above anything a MaxBytes-bounded payload can
// reach, so depth is enforced only by the walker's gate.
var decMode codec.DecMode

func init() {
	var err error
	decMode, err = codec.NewDecMode(codec.Limits{
		MaxNestedLevels: 65535,
		MaxElements:     policy.MaxPayloadBytes,
	})
	if err != nil {
		panic("decoder: CBOR decode mode initialization failed: " + err.Error())
	}
}

// Decode materializes the single CBOR item in data under p. recorder
// receives GadgetRecord triggers; nil means the process-wide ledger.
//
// An invalid policy is reported as a plain error.
func Decode(data []byte, p policy.Policy, recorder gadget.Recorder) (value gadget.Value, err error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("decoder: %w", err)
	}
	if len(data) > p.MaxBytes {
		return nil, fault.TooLarge(len(data), p.MaxBytes)
	}
	if len(data) == 0 {
		return nil, fault.Malformed("payload is empty", nil)
	}
	if recorder == nil {
		recorder = ledger.Process()
	}

	if err := decMode.Wellformed(data); err != nil {
		return nil, fault.Malformed("payload is not a single well-formed CBOR item", err)
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			value = nil
			err = fault.Malformed(fmt.Sprintf("internal fault during materialization: %v", recovered), nil)
		}
	}()

	walk := &walker{policy: p, recorder: recorder}
	value, _, err = walk.root(data)
	if err != nil {
		if fault.KindOf(err) == "" {
			err = fault.Malformed("payload could not be materialized", err)
		}
		return nil, err
	}
	return value, nil
}

// DecodeExpecting decodes data and requires the result to carry the
// expected discriminant.
func DecodeExpecting(data []byte, p policy.Policy, recorder gadget.Recorder, expected gadget.Tag) (gadget.Value, error) {
	value, err := Decode(data, p, recorder)
	if err != nil {
		return nil, err
	}
	if value.Tag() != expected {
		return nil, fault.UnexpectedType(string(value.Tag()), string(expected))
	}
	return value, nil
}
