// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package envelope

import (
	"bytes"
	"errors"

	"github.com/bureau-foundation/deserlab/lib/codec"
	"github.com/bureau-foundation/deserlab/lib/fault"
	"github.com/bureau-foundation/deserlab/lib/gadget"
	"github.com/bureau-foundation/deserlab/lib/signing"
)

// Encoder produces signed envelopes. It is safe for concurrent use.
type Encoder struct {
	key *signing.Key
}

// NewEncoder returns an encoder signing with key.
func NewEncoder(key *signing.Key) (*Encoder, error) {
	if key == nil {
		return nil, errors.New("envelope: encoder requires a signing key")
	}
	return &Encoder{key: key}, nil
}

// Encode serializes value canonically and signs the bytes. Values that
// cannot be represented on the wire fail with an EncodingError.
func (e *Encoder) Encode(value gadget.Value) (Envelope, error) {
	payload, err := Canonical(value)
	if err != nil {
		return Envelope{}, err
	}
	return e.Seal(payload), nil
}

// Seal signs payload as-is.
func (e *Encoder) Seal(payload []byte) Envelope {
	payload = bytes.Clone(payload)
	return Envelope{payload: payload, signature: e.key.Sign(payload)}
}

// Canonical returns the deterministic wire bytes for value: a
// self-described CBOR item wrapping the value's wire form.
func Canonical(value gadget.Value) ([]byte, error) {
	wire, err := gadget.ToWire(value)
	if err != nil {
		return nil, err
	}
	payload, err := codec.Marshal(codec.Tag{Number: codec.TagSelfDescribed, Content: wire})
	if err != nil {
		return nil, fault.Encoding("CBOR encoding failed", err)
	}
	return payload, nil
}
