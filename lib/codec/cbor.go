// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"errors"

	"github.com/fxamacker/cbor/v2"
)

// Structural tag numbers.
const (
	TagSelfDescribed uint64 = 55799
	TagShareable     uint64 = 28
	TagSharedRef     uint64 = 29
)

// CBOR major types, as found in the high three bits of an item's
// initial byte.
const (
	MajorUnsigned byte = 0
	MajorNegative byte = 1
	MajorBytes    byte = 2
	MajorText     byte = 3
	MajorArray    byte = 4
	MajorMap      byte = 5
	MajorTag      byte = 6
	MajorSimple   byte = 7
)

// Bounds accepted by the CBOR library for decode limits.
const (
	minNestedLevels = 4
	maxNestedLevels = 65535
	minElements     = 16
	maxElements     = 2147483647
)

// encMode is the Core Deterministic encoder shared by every caller.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
}

// RawMessage is a raw encoded CBOR item whose decoding is deferred.
type RawMessage = cbor.RawMessage

// RawTag is a CBOR tag with its content left encoded.
type RawTag = cbor.RawTag

// Tag is a CBOR tag with arbitrary Go content, for encoding.
type Tag = cbor.Tag

// DecMode is a configured CBOR decoder.
type DecMode = cbor.DecMode

// Limits bounds what a decode mode will accept while checking
// well-formedness. Values outside the range the CBOR library supports
// are clamped into it, so a zero Limits is valid and maximally strict.
type Limits struct {
	// MaxNestedLevels bounds array, map, and tag nesting.
	MaxNestedLevels int

	// MaxElements bounds the declared length of any array or map.
	MaxElements int
}

// NewDecMode returns a decoder that rejects indefinite-length items,
// duplicate map keys, invalid UTF-8 text, and unknown struct fields.
func NewDecMode(limits Limits) (DecMode, error) {
	return cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		IndefLength:       cbor.IndefLengthForbidden,
		UTF8:              cbor.UTF8RejectInvalid,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
		MaxNestedLevels:   clamp(limits.MaxNestedLevels, minNestedLevels, maxNestedLevels),
		MaxArrayElements:  clamp(limits.MaxElements, minElements, maxElements),
		MaxMapPairs:       clamp(limits.MaxElements, minElements, maxElements),
	}.DecMode()
}

// Marshal encodes v using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// MajorType returns the major type of the first item in data.
func MajorType(data []byte) (byte, error) {
	if len(data) == 0 {
		return 0, errors.New("codec: empty CBOR item")
	}
	return data[0] >> 5, nil
}

// IsFloat reports whether the first item in data is a half, single, or
// double precision float (as opposed to a simple value).
func IsFloat(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	switch data[0] {
	case 0xf9, 0xfa, 0xfb:
		return true
	}
	return false
}

// IsNestingError reports whether err was produced because an item
// exceeded the decode mode's nesting limit.
func IsNestingError(err error) bool {
	var nesting *cbor.MaxNestedLevelError
	return errors.As(err, &nesting)
}

// Diagnose returns the diagnostic notation (RFC 8949 §8) for data.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
