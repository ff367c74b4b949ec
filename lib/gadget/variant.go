// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gadget

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/deserlab/lib/codec"
)

// Recorder receives the side effect of materializing a GadgetRecord.
// Implementations must be safe for concurrent use.
type Recorder interface {
	RecordTrigger(message string)
}

// Kind says how the decoder reaches a variant on the wire.
type Kind int

const (
	// KindLeaf variants are a single untagged CBOR item.
	KindLeaf Kind = iota

	// KindContainer variants are a definite-length array whose
	// elements the decoder walks as child nodes.
	KindContainer

	// KindRecord variants are a CBOR tag wrapping a map body that is
	// decoded in one step by the variant's constructor.
	KindRecord
)

// Variant is one row of the variant table.
type Variant struct {
	Tag Tag

	Kind Kind

	// WireTag is the CBOR tag number for KindRecord variants, zero
	// otherwise.
	WireTag uint64

	construct func(content []byte, decMode codec.DecMode, recorder Recorder) (Value, error)
}

// Construct materializes a leaf or record from its encoded content.
// For records, content is the tag content (the body map), not the
// tagged item. Containers are assembled by the decoder and cannot be
// constructed here.
func (v Variant) Construct(content []byte, decMode codec.DecMode, recorder Recorder) (Value, error) {
	if v.construct == nil {
		return nil, fmt.Errorf("variant %s has no direct constructor", v.Tag)
	}
	return v.construct(content, decMode, recorder)
}

// userRecordBody is the wire body of a UserRecord. There is no
// password field.
type userRecordBody struct {
	Username  string `cbor:"1,keyasint"`
	Role      string `cbor:"2,keyasint"`
	CreatedAt string `cbor:"3,keyasint"`
}

type gadgetRecordBody struct {
	Message string `cbor:"1,keyasint"`
}

var variants = []Variant{
	{Tag: TagString, Kind: KindLeaf, construct: constructString},
	{Tag: TagInt, Kind: KindLeaf, construct: constructInt},
	{Tag: TagList, Kind: KindContainer},
	{Tag: TagUserRecord, Kind: KindRecord, WireTag: WireUserRecord, construct: constructUserRecord},
	{Tag: TagGadgetRecord, Kind: KindRecord, WireTag: WireGadgetRecord, construct: constructGadgetRecord},
}

// Lookup returns the variant for a discriminant. Foreign discriminants
// are never found.
func Lookup(tag Tag) (Variant, bool) {
	for _, variant := range variants {
		if variant.Tag == tag {
			return variant, true
		}
	}
	return Variant{}, false
}

// LookupWire returns the record variant carried by a CBOR tag number.
func LookupWire(number uint64) (Variant, bool) {
	for _, variant := range variants {
		if variant.Kind == KindRecord && variant.WireTag == number {
			return variant, true
		}
	}
	return Variant{}, false
}

// Variants returns a copy of the variant table in declaration order.
func Variants() []Variant {
	return append([]Variant(nil), variants...)
}

func constructString(content []byte, decMode codec.DecMode, _ Recorder) (Value, error) {
	var text string
	if err := decMode.Unmarshal(content, &text); err != nil {
		return nil, err
	}
	return String(text), nil
}

func constructInt(content []byte, decMode codec.DecMode, _ Recorder) (Value, error) {
	var number int64
	if err := decMode.Unmarshal(content, &number); err != nil {
		return nil, err
	}
	return Int(number), nil
}

func constructUserRecord(content []byte, decMode codec.DecMode, _ Recorder) (Value, error) {
	var body userRecordBody
	if err := decMode.Unmarshal(content, &body); err != nil {
		return nil, fmt.Errorf("decoding %s body: %w", TagUserRecord, err)
	}
	return UserRecord{Username: body.Username, Role: body.Role, CreatedAt: body.CreatedAt}, nil
}

func constructGadgetRecord(content []byte, decMode codec.DecMode, recorder Recorder) (Value, error) {
	var body gadgetRecordBody
	if err := decMode.Unmarshal(content, &body); err != nil {
		return nil, fmt.Errorf("decoding %s body: %w", TagGadgetRecord, err)
	}
	if recorder == nil {
		return nil, errors.New("no recorder for gadget trigger")
	}
	recorder.RecordTrigger(body.Message)
	return GadgetRecord{Message: body.Message}, nil
}
