// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
)

type sampleBody struct {
	Name  string `cbor:"1,keyasint"`
	Count int64  `cbor:"2,keyasint"`
}

func TestMarshalDeterministic(t *testing.T) {
	value := map[string]any{"zeta": 1, "alpha": []any{"x", int64(2)}}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestTagRoundtripThroughRawTag(t *testing.T) {
	data, err := Marshal(Tag{Number: 40960, Content: sampleBody{Name: "alice", Count: 3}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	decMode, err := NewDecMode(Limits{MaxNestedLevels: 8, MaxElements: 64})
	if err != nil {
		t.Fatalf("NewDecMode: %v", err)
	}

	var raw RawTag
	if err := decMode.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal RawTag: %v", err)
	}
	if raw.Number != 40960 {
		t.Fatalf("tag number = %d, want 40960", raw.Number)
	}

	var body sampleBody
	if err := decMode.Unmarshal(raw.Content, &body); err != nil {
		t.Fatalf("Unmarshal body: %v", err)
	}
	if body.Name != "alice" || body.Count != 3 {
		t.Errorf("body = %+v", body)
	}
}

func TestDecModeRejectsUnknownFields(t *testing.T) {
	data, err := Marshal(map[int]any{1: "alice", 2: int64(1), 9: "extra"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	decMode, err := NewDecMode(Limits{})
	if err != nil {
		t.Fatalf("NewDecMode: %v", err)
	}
	var body sampleBody
	if err := decMode.Unmarshal(data, &body); err == nil {
		t.Fatal("expected unknown field 9 to be rejected")
	}
}

func TestDecModeRejectsIndefiniteLength(t *testing.T) {
	decMode, err := NewDecMode(Limits{})
	if err != nil {
		t.Fatalf("NewDecMode: %v", err)
	}
	// Indefinite-length array containing 1, then break.
	if err := decMode.Wellformed([]byte{0x9f, 0x01, 0xff}); err == nil {
		t.Fatal("expected indefinite-length array to be rejected")
	}
}

func TestDecModeNestingLimit(t *testing.T) {
	decMode, err := NewDecMode(Limits{MaxNestedLevels: 4})
	if err != nil {
		t.Fatalf("NewDecMode: %v", err)
	}
	nested := []byte{0x81, 0x81, 0x81, 0x81, 0x81, 0x01}
	err = decMode.Wellformed(nested)
	if err == nil {
		t.Fatal("expected nesting limit to trip")
	}
	if !IsNestingError(err) {
		t.Errorf("IsNestingError(%v) = false", err)
	}
}

func TestMajorType(t *testing.T) {
	cases := []struct {
		data []byte
		want byte
	}{
		{[]byte{0x01}, MajorUnsigned},
		{[]byte{0x20}, MajorNegative},
		{[]byte{0x41, 0x00}, MajorBytes},
		{[]byte{0x61, 'a'}, MajorText},
		{[]byte{0x80}, MajorArray},
		{[]byte{0xa0}, MajorMap},
		{[]byte{0xd8, 0x1c, 0x01}, MajorTag},
		{[]byte{0xf5}, MajorSimple},
	}
	for _, tc := range cases {
		got, err := MajorType(tc.data)
		if err != nil {
			t.Fatalf("MajorType(%x): %v", tc.data, err)
		}
		if got != tc.want {
			t.Errorf("MajorType(%x) = %d, want %d", tc.data, got, tc.want)
		}
	}
	if _, err := MajorType(nil); err == nil {
		t.Error("MajorType(nil) should fail")
	}
}

func TestIsFloat(t *testing.T) {
	if !IsFloat([]byte{0xf9, 0x3c, 0x00}) {
		t.Error("half float not detected")
	}
	if IsFloat([]byte{0xf5}) {
		t.Error("true is a simple value, not a float")
	}
}

func TestDiagnose(t *testing.T) {
	data, err := Marshal(Tag{Number: TagSelfDescribed, Content: []any{"status", int64(42)}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	for _, want := range []string{"55799(", `"status"`, "42"} {
		if !strings.Contains(notation, want) {
			t.Errorf("notation %q does not contain %q", notation, want)
		}
	}
}
