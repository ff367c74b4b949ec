// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"errors"
	"testing"
)

func TestReadHead(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Head
	}{
		{"small uint", []byte{0x17}, Head{Major: MajorUnsigned, Info: 23, Argument: 23, Size: 1}},
		{"one-byte uint", []byte{0x18, 0xff}, Head{Major: MajorUnsigned, Info: 24, Argument: 255, Size: 2}},
		{"negative", []byte{0x39, 0x01, 0x00}, Head{Major: MajorNegative, Info: 25, Argument: 256, Size: 3}},
		{"text length", []byte{0x63, 'a', 'b', 'c'}, Head{Major: MajorText, Info: 3, Argument: 3, Size: 1}},
		{"user record tag", []byte{0xd9, 0xa0, 0x00}, Head{Major: MajorTag, Info: 25, Argument: 40960, Size: 3}},
		{"self-described tag", []byte{0xd9, 0xd9, 0xf7}, Head{Major: MajorTag, Info: 25, Argument: 55799, Size: 3}},
		{"four-byte array", []byte{0x9a, 0x00, 0x01, 0x00, 0x00}, Head{Major: MajorArray, Info: 26, Argument: 65536, Size: 5}},
		{"double", []byte{0xfb, 0, 0, 0, 0, 0, 0, 0, 0}, Head{Major: MajorSimple, Info: 27, Argument: 0, Size: 9}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ReadHead(test.data)
			if err != nil {
				t.Fatalf("ReadHead(%x): %v", test.data, err)
			}
			if got != test.want {
				t.Errorf("ReadHead(%x) = %+v, want %+v", test.data, got, test.want)
			}
		})
	}
}

func TestReadHeadErrors(t *testing.T) {
	for _, data := range [][]byte{nil, {0x18}, {0x1b, 0x00}, {0x9f}, {0x1c}, {0xff}} {
		if _, err := ReadHead(data); err == nil {
			t.Errorf("ReadHead(%x) should fail", data)
		}
	}
}

func TestItemLength(t *testing.T) {
	value := []any{"alpha", int64(-1000), []any{[]any{}}, map[int]string{1: "x"}}
	item, err := Marshal(Tag{Number: TagSelfDescribed, Content: value})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	trailing := append(append([]byte(nil), item...), 0x01, 0x02)

	length, err := ItemLength(trailing)
	if err != nil {
		t.Fatalf("ItemLength: %v", err)
	}
	if length != len(item) {
		t.Fatalf("ItemLength = %d, want %d", length, len(item))
	}

	first, rest, err := Split(trailing)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if !bytes.Equal(first, item) || !bytes.Equal(rest, []byte{0x01, 0x02}) {
		t.Errorf("Split = %x | %x", first, rest)
	}
}

func TestItemLengthDeepNesting(t *testing.T) {
	const depth = 100000
	data := bytes.Repeat([]byte{0x81}, depth)
	data = append(data, 0x00)
	length, err := ItemLength(data)
	if err != nil {
		t.Fatalf("ItemLength: %v", err)
	}
	if length != depth+1 {
		t.Errorf("ItemLength = %d, want %d", length, depth+1)
	}
}

func TestItemLengthTruncated(t *testing.T) {
	for _, data := range [][]byte{
		{0x82, 0x01},     // array of two with one element
		{0x65, 'a', 'b'}, // text of five with two bytes
		{0xa1, 0x01},     // map missing its value
		{0xd8, 0x1c},     // tag with no content
		{0x9b, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, // absurd array length
	} {
		if _, err := ItemLength(data); !errors.Is(err, ErrTruncated) {
			t.Errorf("ItemLength(%x) error = %v, want ErrTruncated", data, err)
		}
	}
}
