// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTruncated is returned when an item's declared length runs past
// the end of the available bytes.
var ErrTruncated = errors.New("codec: truncated CBOR item")

// Head is the initial byte and argument of a CBOR item (RFC 8949 §3).
type Head struct {
	Major byte

	// Info is the 5-bit additional information field.
	Info byte

	// Argument is the length for strings, arrays, and maps, the tag
	// number for tags, the value for integers, and the raw bits for
	// floats and simple values.
	Argument uint64

	// Size is the number of bytes the head occupies, including any
	// argument bytes. For major type 7 this covers the whole item.
	Size int
}

// ReadHead parses the head of the first item in data. Indefinite
// lengths and reserved additional information values are errors.
func ReadHead(data []byte) (Head, error) {
	if len(data) == 0 {
		return Head{}, ErrTruncated
	}
	head := Head{Major: data[0] >> 5, Info: data[0] & 0x1f}

	var width int
	switch {
	case head.Info < 24:
		head.Argument = uint64(head.Info)
		head.Size = 1
		return head, nil
	case head.Info == 24:
		width = 1
	case head.Info == 25:
		width = 2
	case head.Info == 26:
		width = 4
	case head.Info == 27:
		width = 8
	case head.Info == 31:
		return Head{}, fmt.Errorf("codec: indefinite-length item (major type %d)", head.Major)
	default:
		return Head{}, fmt.Errorf("codec: reserved additional information %d", head.Info)
	}

	if len(data) < 1+width {
		return Head{}, ErrTruncated
	}
	argument := data[1 : 1+width]
	switch width {
	case 1:
		head.Argument = uint64(argument[0])
	case 2:
		head.Argument = uint64(binary.BigEndian.Uint16(argument))
	case 4:
		head.Argument = uint64(binary.BigEndian.Uint32(argument))
	case 8:
		head.Argument = binary.BigEndian.Uint64(argument)
	}
	head.Size = 1 + width
	return head, nil
}

// ItemLength returns the encoded length of the first complete item in
// data, nested content included. It walks heads iteratively, so deeply
// nested input does not grow the stack.
func ItemLength(data []byte) (int, error) {
	pending := 1
	offset := 0
	for pending > 0 {
		head, err := ReadHead(data[offset:])
		if err != nil {
			return 0, err
		}
		offset += head.Size
		pending--

		remaining := uint64(len(data) - offset)
		switch head.Major {
		case MajorBytes, MajorText:
			if head.Argument > remaining {
				return 0, ErrTruncated
			}
			offset += int(head.Argument)
		case MajorArray:
			if head.Argument > remaining {
				return 0, ErrTruncated
			}
			pending += int(head.Argument)
		case MajorMap:
			if head.Argument > remaining/2 {
				return 0, ErrTruncated
			}
			pending += 2 * int(head.Argument)
		case MajorTag:
			pending++
		}
	}
	return offset, nil
}

// Split returns the first item in data and the bytes after it.
func Split(data []byte) (item, rest []byte, err error) {
	length, err := ItemLength(data)
	if err != nil {
		return nil, nil, err
	}
	return data[:length], data[length:], nil
}
