// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gadget

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"unicode/utf8"

	"github.com/bureau-foundation/deserlab/lib/codec"
	"github.com/bureau-foundation/deserlab/lib/fault"
)

// ToWire converts a value into the tree that codec.Marshal encodes as
// its wire form. Text that is not valid UTF-8 and nil values (at any
// position) fail with an EncodingError.
func ToWire(value Value) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, fault.Encoding("nil value", nil)
	case String:
		if !utf8.ValidString(string(v)) {
			return nil, fault.Encoding("core.String is not valid UTF-8", nil)
		}
		return string(v), nil
	case Int:
		return int64(v), nil
	case List:
		elements := make([]any, len(v))
		for index, element := range v {
			wire, err := ToWire(element)
			if err != nil {
				return nil, err
			}
			elements[index] = wire
		}
		return elements, nil
	case UserRecord:
		for _, field := range []string{v.Username, v.Role, v.CreatedAt} {
			if !utf8.ValidString(field) {
				return nil, fault.Encoding("fixture.UserRecord field is not valid UTF-8", nil)
			}
		}
		return codec.Tag{
			Number:  WireUserRecord,
			Content: userRecordBody{Username: v.Username, Role: v.Role, CreatedAt: v.CreatedAt},
		}, nil
	case GadgetRecord:
		if !utf8.ValidString(v.Message) {
			return nil, fault.Encoding("fixture.GadgetRecord message is not valid UTF-8", nil)
		}
		return codec.Tag{
			Number:  WireGadgetRecord,
			Content: gadgetRecordBody{Message: v.Message},
		}, nil
	default:
		return nil, fault.Encoding(fmt.Sprintf("value type %T is outside the variant set", value), nil)
	}
}

// FromNative converts a generic Go value, typically produced by
// encoding/json, into a Value. Strings become String, integers and
// whole-number floats become Int (as do json.Number values that parse
// as int64), and []any becomes List. A Value is
// returned unchanged. Anything else fails with an EncodingError.
func FromNative(native any) (Value, error) {
	switch v := native.(type) {
	case nil:
		return nil, fault.Encoding("null has no variant", nil)
	case Value:
		return v, nil
	case string:
		return String(v), nil
	case json.Number:
		integer, err := v.Int64()
		if err != nil {
			return nil, fault.Encoding(fmt.Sprintf("number %s is not a 64-bit integer", v), nil)
		}
		return Int(integer), nil
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return nil, fault.Encoding(fmt.Sprintf("number %v is not a 64-bit integer", v), nil)
		}
		return Int(int64(v)), nil
	case []any:
		list := make(List, len(v))
		for index, element := range v {
			value, err := FromNative(element)
			if err != nil {
				return nil, err
			}
			list[index] = value
		}
		return list, nil
	}

	reflected := reflect.ValueOf(native)
	switch reflected.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(reflected.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		unsigned := reflected.Uint()
		if unsigned > math.MaxInt64 {
			return nil, fault.Encoding(fmt.Sprintf("integer %d overflows int64", unsigned), nil)
		}
		return Int(int64(unsigned)), nil
	}
	return nil, fault.Encoding(fmt.Sprintf("type %T has no variant", native), nil)
}
