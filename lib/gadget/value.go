// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gadget

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a member of the closed variant set. The unexported method
// keeps implementations inside this package.
type Value interface {
	// Tag returns the value's discriminant.
	Tag() Tag

	// String returns a printable form. Record forms never include
	// in-memory-only fields.
	String() string

	isValue()
}

// String is the core.String variant.
type String string

func (String) Tag() Tag         { return TagString }
func (s String) String() string { return string(s) }
func (String) isValue()         {}

// Int is the core.Int variant.
type Int int64

func (Int) Tag() Tag         { return TagInt }
func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }
func (Int) isValue()         {}

// List is the core.List variant: an ordered sequence of values.
type List []Value

func (List) Tag() Tag { return TagList }

func (l List) String() string {
	var builder strings.Builder
	builder.WriteByte('[')
	for index, element := range l {
		if index > 0 {
			builder.WriteString(", ")
		}
		if element == nil {
			builder.WriteString("<nil>")
			continue
		}
		builder.WriteString(element.String())
	}
	builder.WriteByte(']')
	return builder.String()
}

func (List) isValue() {}

// UserRecord is the benign fixture record.
type UserRecord struct {
	Username string
	Role     string

	// Password is held in memory only. It is not part of the wire
	// body, is never printed, and is ignored by Equal.
	Password string

	// CreatedAt is an opaque timestamp string, conventionally RFC 3339.
	CreatedAt string
}

func (UserRecord) Tag() Tag { return TagUserRecord }

func (u UserRecord) String() string {
	return fmt.Sprintf("UserRecord{username=%q, role=%q, password=<transient>, createdAt=%q}",
		u.Username, u.Role, u.CreatedAt)
}

// Equal compares every field except Password.
func (u UserRecord) Equal(other UserRecord) bool {
	return u.Username == other.Username &&
		u.Role == other.Role &&
		u.CreatedAt == other.CreatedAt
}

func (UserRecord) isValue() {}

// GadgetRecord is the dangerous fixture record. Constructing one from
// wire bytes reports a trigger to the decoder's [Recorder].
type GadgetRecord struct {
	Message string
}

func (GadgetRecord) Tag() Tag { return TagGadgetRecord }

func (g GadgetRecord) String() string {
	return fmt.Sprintf("GadgetRecord{message=%q}", g.Message)
}

func (GadgetRecord) isValue() {}
