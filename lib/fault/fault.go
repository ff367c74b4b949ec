// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fault

import (
	"errors"
	"fmt"
)

// Kind is a stable category for programmatic error handling.
type Kind string

const (
	KindDisabled              Kind = "Disabled"
	KindMalformedEnvelope     Kind = "MalformedEnvelope"
	KindPayloadTooLarge       Kind = "PayloadTooLarge"
	KindResourceLimitExceeded Kind = "ResourceLimitExceeded"
	KindDisallowedType        Kind = "DisallowedType"
	KindSignatureMismatch     Kind = "SignatureMismatch"
	KindUnexpectedType        Kind = "UnexpectedType"
	KindEncoding              Kind = "EncodingError"
)

// Limit names the resource gate that rejected a payload when Kind is
// KindResourceLimitExceeded.
type Limit string

const (
	LimitDepth      Limit = "depth"
	LimitReferences Limit = "refs"
)

// Error is the structured error type for every engine failure.
//
// Only the fields relevant to the Kind are populated:
//   - KindPayloadTooLarge: Size, Max
//   - KindResourceLimitExceeded: Limit, Size (observed), Max
//   - KindDisallowedType: Name
//   - KindUnexpectedType: Got, Want
//
// Message is for humans; do not match on it.
type Error struct {
	Kind    Kind
	Limit   Limit
	Name    string
	Got     string
	Want    string
	Size    int
	Max     int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is reports whether target is an *Error of the same Kind. A target
// with a Limit set additionally requires the same Limit, so
// errors.Is(err, ErrDepthExceeded) distinguishes the two resource
// gates while errors.Is(err, ErrResourceLimitExceeded) matches both.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Limit == "" || t.Limit == e.Limit
}

// Sentinels for errors.Is comparisons.
var (
	ErrDisabled              = &Error{Kind: KindDisabled}
	ErrMalformedEnvelope     = &Error{Kind: KindMalformedEnvelope}
	ErrPayloadTooLarge       = &Error{Kind: KindPayloadTooLarge}
	ErrResourceLimitExceeded = &Error{Kind: KindResourceLimitExceeded}
	ErrDepthExceeded         = &Error{Kind: KindResourceLimitExceeded, Limit: LimitDepth}
	ErrReferencesExceeded    = &Error{Kind: KindResourceLimitExceeded, Limit: LimitReferences}
	ErrDisallowedType        = &Error{Kind: KindDisallowedType}
	ErrSignatureMismatch     = &Error{Kind: KindSignatureMismatch}
	ErrUnexpectedType        = &Error{Kind: KindUnexpectedType}
	ErrEncoding              = &Error{Kind: KindEncoding}
)

// Disabled reports that the engine is switched off by configuration.
func Disabled() error {
	return &Error{Kind: KindDisabled, Message: "deserialization lab is disabled"}
}

// Malformed reports an envelope or payload that cannot be interpreted.
// cause may be nil.
func Malformed(message string, cause error) error {
	return &Error{Kind: KindMalformedEnvelope, Message: message, Cause: cause}
}

// TooLarge reports a payload whose size exceeds the active limit.
func TooLarge(size, max int) error {
	return &Error{
		Kind:    KindPayloadTooLarge,
		Size:    size,
		Max:     max,
		Message: fmt.Sprintf("payload of %d bytes exceeds limit of %d", size, max),
	}
}

// DepthExceeded reports a node nested deeper than the active limit.
func DepthExceeded(depth, max int) error {
	return &Error{
		Kind:    KindResourceLimitExceeded,
		Limit:   LimitDepth,
		Size:    depth,
		Max:     max,
		Message: fmt.Sprintf("nesting depth %d exceeds limit of %d", depth, max),
	}
}

// ReferencesExceeded reports more shared references than the active
// limit allows.
func ReferencesExceeded(count, max int) error {
	return &Error{
		Kind:    KindResourceLimitExceeded,
		Limit:   LimitReferences,
		Size:    count,
		Max:     max,
		Message: fmt.Sprintf("reference count %d exceeds limit of %d", count, max),
	}
}

// Disallowed reports a discriminant outside the active allow-list.
func Disallowed(name string) error {
	return &Error{
		Kind:    KindDisallowedType,
		Name:    name,
		Message: fmt.Sprintf("type %q is not allowed by the active policy", name),
	}
}

// SignatureMismatch reports a presented signature that does not match
// the payload. The message deliberately carries no detail.
func SignatureMismatch() error {
	return &Error{Kind: KindSignatureMismatch, Message: "signature does not match payload"}
}

// UnexpectedType reports a materialized value whose discriminant
// differs from the one the caller required.
func UnexpectedType(got, want string) error {
	return &Error{
		Kind:    KindUnexpectedType,
		Got:     got,
		Want:    want,
		Message: fmt.Sprintf("expected %s, got %s", want, got),
	}
}

// Encoding reports a value that cannot be encoded onto the wire.
// cause may be nil.
func Encoding(message string, cause error) error {
	return &Error{Kind: KindEncoding, Message: message, Cause: cause}
}

// KindOf returns the Kind of err, or "" if err is not (and does not
// wrap) an *Error.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}

// IsKind reports whether err is (or wraps) an *Error of the given Kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
