// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fault

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestErrorsIsMatchesByKind(t *testing.T) {
	err := Disallowed("fixture.GadgetRecord")
	if !errors.Is(err, ErrDisallowedType) {
		t.Fatalf("expected errors.Is to match ErrDisallowedType, got %v", err)
	}
	if errors.Is(err, ErrMalformedEnvelope) {
		t.Fatal("DisallowedType must not match ErrMalformedEnvelope")
	}
}

func TestErrorsIsDistinguishesResourceLimits(t *testing.T) {
	depth := DepthExceeded(6, 5)
	refs := ReferencesExceeded(1001, 1000)

	if !errors.Is(depth, ErrResourceLimitExceeded) || !errors.Is(refs, ErrResourceLimitExceeded) {
		t.Fatal("both resource errors should match ErrResourceLimitExceeded")
	}
	if !errors.Is(depth, ErrDepthExceeded) {
		t.Error("depth error should match ErrDepthExceeded")
	}
	if errors.Is(depth, ErrReferencesExceeded) {
		t.Error("depth error must not match ErrReferencesExceeded")
	}
	if !errors.Is(refs, ErrReferencesExceeded) {
		t.Error("refs error should match ErrReferencesExceeded")
	}
}

func TestErrorsIsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("decode strict: %w", SignatureMismatch())
	if !errors.Is(wrapped, ErrSignatureMismatch) {
		t.Fatal("wrapped signature error should still match")
	}
	if KindOf(wrapped) != KindSignatureMismatch {
		t.Fatalf("KindOf = %q, want %q", KindOf(wrapped), KindSignatureMismatch)
	}
}

func TestStructuredFields(t *testing.T) {
	var failure *Error
	if !errors.As(UnexpectedType("fixture.GadgetRecord", "fixture.UserRecord"), &failure) {
		t.Fatal("expected *Error")
	}
	if failure.Got != "fixture.GadgetRecord" || failure.Want != "fixture.UserRecord" {
		t.Errorf("got/want = %q/%q", failure.Got, failure.Want)
	}

	if !errors.As(TooLarge(20000, 16384), &failure) {
		t.Fatal("expected *Error")
	}
	if failure.Size != 20000 || failure.Max != 16384 {
		t.Errorf("size/max = %d/%d", failure.Size, failure.Max)
	}
}

func TestMalformedUnwrapsCause(t *testing.T) {
	err := Malformed("payload is not valid CBOR", io.ErrUnexpectedEOF)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatal("expected cause to be reachable through Unwrap")
	}
	if !strings.HasPrefix(err.Error(), "MalformedEnvelope: ") {
		t.Errorf("message %q should start with the kind", err.Error())
	}
}

func TestKindOfForeignError(t *testing.T) {
	if KindOf(io.EOF) != "" {
		t.Fatal("foreign errors have no kind")
	}
	if IsKind(nil, KindDisabled) {
		t.Fatal("nil error has no kind")
	}
}
