// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gadget

import (
	"fmt"
	"strconv"
	"strings"
)

// Tag is a wire discriminant: a dotted name whose prefix is a
// namespace ("core", "fixture", "cbor").
type Tag string

// Variant discriminants.
const (
	TagString       Tag = "core.String"
	TagInt          Tag = "core.Int"
	TagList         Tag = "core.List"
	TagUserRecord   Tag = "fixture.UserRecord"
	TagGadgetRecord Tag = "fixture.GadgetRecord"
)

// Foreign discriminants. These name wire items that are not variants.
const (
	TagBytes  Tag = "cbor.bytes"
	TagMap    Tag = "cbor.map"
	TagFloat  Tag = "cbor.float"
	TagSimple Tag = "cbor.simple"
)

// Wire tag numbers for the record variants. They sit in the first-come
// first-served range of the IANA CBOR tag registry.
const (
	WireUserRecord   uint64 = 40960
	WireGadgetRecord uint64 = 40961
)

// ForeignTag returns the discriminant for a CBOR tag number that is
// not a record variant, e.g. "cbor.tag.1".
func ForeignTag(number uint64) Tag {
	return Tag("cbor.tag." + strconv.FormatUint(number, 10))
}

// Namespace returns the part of the discriminant before the first dot,
// or "" if there is none.
func (t Tag) Namespace() string {
	namespace, _, found := strings.Cut(string(t), ".")
	if !found {
		return ""
	}
	return namespace
}

// Name returns the part of the discriminant after the namespace.
func (t Tag) Name() string {
	_, name, found := strings.Cut(string(t), ".")
	if !found {
		return string(t)
	}
	return name
}

// ParseTag resolves a variant discriminant from its full name
// ("fixture.UserRecord") or its bare name ("UserRecord"). Only variant
// discriminants are accepted.
func ParseTag(name string) (Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("empty discriminant")
	}
	if _, ok := Lookup(Tag(name)); ok {
		return Tag(name), nil
	}
	for _, variant := range variants {
		if variant.Tag.Name() == name {
			return variant.Tag, nil
		}
	}
	return "", fmt.Errorf("unknown discriminant %q", name)
}
