// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package policy describes what a decode is allowed to materialize.
//
// A [Policy] is an explicit value passed to every decode: resource
// limits plus an allow-list of discriminant [Matcher]s. There is no
// global or ambient policy. Two presets exist:
//
//   - [Sandboxed] allows every fixture and core variant, including the
//     dangerous fixture.GadgetRecord, under bounded resources. It is a
//     demonstration mode and not a security boundary.
//   - [Strict] allows only fixture.UserRecord and the core primitives
//     and list, with tighter limits. Callers pair it with signature
//     verification.
//
// [Policy.Decide] never allows a discriminant implicitly: a tag is
// allowed only if a matcher names it and it is a member of the closed
// variant table in lib/gadget.
package policy

import (
	"fmt"
	"strings"

	"github.com/bureau-foundation/deserlab/lib/gadget"
)

// MaxPayloadBytes is the payload size limit shared by both presets.
const MaxPayloadBytes = 16 * 1024

// Decision is the outcome of the type gate for one discriminant.
type Decision int

const (
	// Undecided means the discriminant is not yet known (a structural
	// wrapper whose content has not been resolved). It is never
	// treated as Allow.
	Undecided Decision = iota
	Allow
	Reject
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Reject:
		return "reject"
	default:
		return "undecided"
	}
}

// Policy bounds a single decode.
type Policy struct {
	// Name identifies the policy in logs and errors ("sandboxed",
	// "strict").
	Name string

	// MaxBytes bounds the payload length and the running count of
	// consumed bytes.
	MaxBytes int

	// MaxDepth bounds value nesting. The root value is depth 1.
	MaxDepth int

	// MaxReferences bounds the number of shareable and sharedref
	// markers in the payload.
	MaxReferences int

	// Allowed lists the discriminants that may be materialized.
	Allowed []Matcher
}

// Sandboxed returns the permissive demonstration preset.
func Sandboxed() Policy {
	return Policy{
		Name:          "sandboxed",
		MaxBytes:      MaxPayloadBytes,
		MaxDepth:      10,
		MaxReferences: 10000,
		Allowed:       []Matcher{Namespace("fixture"), Namespace("core")},
	}
}

// Strict returns the preset that excludes the dangerous variant.
func Strict() Policy {
	return Policy{
		Name:          "strict",
		MaxBytes:      MaxPayloadBytes,
		MaxDepth:      5,
		MaxReferences: 1000,
		Allowed: []Matcher{
			Exact(gadget.TagUserRecord),
			Exact(gadget.TagString),
			Exact(gadget.TagInt),
			Exact(gadget.TagList),
		},
	}
}

// ByName returns a preset by its Name.
func ByName(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sandboxed":
		return Sandboxed(), nil
	case "strict":
		return Strict(), nil
	}
	return Policy{}, fmt.Errorf("unknown policy %q (want sandboxed or strict)", name)
}

// Validate reports limits that cannot produce a meaningful decode.
func (p Policy) Validate() error {
	var problems []string
	if p.MaxBytes <= 0 {
		problems = append(problems, fmt.Sprintf("max bytes must be positive, got %d", p.MaxBytes))
	}
	if p.MaxDepth <= 0 {
		problems = append(problems, fmt.Sprintf("max depth must be positive, got %d", p.MaxDepth))
	}
	if p.MaxReferences < 0 {
		problems = append(problems, fmt.Sprintf("max references must not be negative, got %d", p.MaxReferences))
	}
	if len(problems) > 0 {
		return fmt.Errorf("policy %q: %s", p.Name, strings.Join(problems, "; "))
	}
	return nil
}

// Decide runs the type gate for tag. The empty tag is Undecided.
func (p Policy) Decide(tag gadget.Tag) Decision {
	if tag == "" {
		return Undecided
	}
	if !p.Allows(tag) {
		return Reject
	}
	if _, ok := gadget.Lookup(tag); !ok {
		return Reject
	}
	return Allow
}

// Allows reports whether any matcher names tag. It does not consult
// the variant table; use Decide for gating.
func (p Policy) Allows(tag gadget.Tag) bool {
	for _, matcher := range p.Allowed {
		if matcher != nil && matcher.Match(tag) {
			return true
		}
	}
	return false
}

func (p Policy) String() string {
	patterns := make([]string, len(p.Allowed))
	for index, matcher := range p.Allowed {
		patterns[index] = matcher.String()
	}
	return fmt.Sprintf("%s{bytes=%d depth=%d refs=%d allow=[%s]}",
		p.Name, p.MaxBytes, p.MaxDepth, p.MaxReferences, strings.Join(patterns, " "))
}
