// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"strings"

	"github.com/bureau-foundation/deserlab/lib/gadget"
)

// Matcher selects discriminants for an allow-list.
type Matcher interface {
	Match(tag gadget.Tag) bool
	String() string
}

type exactMatcher struct {
	tag gadget.Tag
}

// Exact matches exactly one discriminant.
func Exact(tag gadget.Tag) Matcher {
	return exactMatcher{tag: tag}
}

func (m exactMatcher) Match(tag gadget.Tag) bool {
	return m.tag != "" && tag == m.tag
}

func (m exactMatcher) String() string { return string(m.tag) }

type namespaceMatcher struct {
	namespace string
}

// Namespace matches every discriminant in a namespace: Namespace("core")
// matches "core.String" and "core.List" but not "corex.String" or
// "core".
func Namespace(namespace string) Matcher {
	return namespaceMatcher{namespace: namespace}
}

func (m namespaceMatcher) Match(tag gadget.Tag) bool {
	if m.namespace == "" || strings.ContainsAny(m.namespace, ".*") {
		return false
	}
	return tag.Namespace() == m.namespace && tag.Name() != ""
}

func (m namespaceMatcher) String() string { return m.namespace + ".*" }

type invalidMatcher struct {
	pattern string
}

func (invalidMatcher) Match(gadget.Tag) bool { return false }

func (m invalidMatcher) String() string { return "!invalid(" + m.pattern + ")" }

// ParseMatcher builds a matcher from a pattern: "fixture.*" is a
// namespace, anything without a wildcard is an exact discriminant.
// Malformed patterns (empty, "*", wildcards anywhere but a trailing
// ".*") return a matcher that matches nothing.
func ParseMatcher(pattern string) Matcher {
	pattern = strings.TrimSpace(pattern)
	if namespace, found := strings.CutSuffix(pattern, ".*"); found {
		if namespace == "" || strings.ContainsAny(namespace, ".*") {
			return invalidMatcher{pattern: pattern}
		}
		return Namespace(namespace)
	}
	if pattern == "" || strings.Contains(pattern, "*") {
		return invalidMatcher{pattern: pattern}
	}
	return Exact(gadget.Tag(pattern))
}

// ParseMatchers parses each pattern with ParseMatcher.
func ParseMatchers(patterns []string) []Matcher {
	matchers := make([]Matcher, len(patterns))
	for index, pattern := range patterns {
		matchers[index] = ParseMatcher(pattern)
	}
	return matchers
}
