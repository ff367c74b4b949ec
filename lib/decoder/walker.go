// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package decoder

import (
	"fmt"

	"github.com/bureau-foundation/deserlab/lib/codec"
	"github.com/bureau-foundation/deserlab/lib/fault"
	"github.com/bureau-foundation/deserlab/lib/gadget"
	"github.com/bureau-foundation/deserlab/lib/policy"
)

// walker holds the state of one decode.
type walker struct {
	policy   policy.Policy
	recorder gadget.Recorder

	consumed   int
	references int

	// shared holds values marked shareable, indexed in the order their
	// markers appear in the stream.
	shared []sharedValue
}

type sharedValue struct {
	value gadget.Value

	// height is the depth of the value's own subtree (1 for leaves).
	height int

	// complete is false while the shareable's content is being
	// walked. A reference to an incomplete value is a cycle.
	complete bool
}

// root handles the optional self-described tag, which is allowed only
// at the root.
func (w *walker) root(data []byte) (gadget.Value, int, error) {
	head, err := codec.ReadHead(data)
	if err != nil {
		return nil, 0, err
	}
	if head.Major == codec.MajorTag && head.Argument == codec.TagSelfDescribed {
		if err := w.gateStructure(head.Size, 1, false); err != nil {
			return nil, 0, err
		}
		content := data[head.Size:]
		if err := w.gateResolved(content); err != nil {
			return nil, 0, err
		}
		return w.node(content, 1)
	}
	return w.node(data, 1)
}

// node gates and materializes one item at depth. It returns the value
// and the height of its subtree. Items that are never variants (byte
// strings, maps, floats, simple values, foreign tags) still pass the
// size and depth gates first, so the reported rejection is always the
// highest-priority gate that fails.
func (w *walker) node(item []byte, depth int) (gadget.Value, int, error) {
	head, err := codec.ReadHead(item)
	if err != nil {
		return nil, 0, err
	}

	switch head.Major {
	case codec.MajorArray:
		return w.list(item, head, depth)
	case codec.MajorTag:
		switch head.Argument {
		case codec.TagShareable:
			return w.shareable(item, head, depth)
		case codec.TagSharedRef:
			return w.sharedRef(item, head, depth)
		}
		if variant, ok := gadget.LookupWire(head.Argument); ok {
			return w.record(item, head, depth, variant)
		}
		return nil, 0, w.gate(head.Size, depth, gadget.ForeignTag(head.Argument))
	case codec.MajorUnsigned, codec.MajorNegative:
		return w.leaf(item, depth, gadget.TagInt)
	case codec.MajorText:
		return w.leaf(item, depth, gadget.TagString)
	case codec.MajorBytes:
		return nil, 0, w.gate(len(item), depth, gadget.TagBytes)
	case codec.MajorMap:
		return nil, 0, w.gate(head.Size, depth, gadget.TagMap)
	default:
		if codec.IsFloat(item) {
			return nil, 0, w.gate(len(item), depth, gadget.TagFloat)
		}
		return nil, 0, w.gate(len(item), depth, gadget.TagSimple)
	}
}

// gate runs the size, depth, and type gates for a node that names a
// discriminant directly.
func (w *walker) gate(size, depth int, tag gadget.Tag) error {
	if err := w.gateStructure(size, depth, false); err != nil {
		return err
	}
	switch w.policy.Decide(tag) {
	case policy.Allow:
		return nil
	default:
		return fault.Disallowed(string(tag))
	}
}

// gateStructure runs the size and depth gates, plus the reference gate
// when reference is set.
func (w *walker) gateStructure(size, depth int, reference bool) error {
	w.consumed += size
	if w.consumed > w.policy.MaxBytes {
		return fault.TooLarge(w.consumed, w.policy.MaxBytes)
	}
	if depth > w.policy.MaxDepth {
		return fault.DepthExceeded(depth, w.policy.MaxDepth)
	}
	if reference {
		w.references++
		if w.references > w.policy.MaxReferences {
			return fault.ReferencesExceeded(w.references, w.policy.MaxReferences)
		}
	}
	return nil
}

// gateResolved runs the type gate for a structural wrapper: the
// wrapper itself is undecided, so the wrapped item's discriminant is
// resolved and checked.
func (w *walker) gateResolved(content []byte) error {
	tag, err := w.resolve(content)
	if err != nil {
		return err
	}
	if w.policy.Decide(tag) != policy.Allow {
		return fault.Disallowed(string(tag))
	}
	return nil
}

func (w *walker) leaf(item []byte, depth int, tag gadget.Tag) (gadget.Value, int, error) {
	if err := w.gate(len(item), depth, tag); err != nil {
		return nil, 0, err
	}
	variant, _ := gadget.Lookup(tag)
	value, err := variant.Construct(item, decMode, w.recorder)
	if err != nil {
		return nil, 0, err
	}
	return value, 1, nil
}

func (w *walker) record(item []byte, head codec.Head, depth int, variant gadget.Variant) (gadget.Value, int, error) {
	if err := w.gate(len(item), depth, variant.Tag); err != nil {
		return nil, 0, err
	}
	value, err := variant.Construct(item[head.Size:], decMode, w.recorder)
	if err != nil {
		return nil, 0, err
	}
	return value, 1, nil
}

func (w *walker) list(item []byte, head codec.Head, depth int) (gadget.Value, int, error) {
	if err := w.gate(head.Size, depth, gadget.TagList); err != nil {
		return nil, 0, err
	}

	elements := make(gadget.List, 0, min(head.Argument, uint64(len(item))))
	height := 1
	rest := item[head.Size:]
	for range head.Argument {
		element, remainder, err := codec.Split(rest)
		if err != nil {
			return nil, 0, err
		}
		rest = remainder

		value, childHeight, err := w.node(element, depth+1)
		if err != nil {
			return nil, 0, err
		}
		elements = append(elements, value)
		height = max(height, childHeight+1)
	}
	return elements, height, nil
}

func (w *walker) shareable(item []byte, head codec.Head, depth int) (gadget.Value, int, error) {
	if err := w.gateStructure(head.Size, depth, true); err != nil {
		return nil, 0, err
	}
	content := item[head.Size:]
	if err := w.gateResolved(content); err != nil {
		return nil, 0, err
	}

	index := len(w.shared)
	w.shared = append(w.shared, sharedValue{})

	value, height, err := w.node(content, depth)
	if err != nil {
		return nil, 0, err
	}
	w.shared[index] = sharedValue{value: value, height: height, complete: true}
	return value, height, nil
}

func (w *walker) sharedRef(item []byte, head codec.Head, depth int) (gadget.Value, int, error) {
	if err := w.gateStructure(len(item), depth, true); err != nil {
		return nil, 0, err
	}
	target, err := w.lookupShared(item[head.Size:])
	if err != nil {
		return nil, 0, err
	}

	// The referenced subtree hangs at this position in the graph.
	if effective := depth + target.height - 1; effective > w.policy.MaxDepth {
		return nil, 0, fault.DepthExceeded(effective, w.policy.MaxDepth)
	}
	if tag := target.value.Tag(); w.policy.Decide(tag) != policy.Allow {
		return nil, 0, fault.Disallowed(string(tag))
	}
	return target.value, target.height, nil
}

// lookupShared resolves the content of a sharedref tag to the value
// it names.
func (w *walker) lookupShared(content []byte) (sharedValue, error) {
	head, err := codec.ReadHead(content)
	if err != nil {
		return sharedValue{}, err
	}
	if head.Major != codec.MajorUnsigned {
		return sharedValue{}, fault.Malformed("sharedref index is not an unsigned integer", nil)
	}
	if head.Argument >= uint64(len(w.shared)) {
		return sharedValue{}, fault.Malformed(fmt.Sprintf("sharedref index %d out of range", head.Argument), nil)
	}
	target := w.shared[head.Argument]
	if !target.complete {
		return sharedValue{}, fault.Malformed(fmt.Sprintf("sharedref %d refers to a value under construction", head.Argument), nil)
	}
	return target, nil
}

// resolve returns the discriminant of the first item in data without
// materializing it, looking through nested sharing wrappers.
func (w *walker) resolve(data []byte) (gadget.Tag, error) {
	for {
		head, err := codec.ReadHead(data)
		if err != nil {
			return "", err
		}
		switch head.Major {
		case codec.MajorUnsigned, codec.MajorNegative:
			return gadget.TagInt, nil
		case codec.MajorText:
			return gadget.TagString, nil
		case codec.MajorArray:
			return gadget.TagList, nil
		case codec.MajorBytes:
			return gadget.TagBytes, nil
		case codec.MajorMap:
			return gadget.TagMap, nil
		case codec.MajorSimple:
			if codec.IsFloat(data) {
				return gadget.TagFloat, nil
			}
			return gadget.TagSimple, nil
		}

		switch head.Argument {
		case codec.TagShareable:
			data = data[head.Size:]
			continue
		case codec.TagSharedRef:
			target, err := w.lookupShared(data[head.Size:])
			if err != nil {
				return "", err
			}
			return target.value.Tag(), nil
		}
		if variant, ok := gadget.LookupWire(head.Argument); ok {
			return variant.Tag, nil
		}
		return gadget.ForeignTag(head.Argument), nil
	}
}
