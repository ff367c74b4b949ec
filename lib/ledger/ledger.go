// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/deserlab/lib/clock"
)

// TriggerEvent prefixes the message of every entry written by
// RecordTrigger.
const TriggerEvent = "fixture.GadgetRecord TRIGGERED"

// Entry is one ledger record. Entries are never mutated after append.
type Entry struct {
	Timestamp time.Time
	Message   string
}

// String renders the entry as "<RFC 3339 timestamp> <message>".
func (e Entry) String() string {
	return e.Timestamp.UTC().Format(time.RFC3339Nano) + " " + e.Message
}

// Ledger is an append-only event log plus a trigger counter. The zero
// value is not usable; construct with New.
type Ledger struct {
	clock    clock.Clock
	triggers atomic.Int64

	mu      sync.Mutex
	entries []Entry
}

// New returns an empty ledger stamping entries with the given clock.
func New(clk clock.Clock) *Ledger {
	if clk == nil {
		clk = clock.Real()
	}
	return &Ledger{clock: clk}
}

var process = New(clock.Real())

// Process returns the process-wide ledger.
func Process() *Ledger {
	return process
}

// RecordTrigger counts one gadget materialization and appends an entry
// naming its message. It implements gadget.Recorder.
func (l *Ledger) RecordTrigger(message string) {
	l.triggers.Add(1)
	l.Append(TriggerEvent + " | message=" + message)
}

// Append adds an entry stamped with the current time.
func (l *Ledger) Append(message string) {
	entry := Entry{Timestamp: l.clock.Now(), Message: message}
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
}

// Count returns the number of triggers recorded so far.
func (l *Ledger) Count() int64 {
	return l.triggers.Load()
}

// Len returns the number of entries in the log.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Snapshot returns an independent copy of the log in append order.
func (l *Ledger) Snapshot() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Events returns the rendered form of every entry in append order.
func (l *Ledger) Events() []string {
	snapshot := l.Snapshot()
	events := make([]string, len(snapshot))
	for index, entry := range snapshot {
		events[index] = entry.String()
	}
	return events
}
