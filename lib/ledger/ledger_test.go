// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/deserlab/lib/clock"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestRecordTrigger(t *testing.T) {
	fake := clock.Fake(epoch)
	ledger := New(fake)

	ledger.RecordTrigger("pwned")

	if ledger.Count() != 1 {
		t.Fatalf("Count = %d, want 1", ledger.Count())
	}
	snapshot := ledger.Snapshot()
	if len(snapshot) != 1 {
		t.Fatalf("Snapshot has %d entries, want 1", len(snapshot))
	}
	if !snapshot[0].Timestamp.Equal(epoch) {
		t.Errorf("timestamp = %v, want %v", snapshot[0].Timestamp, epoch)
	}
	if !strings.Contains(snapshot[0].Message, "message=pwned") {
		t.Errorf("message %q does not name the gadget message", snapshot[0].Message)
	}

	events := ledger.Events()
	want := "2024-01-01T00:00:00Z " + TriggerEvent + " | message=pwned"
	if len(events) != 1 || events[0] != want {
		t.Errorf("Events = %q, want [%q]", events, want)
	}
}

func TestAppendDoesNotCount(t *testing.T) {
	ledger := New(clock.Fake(epoch))
	ledger.Append("note")
	if ledger.Count() != 0 {
		t.Errorf("Count = %d after plain Append, want 0", ledger.Count())
	}
	if ledger.Len() != 1 {
		t.Errorf("Len = %d, want 1", ledger.Len())
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	fake := clock.Fake(epoch)
	ledger := New(fake)
	ledger.RecordTrigger("first")

	snapshot := ledger.Snapshot()
	snapshot[0].Message = "tampered"

	fake.Advance(time.Second)
	ledger.RecordTrigger("second")

	if len(snapshot) != 1 {
		t.Fatalf("snapshot grew to %d entries", len(snapshot))
	}
	current := ledger.Snapshot()
	if strings.Contains(current[0].Message, "tampered") {
		t.Fatal("mutating a snapshot changed the ledger")
	}
	if !current[1].Timestamp.Equal(epoch.Add(time.Second)) {
		t.Errorf("second timestamp = %v", current[1].Timestamp)
	}
}

func TestConcurrentRecordTrigger(t *testing.T) {
	ledger := New(clock.Fake(epoch))

	const writers = 8
	const perWriter = 250

	var wg sync.WaitGroup
	for writer := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sequence := range perWriter {
				ledger.RecordTrigger(fmt.Sprintf("w%d-%d", writer, sequence))
			}
		}()
	}
	wg.Wait()

	if ledger.Count() != writers*perWriter {
		t.Fatalf("Count = %d, want %d", ledger.Count(), writers*perWriter)
	}
	snapshot := ledger.Snapshot()
	if len(snapshot) != writers*perWriter {
		t.Fatalf("Snapshot has %d entries, want %d", len(snapshot), writers*perWriter)
	}

	// Each writer's own entries appear in the order it wrote them.
	next := make(map[int]int)
	for _, entry := range snapshot {
		var writer, sequence int
		_, message, _ := strings.Cut(entry.Message, "message=")
		if _, err := fmt.Sscanf(message, "w%d-%d", &writer, &sequence); err != nil {
			t.Fatalf("unparseable entry %q: %v", entry.Message, err)
		}
		if sequence != next[writer] {
			t.Fatalf("writer %d: got sequence %d, want %d", writer, sequence, next[writer])
		}
		next[writer]++
	}
}

func TestProcessIsSingleton(t *testing.T) {
	if Process() != Process() {
		t.Fatal("Process returned different ledgers")
	}
}
