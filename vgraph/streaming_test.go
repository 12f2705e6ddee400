package vgraph

import (
	"context"
	"strings"
	"testing"
)

func TestStreamingDriverWriteEmitsKeyedAssignment(t *testing.T) {
	d := NewStreamingDriver(context.Background(), Options{}, "sid-1")
	var chunks []string
	d.OnSerialize = func(chunk string) { chunks = append(chunks, chunk) }
	done := false
	d.OnDone = func() { done = true }

	if err := d.Write("globalThis.out", "first", Str("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	d.Flush()

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d: %v", len(chunks), chunks)
	}
	if !strings.HasPrefix(chunks[0], `globalThis.out["first"]=`) {
		t.Fatalf("got %q", chunks[0])
	}
	if !done {
		t.Fatalf("expected OnDone to fire once the only root settled synchronously")
	}
}

func TestStreamingDriverRejectsDuplicateKey(t *testing.T) {
	d := NewStreamingDriver(context.Background(), Options{}, "")
	d.OnSerialize = func(string) {}

	if err := d.Write("g", "k", Str("a")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := d.Write("g", "k", Str("b")); err == nil {
		t.Fatalf("expected an error for a duplicate key")
	}
}

func TestStreamingDriverRejectsWriteAfterClose(t *testing.T) {
	d := NewStreamingDriver(context.Background(), Options{}, "")
	d.Close()
	if err := d.Write("g", "k", Str("a")); err == nil {
		t.Fatalf("expected an error writing to a closed driver")
	}
}

func TestStreamingDriverCloseIsIdempotent(t *testing.T) {
	d := NewStreamingDriver(context.Background(), Options{}, "")
	calls := 0
	d.OnDone = func() { calls++ }
	d.Close()
	d.Close()
	if calls != 1 {
		t.Fatalf("expected OnDone exactly once, got %d", calls)
	}
}

func TestStreamingDriverPendingPromiseWaitsForFollow(t *testing.T) {
	d := NewStreamingDriver(context.Background(), Options{}, "")
	var chunks []string
	d.OnSerialize = func(chunk string) { chunks = append(chunks, chunk) }
	done := false
	d.OnDone = func() { done = true }

	p := PromiseVal(false, false, nil)
	if err := d.Write("g", "p", p); err != nil {
		t.Fatalf("Write: %v", err)
	}
	d.Flush()
	if done {
		t.Fatalf("a still-pending promise root should not fire OnDone yet")
	}

	d.Follow(0, FollowUpResolve, "1")
	if !done {
		t.Fatalf("expected OnDone after the pending root's Follow resolved it")
	}
}
