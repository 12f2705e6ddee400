package vgraph

import (
	"context"
	"fmt"
	"sync"
)

// StreamingDriver multiplexes many root values onto one output
// channel (§4.8): each call to Write starts a cross-serialize stream
// against one value, assigning the first chunk it produces to a
// caller-visible key and emitting every later chunk (promise
// settlements, stream events) as a bare follow-up expression sharing
// the same `$R` table.
//
// Grounded on the teacher's FrameHandler (stream/cursor.go): a
// callback-struct driver over a shared piece of per-id state
// (SIDState there, the cross-ref id counter plus per-root pending
// bookkeeping here), generalized from "one cursor per stream SID
// tracking sequence numbers" to "one driver tracking how many roots
// are still producing output".
type StreamingDriver struct {
	mu sync.Mutex

	opts     Options
	ser      *CrossReferencedSerializer
	ctx      context.Context
	keys     map[string]bool
	alive    bool
	flushed  bool
	pending  int
	cleanups []func()

	OnSerialize func(chunk string)
	OnDone      func()
	OnError     func(err error)
}

// NewStreamingDriver creates a driver writing through a
// cross-referenced serializer scoped to scopeID.
func NewStreamingDriver(ctx context.Context, opts Options, scopeID string) *StreamingDriver {
	return &StreamingDriver{
		opts:  opts,
		ser:   NewCrossReferencedSerializer(opts, scopeID),
		ctx:   ctx,
		keys:  make(map[string]bool),
		alive: true,
	}
}

// Write starts a cross-serialize stream on value, keyed by key
// (§4.8): the first produced chunk is assigned to
// `<global>["<key>"]=<chunk>`; later chunks for the same root (promise
// settlement, stream events) are emitted as raw follow-up expressions
// through OnSerialize. Write fails if key collides with one already
// in use on this driver, or if the driver has been closed.
func (d *StreamingDriver) Write(globalExpr, key string, value *Value) error {
	d.mu.Lock()
	if !d.alive {
		d.mu.Unlock()
		return fmt.Errorf("vgraph: streaming driver closed")
	}
	if d.keys[key] {
		d.mu.Unlock()
		return fmt.Errorf("vgraph: key %q already in use", key)
	}
	d.keys[key] = true
	d.pending++
	d.mu.Unlock()

	parser := NewAsyncParser(d.opts)
	node, err := parser.ParseAsync(d.ctx, value)
	if err != nil {
		d.finishRoot()
		d.reportError(err)
		return err
	}
	parser.Commit()

	expr, err := d.ser.Serialize(node)
	if err != nil {
		d.finishRoot()
		d.reportError(err)
		return err
	}

	chunk := globalExpr + "[" + QuotedString(key) + "]=" + expr
	d.emit(chunk)
	d.registerCleanup(func() {})

	if node.Tag == TagPromise || node.Tag == TagReadableStreamConstructor {
		// The root itself is still producing output; a real async
		// source would call FollowUp as settlements/chunks arrive.
		// This driver only guarantees the initial binding ordering
		// invariant (§5): nothing else to do until a caller supplies
		// a follow-up via Follow.
		return nil
	}

	d.finishRoot()
	return nil
}

// Follow emits one streaming follow-up expression for id (§4.7) and,
// when kind signals terminal completion (resolve/reject/close/error),
// decrements the pending counter.
func (d *StreamingDriver) Follow(id int, kind FollowUpKind, valueExpr string) {
	d.mu.Lock()
	if !d.alive {
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()

	d.emit(d.ser.FollowUp(id, kind, valueExpr))

	switch kind {
	case FollowUpResolve, FollowUpReject, FollowUpClose, FollowUpError:
		d.finishRoot()
	}
}

// Flush declares that no more roots will be added via Write; once
// pending reaches zero, onDone fires (immediately, if it already has).
func (d *StreamingDriver) Flush() {
	d.mu.Lock()
	d.flushed = true
	done := d.pending == 0
	d.mu.Unlock()
	if done {
		d.fireDone()
	}
}

// Close aborts the stream: every registered cleanup runs, onDone
// fires if it hasn't already, and the driver flips to not-alive,
// suppressing further callbacks. Close is idempotent.
func (d *StreamingDriver) Close() {
	d.mu.Lock()
	if !d.alive {
		d.mu.Unlock()
		return
	}
	d.alive = false
	cleanups := d.cleanups
	d.cleanups = nil
	alreadyDone := d.pending == 0 && d.flushed
	d.mu.Unlock()

	for _, c := range cleanups {
		c()
	}
	if !alreadyDone && d.OnDone != nil {
		d.OnDone()
	}
}

func (d *StreamingDriver) registerCleanup(fn func()) {
	d.mu.Lock()
	d.cleanups = append(d.cleanups, fn)
	d.mu.Unlock()
}

func (d *StreamingDriver) finishRoot() {
	d.mu.Lock()
	d.pending--
	done := d.pending == 0 && d.flushed
	d.mu.Unlock()
	if done {
		d.fireDone()
	}
}

func (d *StreamingDriver) fireDone() {
	d.mu.Lock()
	alive := d.alive
	d.mu.Unlock()
	if alive && d.OnDone != nil {
		d.OnDone()
	}
}

func (d *StreamingDriver) emit(chunk string) {
	d.mu.Lock()
	alive := d.alive
	d.mu.Unlock()
	if alive && d.OnSerialize != nil {
		d.OnSerialize(chunk)
	}
}

func (d *StreamingDriver) reportError(err error) {
	d.mu.Lock()
	alive := d.alive
	d.mu.Unlock()
	if alive && d.OnError != nil {
		d.OnError(err)
	}
}
