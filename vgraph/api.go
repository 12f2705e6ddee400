package vgraph

import (
	"context"

	"github.com/google/uuid"
)

// This file collects the top-level operations from §6's table: each
// one composes a Parser (sync or async) with one of the two
// Serializer modes, in the fixed order every operation follows —
// parse, commit the cross-ref counter if any, serialize — so callers
// never need to touch Parser/Serializer directly for the common
// cases.
//
// Grounded on the teacher's top-level package functions (glyph/emit.go,
// glyph/parse.go) which likewise expose a handful of `Emit`/`Parse`
// convenience wrappers in front of the same `emitter`/`Parser` types
// the rest of the package works with directly.

// Serialize parses v and renders it in self-contained mode (§4.6):
// one standalone expression, scoped private bindings, no shared
// state. This is the "serialize" operation of §6.
func Serialize(v *Value, opts Options) (string, error) {
	p := NewParser(opts)
	n, err := p.Parse(v)
	if err != nil {
		return "", err
	}
	p.Commit()
	return NewSelfContainedSerializer(opts).Serialize(n)
}

// SerializeAsync is Serialize's async-parser counterpart (§6
// "serializeAsync"): it awaits Promise resolutions, which Serialize
// rejects.
func SerializeAsync(ctx context.Context, v *Value, opts Options) (string, error) {
	p := NewAsyncParser(opts)
	n, err := p.ParseAsync(ctx, v)
	if err != nil {
		return "", err
	}
	p.Commit()
	return NewSelfContainedSerializer(opts).Serialize(n)
}

// CrossSerialize parses v and renders it in cross-referenced mode
// (§4.7), sharing opts.ScopeID's `$R` table across calls instead of
// producing a standalone expression. A caller that leaves ScopeID
// unset gets a fresh random scope, so that concurrent callers who
// never think about scopes don't collide on one shared unnamespaced
// table.
func CrossSerialize(v *Value, opts Options) (string, error) {
	opts = withDefaultScope(opts)
	p := NewParser(opts)
	n, err := p.Parse(v)
	if err != nil {
		return "", err
	}
	p.Commit()
	return NewCrossReferencedSerializer(opts, opts.ScopeID).Serialize(n)
}

// CrossSerializeAsync is CrossSerialize's async-parser counterpart.
func CrossSerializeAsync(ctx context.Context, v *Value, opts Options) (string, error) {
	opts = withDefaultScope(opts)
	p := NewAsyncParser(opts)
	n, err := p.ParseAsync(ctx, v)
	if err != nil {
		return "", err
	}
	p.Commit()
	return NewCrossReferencedSerializer(opts, opts.ScopeID).Serialize(n)
}

// CrossSerializeStream opens a StreamingDriver against opts.ScopeID
// for multi-root cross-referenced output (§4.8 "crossSerializeStream").
// Callers drive it with Write/Follow/Flush/Close; this constructor
// only wires the driver to a context and options, matching the
// spec's description of the operation as "open a stream", not "run it
// to completion" (the caller controls lifetime).
func CrossSerializeStream(ctx context.Context, opts Options) *StreamingDriver {
	opts = withDefaultScope(opts)
	return NewStreamingDriver(ctx, opts, opts.ScopeID)
}

// withDefaultScope mints a random session scope id when the caller
// left ScopeID unset, so the resolved id stays the single source of
// truth the parser's Refs bookkeeping and the serializer's `$R` namer
// both key off. It also defaults opts.Refs to DefaultCrossRefTable
// when the caller left it nil, the same "fall back to the
// package-global singleton" pattern Options.registry() already uses
// for Registry — without this, every cross-mode call that doesn't
// build its own *CrossRefTable would start its id counter at 0 on
// every call, defeating §3/§4.7's "ids persist across calls within a
// scope" invariant.
func withDefaultScope(opts Options) Options {
	if opts.ScopeID == "" {
		opts.ScopeID = uuid.NewString()
	}
	if opts.Refs == nil {
		opts.Refs = DefaultCrossRefTable
	}
	return opts
}

// CreateReference registers handle under tag in opts.Registry (or the
// process-global default), so any later parse of handle serializes as
// a Reference node instead of attempting structural parsing (§6
// "createReference").
func CreateReference(tag string, handle any, opts Options) error {
	return opts.registry().CreateReference(tag, handle)
}

// Deserialize evaluates previously emitted source text back into a
// value. The IR/serializer side of this module never executes
// JavaScript itself — per §1's scope note, the runtime that can
// actually `eval` the emitted text is assumed to be supplied by the
// embedding host, the same way `$VGREF`/`$R`'s existence is assumed
// rather than produced by this package. evalFn is that host-supplied
// evaluator; Deserialize only adds the "fails when: evaluation error"
// contract from §6's operations table around it.
func Deserialize(source string, evalFn func(string) (any, error)) (any, error) {
	v, err := evalFn(source)
	if err != nil {
		return nil, &InvariantViolationError{Detail: "deserialize: " + err.Error()}
	}
	return v, nil
}
