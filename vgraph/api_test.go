package vgraph

import (
	"context"
	"math"
	"strings"
	"testing"
)

func TestSerializeOmitsIIFEWhenNothingIsMarked(t *testing.T) {
	// spec.md §8: serialize(1/0) === "1/0" — no ids are ever marked for
	// a lone primitive, so there is nothing for an IIFE to bind.
	out, err := Serialize(Number(math.Inf(1)), Options{})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if out != "1/0" {
		t.Fatalf("expected bare %q, got %q", "1/0", out)
	}

	out, err = Serialize(Object([]string{"a"}, map[string]*Value{"a": Number(1)}, FlagsNone), Options{})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if out != "({a:1})" {
		t.Fatalf("expected bare %q, got %q", "({a:1})", out)
	}
}

func TestSerializeWrapsIIFEWhenIdsAreMarked(t *testing.T) {
	v := Array(nil, nil)
	v.Elements = []*Value{v} // cyclic, forces a marked id and a declared name

	out, err := Serialize(v, Options{})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !strings.HasPrefix(out, "(function(){") {
		t.Fatalf("expected IIFE wrapper once an id is marked, got %q", out)
	}
}

func TestSerializeAsyncAwaitsPromise(t *testing.T) {
	p := PromiseVal(true, false, Str("done"))
	out, err := SerializeAsync(context.Background(), p, Options{})
	if err != nil {
		t.Fatalf("SerializeAsync: %v", err)
	}
	if !strings.Contains(out, "Promise.resolve(") {
		t.Fatalf("expected Promise.resolve(...), got %q", out)
	}
}

func TestCrossSerializeSharesScope(t *testing.T) {
	opts := Options{ScopeID: "scope-x-default-refs"}

	first := Array(nil, nil)
	first.Elements = []*Value{first} // cyclic, forces the root itself to be marked and named

	out1, err := CrossSerialize(first, opts)
	if err != nil {
		t.Fatalf("CrossSerialize (first): %v", err)
	}
	if !strings.Contains(out1, `$R["scope-x-default-refs"][0]=`) {
		t.Fatalf("expected first call to bind id 0, got %q", out1)
	}

	second := Array(nil, nil)
	second.Elements = []*Value{second}

	out2, err := CrossSerialize(second, opts)
	if err != nil {
		t.Fatalf("CrossSerialize (second): %v", err)
	}
	if strings.Contains(out2, `$R["scope-x-default-refs"][0]=`) {
		t.Fatalf("expected second call's id to continue past the first's, got %q", out2)
	}
	if !strings.Contains(out2, `$R["scope-x-default-refs"][1]=`) {
		t.Fatalf("expected second call to bind id 1 (continuing scope-x-default-refs's shared counter), got %q", out2)
	}
}

func TestCreateReferenceThenParseYieldsReferenceNode(t *testing.T) {
	reg := NewReferenceRegistry()
	opts := Options{Registry: reg}
	handle := Object(nil, map[string]*Value{}, FlagsNone)

	if err := CreateReference("handle-a", handle, opts); err != nil {
		t.Fatalf("CreateReference: %v", err)
	}

	out, err := Serialize(handle, opts)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !strings.Contains(out, `$VGREF.get("handle-a")`) {
		t.Fatalf("expected reference lookup in output, got %q", out)
	}
}

func TestCreateReferenceDuplicateTagFails(t *testing.T) {
	reg := NewReferenceRegistry()
	a := Object(nil, map[string]*Value{}, FlagsNone)
	b := Object(nil, map[string]*Value{}, FlagsNone)

	if err := CreateReference("dup", a, Options{Registry: reg}); err != nil {
		t.Fatalf("CreateReference: %v", err)
	}
	err := CreateReference("dup", b, Options{Registry: reg})
	if _, ok := err.(*DuplicateReferenceTagError); !ok {
		t.Fatalf("expected DuplicateReferenceTagError, got %v", err)
	}
}

func TestDeserializeSurfacesEvalError(t *testing.T) {
	_, err := Deserialize("(()=>{throw 1})()", func(string) (any, error) {
		return nil, errEvalFailed
	})
	if _, ok := err.(*InvariantViolationError); !ok {
		t.Fatalf("expected InvariantViolationError, got %v", err)
	}
}

func TestDeserializeReturnsEvaluatorResult(t *testing.T) {
	got, err := Deserialize("1+1", func(string) (any, error) { return 2, nil })
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if got != 2 {
		t.Fatalf("got %v", got)
	}
}

type evalFailure struct{}

func (evalFailure) Error() string { return "eval failed" }

var errEvalFailed = evalFailure{}
