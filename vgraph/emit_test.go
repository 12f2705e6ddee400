package vgraph

import (
	"strings"
	"testing"
)

func serializeSelfContained(t *testing.T, v *Value) string {
	t.Helper()
	p := NewParser(Options{})
	n, err := p.Parse(v)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := NewSelfContainedSerializer(Options{}).Serialize(n)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	return out
}

func TestSerializePrimitivesInline(t *testing.T) {
	cases := map[string]*Value{
		"void 0": Undefined(),
		"null":   Null(),
		"true":   Bool(true),
		"false":  Bool(false),
		"NaN":    Number(nan()),
	}
	for want, v := range cases {
		got := serializeSelfContained(t, v)
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got %q", want, got)
		}
	}
}

func nan() float64 {
	var z float64
	return z / z
}

func TestSerializeArrayUnmarkedInline(t *testing.T) {
	v := Array([]*Value{Number(1), Number(2), Number(3)}, nil)
	got := serializeSelfContained(t, v)
	if !strings.Contains(got, "[1,2,3]") {
		t.Fatalf("expected inline array literal, got %q", got)
	}
	if strings.Contains(got, "var ") {
		t.Fatalf("unmarked array should need no var declarations, got %q", got)
	}
}

func TestSerializeSelfReferenceUsesShellAndPatch(t *testing.T) {
	obj := Object([]string{"self"}, map[string]*Value{}, FlagsNone)
	obj.Fields["self"] = obj

	got := serializeSelfContained(t, obj)
	if !strings.Contains(got, "var ") {
		t.Fatalf("cyclic object should declare a name, got %q", got)
	}
	if !strings.Contains(got, ".self=") {
		t.Fatalf("expected a post-construction patch for the cyclic property, got %q", got)
	}
}

func TestSerializeSharedSubgraphBoundOnce(t *testing.T) {
	shared := Array([]*Value{Number(9)}, nil)
	root := Object([]string{"a", "b"}, map[string]*Value{
		"a": shared,
		"b": shared,
	}, FlagsNone)

	got := serializeSelfContained(t, root)
	// The shared array must be bound to exactly one name and the
	// second occurrence must reference that name rather than
	// re-emitting [9].
	if strings.Count(got, "[9]") != 1 {
		t.Fatalf("shared array literal should appear exactly once, got %q", got)
	}
}

func TestSerializeMapUnmarkedInline(t *testing.T) {
	m := MapVal([]MapEntryValue{{Key: Str("k"), Val: Number(1)}})
	got := serializeSelfContained(t, m)
	if !strings.Contains(got, "new Map(") {
		t.Fatalf("expected Map constructor, got %q", got)
	}
}

func TestSerializeErrorAlwaysNewCtorCall(t *testing.T) {
	e := ErrorVal("TypeError", "bad", "", nil, nil)
	got := serializeSelfContained(t, e)
	if !strings.Contains(got, "new TypeError(") {
		t.Fatalf("expected new TypeError(...), got %q", got)
	}
}

func TestSerializeErrorWithCausePatchesAfterConstruction(t *testing.T) {
	cause := ErrorVal("Error", "root cause", "", nil, nil)
	e := ErrorVal("Error", "wrapped", "", cause, nil)
	got := serializeSelfContained(t, e)
	if !strings.Contains(got, ".cause=") {
		t.Fatalf("expected a .cause= patch, got %q", got)
	}
}

func TestCrossReferencedOutputIsNotIIFEWrapped(t *testing.T) {
	p := NewParser(Options{ScopeID: "s1"})
	n, err := p.Parse(Array([]*Value{Number(1)}, nil))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := NewCrossReferencedSerializer(Options{ScopeID: "s1"}, "s1").Serialize(n)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if strings.Contains(out, "(function()") {
		t.Fatalf("cross-referenced output should not be IIFE-wrapped, got %q", out)
	}
}

func TestFollowUpRendersBracketAccessors(t *testing.T) {
	cs := NewCrossReferencedSerializer(Options{}, "")
	got := cs.FollowUp(3, FollowUpResolve, "1")
	if got != "$R[3].resolve(1)" {
		t.Fatalf("got %q", got)
	}
	got = cs.FollowUp(3, FollowUpClose, "")
	if got != "$R[3].close()" {
		t.Fatalf("got %q", got)
	}
}

func TestBase54NamerFirstNames(t *testing.T) {
	n := base54Namer{}
	if got := n.format(0); got != "a" {
		t.Fatalf("id 0: got %q, want \"a\"", got)
	}
	if got := n.format(1); got != "b" {
		t.Fatalf("id 1: got %q, want \"b\"", got)
	}
}
