package vgraph

import "testing"

func TestParsePrimitives(t *testing.T) {
	p := NewParser(Options{})

	cases := []struct {
		name string
		v    *Value
		tag  NodeTag
	}{
		{"undefined", Undefined(), TagUndefined},
		{"null", Null(), TagNull},
		{"true", Bool(true), TagTrue},
		{"false", Bool(false), TagFalse},
		{"number", Number(3.5), TagNumber},
		{"posZero", Number(0), TagPosZero},
		{"string", Str("hi"), TagString},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n, err := p.Parse(c.v)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if n.Tag != c.tag {
				t.Fatalf("got tag %v, want %v", n.Tag, c.tag)
			}
		})
	}
}

func TestParseNegativeZeroAndSpecials(t *testing.T) {
	p := NewParser(Options{})

	n, err := p.Parse(Number(0))
	if err != nil || n.Tag != TagPosZero {
		t.Fatalf("+0: got %v, %v", n, err)
	}

	neg, err := p.Parse(Number(negZero()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if neg.Tag != TagNegZero {
		t.Fatalf("-0: got tag %v", neg.Tag)
	}
}

func negZero() float64 {
	var z float64
	return -z
}

func TestParseArraySparse(t *testing.T) {
	p := NewParser(Options{})
	arr := Array([]*Value{Number(1), nil, Number(3)}, map[int]bool{1: true})
	n, err := p.Parse(arr)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if n.Tag != TagArray {
		t.Fatalf("got tag %v", n.Tag)
	}
	if n.Length != 3 {
		t.Fatalf("got length %d", n.Length)
	}
	if _, ok := n.Elements[1]; ok {
		t.Fatalf("hole at index 1 should be absent from Elements")
	}
	if _, ok := n.Elements[0]; !ok {
		t.Fatalf("index 0 should be present")
	}
}

func TestParseCycleAssignsSameID(t *testing.T) {
	p := NewParser(Options{})
	obj := Object([]string{"self"}, map[string]*Value{}, FlagsNone)
	obj.Fields["self"] = obj

	n, err := p.Parse(obj)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if n.Tag != TagObject {
		t.Fatalf("got tag %v", n.Tag)
	}
	selfChild := n.Props.Values[0]
	if selfChild.Tag != TagIndexedValue {
		t.Fatalf("self-reference should parse as IndexedValue, got %v", selfChild.Tag)
	}
	if selfChild.RefID != n.ID {
		t.Fatalf("self-reference RefID %d should equal owning node ID %d", selfChild.RefID, n.ID)
	}
}

func TestParseSharedSubgraphSameID(t *testing.T) {
	p := NewParser(Options{})
	shared := Array([]*Value{Number(1)}, nil)
	root := Object([]string{"a", "b"}, map[string]*Value{
		"a": shared,
		"b": shared,
	}, FlagsNone)

	n, err := p.Parse(root)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var first, second *Node
	for i, k := range n.Props.Keys {
		if k == "a" {
			first = n.Props.Values[i]
		}
		if k == "b" {
			second = n.Props.Values[i]
		}
	}
	if first.Tag != TagArray {
		t.Fatalf("first occurrence should be the full Array node, got %v", first.Tag)
	}
	if second.Tag != TagIndexedValue || second.RefID != first.ID {
		t.Fatalf("second occurrence should alias first's id, got tag=%v refID=%d firstID=%d", second.Tag, second.RefID, first.ID)
	}
}

func TestParseFeatureDisabledRejectsMap(t *testing.T) {
	p := NewParser(Options{DisabledFeatures: FeatureMap})
	_, err := p.Parse(MapVal(nil))
	if _, ok := err.(*FeatureDisabledError); !ok {
		t.Fatalf("expected FeatureDisabledError, got %v", err)
	}
}

func TestParseUnsupportedPromiseSync(t *testing.T) {
	p := NewParser(Options{})
	_, err := p.Parse(PromiseVal(true, false, Str("ok")))
	if _, ok := err.(*UnsupportedTypeError); !ok {
		t.Fatalf("expected UnsupportedTypeError for sync Promise parse, got %v", err)
	}
}

func TestParseRegisteredReference(t *testing.T) {
	reg := NewReferenceRegistry()
	// Only non-primitive Values carry an id the registry can key off
	// of (§4.4 dispatch step 1 runs after the primitive short-circuit).
	registered := Object(nil, map[string]*Value{}, FlagsNone)
	if err := reg.CreateReference("tag-1", registered); err != nil {
		t.Fatalf("CreateReference: %v", err)
	}

	p := NewParser(Options{Registry: reg})
	n, err := p.Parse(registered)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if n.Tag != TagReference || n.RefTag != "tag-1" {
		t.Fatalf("expected Reference node tag-1, got tag=%v refTag=%s", n.Tag, n.RefTag)
	}
}
