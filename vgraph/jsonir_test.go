package vgraph

import "testing"

func TestToJSONFromJSONRoundTripArray(t *testing.T) {
	v := Array([]*Value{Number(1), Str("two"), Bool(true)}, nil)
	data, err := ToJSON(v, Options{})
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	n, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if n.Tag != TagArray || n.Length != 3 {
		t.Fatalf("got tag=%v length=%d", n.Tag, n.Length)
	}
	if n.Elements[0].Tag != TagNumber || n.Elements[0].Number != 1 {
		t.Fatalf("element 0 mismatch: %+v", n.Elements[0])
	}
	if n.Elements[1].Tag != TagString || n.Elements[1].Str != "two" {
		t.Fatalf("element 1 mismatch: %+v", n.Elements[1])
	}
	if n.Elements[2].Tag != TagTrue {
		t.Fatalf("element 2 mismatch: %+v", n.Elements[2])
	}
}

func TestToJSONFromJSONRoundTripCycle(t *testing.T) {
	obj := Object([]string{"self"}, map[string]*Value{}, FlagsNone)
	obj.Fields["self"] = obj

	data, err := ToJSON(obj, Options{})
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	n, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if n.Tag != TagObject {
		t.Fatalf("got tag %v", n.Tag)
	}
	selfChild := n.Props.Values[0]
	if selfChild.Tag != TagIndexedValue || selfChild.RefID != n.ID {
		t.Fatalf("cycle did not round-trip: %+v", selfChild)
	}
}

func TestCompileJSONProducesSelfContainedExpression(t *testing.T) {
	v := Array([]*Value{Number(1), Number(2)}, nil)
	data, err := ToJSON(v, Options{})
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	out, err := CompileJSON(data, Options{})
	if err != nil {
		t.Fatalf("CompileJSON: %v", err)
	}
	if out == "" {
		t.Fatalf("expected non-empty compiled expression")
	}
}

func TestFromJSONRejectsMalformedDocument(t *testing.T) {
	_, err := FromJSON([]byte("not json"))
	if _, ok := err.(*MalformedIRError); !ok {
		t.Fatalf("expected MalformedIRError, got %v", err)
	}
}

func TestFromJSONRejectsMissingIndexedValueRef(t *testing.T) {
	// t=12 is TagIndexedValue with no refId field.
	_, err := FromJSON([]byte(`{"t":12}`))
	if _, ok := err.(*MalformedIRError); !ok {
		t.Fatalf("expected MalformedIRError for missing refId, got %v", err)
	}
}
