package vgraph

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// FromPlainJSON decodes plain JSON bytes (the subset object/array/
// string/number/bool/null — no Node IR extensions) into a Value graph
// suitable for Serialize/CrossSerialize. It is the CLI's input path
// for "vgraph serialize", distinct from jsonir.go's FromJSON, which
// round-trips the richer Node IR itself.
//
// Grounded on the teacher's FromJSONLoose (glyph/json_bridge.go): a
// plain interface{} decode followed by a recursive type switch into
// the library's own value constructors.
func FromPlainJSON(data []byte) (*Value, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("vgraph: parse JSON: %w", err)
	}
	return plainJSONToValue(v), nil
}

func plainJSONToValue(v any) *Value {
	switch val := v.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(val)
	case float64:
		return Number(val)
	case string:
		return Str(val)
	case []any:
		elems := make([]*Value, len(val))
		for i, e := range val {
			elems[i] = plainJSONToValue(e)
		}
		return Array(elems, nil)
	case map[string]any:
		keys := make([]string, 0, len(val))
		fields := make(map[string]*Value, len(val))
		for k, e := range val {
			keys = append(keys, k)
			fields[k] = plainJSONToValue(e)
		}
		return Object(keys, fields, FlagsNone)
	default:
		return Undefined()
	}
}
