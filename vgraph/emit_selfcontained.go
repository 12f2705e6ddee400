package vgraph

import "strings"

// base54Namer implements refNamer for self-contained mode: a base-54
// encoding of the id over the alphabet `[A-Za-z_$]` for the first
// character, then `[A-Za-z0-9_$]*` for the rest (§4.5.1), yielding
// `a`, `b`, …, `A`, …, `aa`, … — short, collision-free, valid
// identifiers with no digit-leading risk.
type base54Namer struct{}

const firstAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_$"
const restAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_$"

func (base54Namer) format(id int) string {
	var b strings.Builder
	n := id
	first := n % len(firstAlphabet)
	b.WriteByte(firstAlphabet[first])
	n /= len(firstAlphabet)
	for n > 0 {
		n--
		b.WriteByte(restAlphabet[n%len(restAlphabet)])
		n /= len(restAlphabet)
	}
	return b.String()
}

// SelfContainedSerializer is the §4.6 mode: emission is wrapped in an
// IIFE so every base54Namer binding is private to that single call, and
// nothing persists between calls.
//
// Grounded on the teacher's top-level Emit entry point (glyph/emit.go)
// which likewise hands back one finished string per call with no
// carried state; the IIFE wrapper itself is this spec's own addition
// since GLYPH's grammar has no notion of private bindings to hide.
type SelfContainedSerializer struct {
	*Serializer
}

// NewSelfContainedSerializer creates a serializer for one-shot,
// single-expression output.
func NewSelfContainedSerializer(opts Options) *SelfContainedSerializer {
	return &SelfContainedSerializer{Serializer: newSerializer(opts, base54Namer{})}
}

// Serialize produces root's expression (§4.6). premark runs before any
// name is emitted, so the full marked-id set is known up front: when
// it's empty the result is the bare expression (`serialize(1/0)` ===
// `"1/0"`), parenthesized when it starts with `{` so an object literal
// is not read as a block (`({a:1})`), and when it's non-empty the
// expression is wrapped in `(function(){var a,b,...;return <expr>})()`
// so the bindings stay private to this single call.
func (sc *SelfContainedSerializer) Serialize(root *Node) (string, error) {
	sc.marked = premark(root)
	expr, err := sc.serializeNode(root)
	if err != nil {
		return "", err
	}
	names := sc.declaredNames()
	if len(names) == 0 {
		if strings.HasPrefix(expr, "{") {
			return "(" + expr + ")", nil
		}
		return expr, nil
	}
	return "(function(){var " + strings.Join(names, ",") + ";return " + expr + "})()", nil
}

// declaredNames renders every id the marked set has recorded, in
// numeric order, as it would be formatted by base54Namer.
func (sc *SelfContainedSerializer) declaredNames() []string {
	ids := sc.marked.ids
	ordered := make([]int, 0, len(ids))
	for id := range ids {
		ordered = append(ordered, id)
	}
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j] < ordered[j-1]; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	names := make([]string, len(ordered))
	for i, id := range ordered {
		names[i] = base54Namer{}.format(id)
	}
	return names
}
