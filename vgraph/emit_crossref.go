package vgraph

import (
	"strconv"
	"sync"
)

// CrossRefTable is the process-global, scope-namespaced id counter
// backing cross-referenced mode (§3: "in cross-referenced mode [ids]
// are drawn from a counter carried in the shared context so that
// subsequent parses extend the same id space"; §4.7's shared `$R`).
//
// Grounded on the teacher's PoolRegistry (glyph/pool.go) in the same
// way refregistry.go is: a named, mutex-guarded map, repurposed here
// from string-interning to a per-scope monotonic id counter.
type CrossRefTable struct {
	mu     sync.Mutex
	nextID map[string]int
}

// NewCrossRefTable creates an empty table. Callers needing a single
// unnamespaced scope pass "" wherever a scopeId is asked for.
func NewCrossRefTable() *CrossRefTable {
	return &CrossRefTable{nextID: make(map[string]int)}
}

// DefaultCrossRefTable is the process-global table cross-mode
// operations use when the caller supplies no explicit Options.Refs.
var DefaultCrossRefTable = NewCrossRefTable()

// Reserve returns scopeID's current id counter without advancing it;
// a parser seeds its own counter from this value so ids it assigns
// extend, rather than collide with, ids any prior call in the same
// scope already produced.
func (t *CrossRefTable) Reserve(scopeID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nextID[scopeID]
}

// Commit advances scopeID's counter to next, called once a parse
// against this scope has finished assigning ids.
func (t *CrossRefTable) Commit(scopeID string, next int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if next > t.nextID[scopeID] {
		t.nextID[scopeID] = next
	}
}

// crossRefNamer implements refNamer for cross-referenced mode: names
// are `$R[i]`, or `$R[<scope>][i]` when namespaced (§4.5.1), read as
// plain bracket-indexable slots rather than Map accessors so the same
// `name=expr` / `name.method(...)` forms emit.go already builds for
// self-contained mode work unchanged here too.
type crossRefNamer struct {
	scope string
}

func (n crossRefNamer) format(id int) string {
	if n.scope == "" {
		return "$R[" + strconv.Itoa(id) + "]"
	}
	return "$R[" + QuotedString(n.scope) + "][" + strconv.Itoa(id) + "]"
}

// CrossReferencedSerializer is the §4.7 mode. Every call emits one
// expression that writes into the shared `$R` table and yields the
// root; `$R`'s own existence is assumed to be established once by the
// embedding host, the same way the reference registry's lookup global
// is assumed rather than emitted (§1's scope note on the
// string-escaping helper applies equally here).
type CrossReferencedSerializer struct {
	*Serializer
	scope string
}

// NewCrossReferencedSerializer creates a serializer namespaced to
// scopeID (empty string for the default scope).
func NewCrossReferencedSerializer(opts Options, scopeID string) *CrossReferencedSerializer {
	return &CrossReferencedSerializer{
		Serializer: newSerializer(opts, crossRefNamer{scope: scopeID}),
		scope:      scopeID,
	}
}

// Serialize walks root and returns the bare expression; unlike
// self-contained mode there is no IIFE wrapper and no `var` statement
// since every binding already lives in the shared `$R` table, not a
// local scope.
func (cs *CrossReferencedSerializer) Serialize(root *Node) (string, error) {
	return cs.Serializer.Serialize(root)
}

// FollowUp renders one streaming sub-mode completion expression
// (§4.7): a promise settling or a stream producing/finishing an
// event, addressed to the controller object already bound at id's
// slot in `$R`.
func (cs *CrossReferencedSerializer) FollowUp(id int, kind FollowUpKind, valueExpr string) string {
	target := crossRefNamer{scope: cs.scope}.format(id)
	switch kind {
	case FollowUpResolve:
		return target + ".resolve(" + valueExpr + ")"
	case FollowUpReject:
		return target + ".reject(" + valueExpr + ")"
	case FollowUpEnqueue:
		return target + ".enqueue(" + valueExpr + ")"
	case FollowUpClose:
		return target + ".close()"
	case FollowUpError:
		return target + ".error(" + valueExpr + ")"
	default:
		return target
	}
}

// FollowUpKind selects one of the five streaming completion forms
// named in §4.7.
type FollowUpKind uint8

const (
	FollowUpResolve FollowUpKind = iota
	FollowUpReject
	FollowUpEnqueue
	FollowUpClose
	FollowUpError
)
