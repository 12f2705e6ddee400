package vgraph

import "sync"

// ReferenceRegistry is a process-global bidirectional map between
// arbitrary non-primitive handles and stable string tags (§4.2). A
// handle registered once survives serialization as a Reference node
// carrying only its tag; on deserialization the tag is looked back up
// in the same registry to recover the original handle by identity.
//
// Grounded on the teacher's PoolRegistry (glyph/pool.go): a named,
// RWMutex-guarded map looked up by a stable string key, repurposed
// from string-interning pools to reference-identity tags.
type ReferenceRegistry struct {
	mu        sync.RWMutex
	byTag     map[string]any
	tagByAddr map[any]string
}

// NewReferenceRegistry creates an empty registry. Call sites typically
// hold one process-global instance (DefaultRegistry) plus, for tests,
// private instances.
func NewReferenceRegistry() *ReferenceRegistry {
	return &ReferenceRegistry{
		byTag:     make(map[string]any),
		tagByAddr: make(map[any]string),
	}
}

// DefaultRegistry is the process-global registry operations use when
// no explicit registry is threaded through Options.
var DefaultRegistry = NewReferenceRegistry()

// CreateReference registers handle under tag. It fails with
// DuplicateReferenceTagError if tag is already bound to a different
// handle, matching the table in §6 ("createReference ... Fails when
// tag already used").
func (r *ReferenceRegistry) CreateReference(tag string, handle any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byTag[tag]; ok && existing != handle {
		return &DuplicateReferenceTagError{Tag: tag}
	}
	r.byTag[tag] = handle
	r.tagByAddr[handle] = tag
	return nil
}

// TagFor returns the tag previously registered for handle, if any.
// The parser consults this before falling through to the rest of the
// dispatch order (§4.4, step 1: "Registered external reference").
func (r *ReferenceRegistry) TagFor(handle any) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tag, ok := r.tagByAddr[handle]
	return tag, ok
}

// Resolve returns the handle registered under tag, used when
// reconstructing a Reference node during deserialize/fromJSON.
func (r *ReferenceRegistry) Resolve(tag string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.byTag[tag]
	return h, ok
}

// Tags returns every currently registered tag, in no particular
// order. Used by the CLI's "reg list" surface.
func (r *ReferenceRegistry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.byTag))
	for tag := range r.byTag {
		tags = append(tags, tag)
	}
	return tags
}

// Clear removes every registration; intended for test isolation only,
// since production registries are append-mostly for the process
// lifetime (§5).
func (r *ReferenceRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTag = make(map[string]any)
	r.tagByAddr = make(map[any]string)
}
