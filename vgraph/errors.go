package vgraph

import "fmt"

// Error taxonomy (§7). The parser surfaces UnsupportedTypeError and
// FeatureDisabledError to its caller; the serializer raises
// MissingPluginError, InvariantViolationError, and FeatureDisabledError
// when the IR needs a feature its own mask has disabled.

// UnsupportedTypeError reports a value with no applicable parse case.
type UnsupportedTypeError struct {
	Kind string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("vgraph: unsupported type: %s", e.Kind)
}

// FeatureDisabledError reports a value whose faithful emission needs a
// feature the caller's mask forbids.
type FeatureDisabledError struct {
	Feature Feature
	Kind    string
}

func (e *FeatureDisabledError) Error() string {
	return fmt.Sprintf("vgraph: %s requires disabled feature %s", e.Kind, e.Feature)
}

// MissingPluginError reports a Plugin IR node whose tag has no
// registered resolver at serialize time.
type MissingPluginError struct {
	Tag string
}

func (e *MissingPluginError) Error() string {
	return fmt.Sprintf("vgraph: no plugin registered for tag %q", e.Tag)
}

// InvariantViolationError reports an internal inconsistency, such as an
// unrecognized IR tag reaching the serializer. Seeing this means a
// parser produced IR the serializer doesn't know how to walk.
type InvariantViolationError struct {
	Detail string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("vgraph: invariant violation: %s", e.Detail)
}

// MalformedIRError reports a JSON IR document that compileJSON/fromJSON
// could not reconstruct into a valid Node tree.
type MalformedIRError struct {
	Detail string
}

func (e *MalformedIRError) Error() string {
	return fmt.Sprintf("vgraph: malformed IR: %s", e.Detail)
}

// DuplicateReferenceTagError is returned by CreateReference when a tag
// is already registered to a different handle.
type DuplicateReferenceTagError struct {
	Tag string
}

func (e *DuplicateReferenceTagError) Error() string {
	return fmt.Sprintf("vgraph: reference tag %q already registered", e.Tag)
}
