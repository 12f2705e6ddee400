package vgraph

// Options are the operation-wide knobs recognized by every exported
// operation (§6): the disabled-features mask, registered plugins, the
// cross-mode scope namespace, and a caller-supplied shared reference
// table for cross-from-JSON reconstruction.
type Options struct {
	// DisabledFeatures is consulted to compute the effective
	// FeatureMask; see §4.1.
	DisabledFeatures Feature

	// Plugins are tried, in order, against every value the built-in
	// dispatch can't otherwise classify.
	Plugins []Plugin

	// ScopeID namespaces the cross-referenced serializer's shared `$R`
	// table (§4.7). Empty means the unnamespaced `$R[i]` table when the
	// options go straight to NewCrossReferencedSerializer or
	// NewStreamingDriver; CrossSerialize, CrossSerializeAsync and
	// CrossSerializeStream replace an empty ScopeID with a fresh uuid.
	ScopeID string

	// Refs is the caller-supplied shared reference table for
	// cross-mode operations that reconstruct against an
	// already-populated table rather than a fresh one. When nil, the
	// cross operations use DefaultCrossRefTable, while a Parser or a
	// StreamingDriver built directly starts its ids at 0.
	Refs *CrossRefTable

	// Registry is the ReferenceRegistry consulted for
	// createReference-style handles. Defaults to DefaultRegistry when
	// nil.
	Registry *ReferenceRegistry

	// ThrowOnUnsupported, when false, makes the parser substitute
	// `undefined` for a value it cannot classify instead of failing
	// with UnsupportedTypeError (§4.4 "error options").
	ThrowOnUnsupported bool
}

// featureSet computes the effective FeatureMask for these options.
func (o Options) featureSet() FeatureMask {
	return NewFeatureSet(o.DisabledFeatures)
}

// registry returns the configured registry or the process-global
// default.
func (o Options) registry() *ReferenceRegistry {
	if o.Registry != nil {
		return o.Registry
	}
	return DefaultRegistry
}
