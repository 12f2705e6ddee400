package vgraph

// Feature is a single optional target-runtime idiom the serializer may
// choose to emit. Disabling a feature forces the serializer onto an
// older, more compatible emission strategy, or to fail with
// FeatureDisabledError if no such strategy exists for the value at hand.
type Feature uint32

const (
	FeatureAggregateError Feature = 1 << iota
	FeatureArrayPrototypeValues
	FeatureArrowFunction
	FeatureBigInt
	FeatureBigIntTypedArray
	FeatureErrorPrototypeStack
	FeatureMap
	FeatureMethodShorthand
	FeatureObjectAssign
	FeaturePromise
	FeatureSet
	FeatureSymbol
	FeatureTypedArray
	FeatureWebAPI
)

// featureAll is the bitwise-or of every known feature, forming the
// baseline "everything enabled" mask.
const featureAll = FeatureAggregateError | FeatureArrayPrototypeValues |
	FeatureArrowFunction | FeatureBigInt | FeatureBigIntTypedArray |
	FeatureErrorPrototypeStack | FeatureMap | FeatureMethodShorthand |
	FeatureObjectAssign | FeaturePromise | FeatureSet | FeatureSymbol |
	FeatureTypedArray | FeatureWebAPI

// featureNames backs Feature.String and ParseFeatureName; the latter
// resolves the names given to the CLI's --disable flag and the config
// file.
var featureNames = []struct {
	bit  Feature
	name string
}{
	{FeatureAggregateError, "AggregateError"},
	{FeatureArrayPrototypeValues, "ArrayPrototypeValues"},
	{FeatureArrowFunction, "ArrowFunction"},
	{FeatureBigInt, "BigInt"},
	{FeatureBigIntTypedArray, "BigIntTypedArray"},
	{FeatureErrorPrototypeStack, "ErrorPrototypeStack"},
	{FeatureMap, "Map"},
	{FeatureMethodShorthand, "MethodShorthand"},
	{FeatureObjectAssign, "ObjectAssign"},
	{FeaturePromise, "Promise"},
	{FeatureSet, "Set"},
	{FeatureSymbol, "Symbol"},
	{FeatureTypedArray, "TypedArray"},
	{FeatureWebAPI, "WebAPI"},
}

// ParseFeatureName resolves a feature's name (as rendered by String,
// e.g. "BigInt") back to its bit, for config files and CLI flags that
// name features by string rather than bitmask.
func ParseFeatureName(name string) (Feature, bool) {
	for _, n := range featureNames {
		if n.name == name {
			return n.bit, true
		}
	}
	return 0, false
}

// String renders the set bits of f as a "|"-joined name list, used for
// diagnostics.
func (f Feature) String() string {
	if f == 0 {
		return "none"
	}
	var out string
	for _, n := range featureNames {
		if f&n.bit != 0 {
			if out != "" {
				out += "|"
			}
			out += n.name
		}
	}
	if out == "" {
		return "unknown"
	}
	return out
}

// FeatureMask is the computed, effective feature mask for one
// serialization: featureAll with the caller's disabled bits cleared.
type FeatureMask struct {
	enabled Feature
}

// NewFeatureSet computes the enabled set from a disabled-features mask,
// per §4.1: enabled = ALL &^ disabled.
func NewFeatureSet(disabled Feature) FeatureMask {
	return FeatureMask{enabled: featureAll &^ disabled}
}

// Has reports whether every bit in want is present in the enabled set.
func (fs FeatureMask) Has(want Feature) bool {
	return fs.enabled&want == want
}

// Enabled returns the full enabled bitmask.
func (fs FeatureMask) Enabled() Feature {
	return fs.enabled
}
