package vgraph

// Plugin is the third-party extension point named in §4.9 and the
// options table in §6. A plugin claims a Value via Test, turns it into
// a serializable payload via Parse, and turns that payload back into
// emitted source text via Serialize. Concrete plugins are out of
// scope (§1); only the interface is specified here.
//
// Grounded on the teacher's interface-based extension points (the
// BlobRegistry interface in glyph/blob.go): a small named-method
// interface a caller implements and registers, rather than a callback
// struct.
type Plugin interface {
	// Tag identifies this plugin's IR payloads across parse/serialize.
	Tag() string

	// Test reports whether this plugin claims v. The parser tries
	// plugins, in registration order, only after its built-in dispatch
	// (§4.4) has exhausted every recognized constructor.
	Test(v *Value) bool

	// Parse turns a claimed Value into a JSON-safe payload stored on
	// the resulting Plugin node.
	Parse(v *Value) (any, error)

	// Serialize turns a Plugin node's payload back into a source-text
	// expression. Returning an error here surfaces as
	// MissingPluginError only when no plugin claims the tag at all;
	// a plugin that claims the tag but fails to serialize returns its
	// own error directly.
	Serialize(payload any) (string, error)

	// Deserialize reconstructs the original handle from payload, used
	// by deserialize/fromJSON.
	Deserialize(payload any) (any, error)
}

// findPlugin returns the first plugin in plugins claiming v, or nil.
func findPlugin(plugins []Plugin, v *Value) Plugin {
	for _, p := range plugins {
		if p.Test(v) {
			return p
		}
	}
	return nil
}

// findPluginByTag returns the plugin registered for tag, or nil.
func findPluginByTag(plugins []Plugin, tag string) Plugin {
	for _, p := range plugins {
		if p.Tag() == tag {
			return p
		}
	}
	return nil
}
