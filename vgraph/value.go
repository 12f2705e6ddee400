package vgraph

import "time"

// Kind tags the shape of a Value, the host-side graph the parser walks.
// Go has no single dynamic "any JS value" runtime type, so the input
// graph is expressed as this tagged-constructor family instead — the
// same shape as the teacher's GValue/GType pair, generalized to the
// wider set of constructors this spec recognizes.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindBigInt
	KindString
	KindArray
	KindObject
	KindNullProto // Object.create(null)
	KindDate
	KindRegExp
	KindError
	KindAggregateError
	KindBoxedBoolean
	KindBoxedNumber
	KindBoxedString
	KindURL
	KindURLSearchParams
	KindBlob
	KindFile
	KindHeaders
	KindFormData
	KindRequest
	KindResponse
	KindEvent
	KindCustomEvent
	KindDOMException
	KindArrayBuffer
	KindTypedArray
	KindDataView
	KindMap
	KindSet
	KindPromise
	KindWellKnownSymbol
	KindSymbol
	KindPlugin
)

// Value is any node of the input graph the parser walks. A Value is
// identified by reference equality (Go pointer identity for composite
// kinds): the same *Value reached twice through different paths is the
// alias/cycle case the parser must detect.
type Value struct {
	Kind Kind

	Bool   bool
	Number float64
	BigInt string // decimal digits, sign-prefixed; no "n" suffix
	Str    string
	Symbol string // WellKnownSymbol name, or description for KindSymbol

	// Array / iterable-drained data.
	Elements []*Value
	Holes    map[int]bool // index -> true for an empty array slot

	// Object / plain-record data, insertion order preserved.
	Keys   []string
	Fields map[string]*Value

	// SymbolIterator marks that this object's property record should
	// carry the iterator-installation sentinel; Iterated holds the
	// pre-drained items when set.
	HasSymbolIterator bool
	Iterated          []*Value

	Flags ObjectFlags

	// Date
	Time time.Time

	// RegExp
	Source string
	Flags_ string // regex flags, e.g. "gi" (named Flags_ to avoid clash with ObjectFlags)

	// Error / AggregateError
	ErrName    string
	Message    string
	Stack      string
	Cause      *Value
	Errors     []*Value // AggregateError only
	ErrOptions *Value   // extra own-enumerable properties, as a plain object

	// Boxed primitives reuse Bool/Number/Str above.

	// URL / URLSearchParams
	Href string

	// Blob / File
	MIMEType     string
	FileName     string
	LastModified int64
	Bytes        []byte

	// Headers / FormData: ordered key/value string pairs (FormData
	// values may themselves be Blob/File Values, hence FormEntries).
	HeaderPairs [][2]string
	FormEntries []FormEntry

	// Request / Response
	URLOrStatus string // Request.url or Response.status, stringified
	Method      string
	StatusCode  int
	StatusText  string
	Headers     *Value
	Body        *Value // parsed as whatever Value it is; not converted to an ArrayBuffer

	// Event / CustomEvent
	EventType  string
	Detail     *Value
	Bubbles    bool
	Cancelable bool

	// DOMException
	ExceptionName    string
	ExceptionMessage string

	// ArrayBuffer / TypedArray / DataView
	Buffer      *Value // backing ArrayBuffer, shared by id across views
	ByteOffset  int
	ByteLength  int
	ArrayLength int
	CtorName    string // "Uint8Array", "Float64Array", "BigInt64Array", ...

	// Map / Set
	Entries []MapEntryValue
	SetVals []*Value

	// Promise
	Settled    bool
	Rejected   bool
	Resolution *Value

	// Plugin
	PluginTag     string
	PluginPayload any
}

// FormEntry is one FormData field; Value may be a string Value or a
// File/Blob Value.
type FormEntry struct {
	Key   string
	Value *Value
}

// MapEntryValue is one entry of a KindMap Value, preserving insertion
// order (Go maps don't).
type MapEntryValue struct {
	Key *Value
	Val *Value
}

// ObjectFlags is the four-value integrity-state enumeration from §3,
// applied after all mutations that affect the object.
type ObjectFlags uint8

const (
	FlagsNone ObjectFlags = iota
	FlagsSealed
	FlagsFrozen
	FlagsNonExtensible
)

// Constructors. Each mirrors one of the teacher's GValue constructors
// in shape (a tiny function building a tagged struct literal), widened
// to this spec's larger tag set.

func Undefined() *Value              { return &Value{Kind: KindUndefined} }
func Null() *Value                   { return &Value{Kind: KindNull} }
func Bool(b bool) *Value             { return &Value{Kind: KindBool, Bool: b} }
func Number(n float64) *Value        { return &Value{Kind: KindNumber, Number: n} }
func BigIntVal(digits string) *Value { return &Value{Kind: KindBigInt, BigInt: digits} }
func Str(s string) *Value            { return &Value{Kind: KindString, Str: s} }

func Array(elements []*Value, holes map[int]bool) *Value {
	return &Value{Kind: KindArray, Elements: elements, Holes: holes}
}

func Object(keys []string, fields map[string]*Value, flags ObjectFlags) *Value {
	return &Value{Kind: KindObject, Keys: keys, Fields: fields, Flags: flags}
}

func NullProtoObject(keys []string, fields map[string]*Value, flags ObjectFlags) *Value {
	return &Value{Kind: KindNullProto, Keys: keys, Fields: fields, Flags: flags}
}

func DateVal(t time.Time) *Value { return &Value{Kind: KindDate, Time: t} }

func RegExpVal(source, flags string) *Value {
	return &Value{Kind: KindRegExp, Source: source, Flags_: flags}
}

func ErrorVal(name, message, stack string, cause *Value, options *Value) *Value {
	return &Value{Kind: KindError, ErrName: name, Message: message, Stack: stack, Cause: cause, ErrOptions: options}
}

func AggregateErrorVal(message, stack string, errs []*Value, options *Value) *Value {
	return &Value{Kind: KindAggregateError, Message: message, Stack: stack, Errors: errs, ErrOptions: options}
}

func BoxedBoolean(b bool) *Value   { return &Value{Kind: KindBoxedBoolean, Bool: b} }
func BoxedNumber(n float64) *Value { return &Value{Kind: KindBoxedNumber, Number: n} }
func BoxedString(s string) *Value  { return &Value{Kind: KindBoxedString, Str: s} }

func URLVal(href string) *Value             { return &Value{Kind: KindURL, Href: href} }
func URLSearchParamsVal(href string) *Value { return &Value{Kind: KindURLSearchParams, Href: href} }

func BlobVal(bytes []byte, mime string) *Value {
	return &Value{Kind: KindBlob, Bytes: bytes, MIMEType: mime}
}

func FileVal(bytes []byte, name, mime string, lastModified int64) *Value {
	return &Value{Kind: KindFile, Bytes: bytes, FileName: name, MIMEType: mime, LastModified: lastModified}
}

func HeadersVal(pairs [][2]string) *Value { return &Value{Kind: KindHeaders, HeaderPairs: pairs} }

func FormDataVal(entries []FormEntry) *Value { return &Value{Kind: KindFormData, FormEntries: entries} }

func RequestVal(url, method string, headers *Value, body *Value) *Value {
	return &Value{Kind: KindRequest, URLOrStatus: url, Method: method, Headers: headers, Body: body}
}

func ResponseVal(status int, statusText string, headers *Value, body *Value) *Value {
	return &Value{Kind: KindResponse, StatusCode: status, StatusText: statusText, Headers: headers, Body: body}
}

func EventVal(typ string, bubbles, cancelable bool) *Value {
	return &Value{Kind: KindEvent, EventType: typ, Bubbles: bubbles, Cancelable: cancelable}
}

func CustomEventVal(typ string, detail *Value, bubbles, cancelable bool) *Value {
	return &Value{Kind: KindCustomEvent, EventType: typ, Detail: detail, Bubbles: bubbles, Cancelable: cancelable}
}

func DOMExceptionVal(message, name string) *Value {
	return &Value{Kind: KindDOMException, ExceptionMessage: message, ExceptionName: name}
}

func ArrayBufferVal(bytes []byte) *Value { return &Value{Kind: KindArrayBuffer, Bytes: bytes} }

func TypedArrayVal(buffer *Value, ctorName string, byteOffset, length int) *Value {
	return &Value{Kind: KindTypedArray, Buffer: buffer, CtorName: ctorName, ByteOffset: byteOffset, ArrayLength: length}
}

func DataViewVal(buffer *Value, byteOffset, byteLength int) *Value {
	return &Value{Kind: KindDataView, Buffer: buffer, ByteOffset: byteOffset, ByteLength: byteLength}
}

func MapVal(entries []MapEntryValue) *Value { return &Value{Kind: KindMap, Entries: entries} }
func SetVal(vals []*Value) *Value           { return &Value{Kind: KindSet, SetVals: vals} }

func PromiseVal(settled, rejected bool, resolution *Value) *Value {
	return &Value{Kind: KindPromise, Settled: settled, Rejected: rejected, Resolution: resolution}
}

func WellKnownSymbolVal(name string) *Value { return &Value{Kind: KindWellKnownSymbol, Symbol: name} }
func SymbolVal(description string) *Value   { return &Value{Kind: KindSymbol, Symbol: description} }

func PluginVal(tag string, payload any) *Value {
	return &Value{Kind: KindPlugin, PluginTag: tag, PluginPayload: payload}
}

// IsPrimitive reports whether v's kind never needs an id (never a
// target of aliasing/cycles): undefined, null, bool, number, bigint,
// string, and well-known symbols are recognized-shape constants the
// parser never registers a stack-depth entry for.
func (v *Value) IsPrimitive() bool {
	switch v.Kind {
	case KindUndefined, KindNull, KindBool, KindNumber, KindBigInt, KindString, KindWellKnownSymbol:
		return true
	default:
		return false
	}
}
