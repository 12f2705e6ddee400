package vgraph

import (
	"context"
	"strconv"

	json "github.com/goccy/go-json"
)

// jsonNode is the JSON-safe mirror of Node (§6's "Persisted state
// layout"): every Node pointer/slice field is replaced by its jsonNode
// equivalent, and byte slices are base64-encoded by goccy/go-json's
// default []byte handling. Apart from `t`, `i` and `s`, field names
// are descriptive rather than the spec's single-letter shorthand
// (`t,i,s,l,c,m,p,e,a,f,b,o`) — §9's open question about the `c`/`s`
// field-spelling inconsistency is resolved here by giving the other
// fields their own unambiguous names instead of reusing a letter
// across incompatible tags.
//
// Grounded on the teacher's BridgeOpts/fromJSONValue/toJSONValue
// (glyph/json_bridge.go): a plain recursive struct-to-JSON mirror
// walked by hand rather than relying on reflection-based tags for
// every shape, because (like GValue) Node's sparse per-tag payload
// isn't a shape `encoding/json` can round-trip automatically without
// this kind of explicit mirror. Marshaling itself goes through
// goccy/go-json rather than encoding/json, in place of the
// unresolvable teacher dependency this spec's JSON bridge needed
// (see DESIGN.md).
type jsonNode struct {
	Tag int `json:"t"`
	ID  int `json:"i,omitempty"`

	Number *float64 `json:"num,omitempty"`
	Str    string   `json:"s,omitempty"`

	RefID  *int   `json:"refId,omitempty"`
	RefTag string `json:"refTag,omitempty"`

	Length   int                  `json:"len,omitempty"`
	Elements map[string]*jsonNode `json:"elems,omitempty"`

	Props *jsonPropertyRecord `json:"props,omitempty"`
	Flags int                 `json:"flags,omitempty"`

	TimeMillis *int64 `json:"timeMs,omitempty"`

	RegExpFlags string `json:"reFlags,omitempty"`

	ErrMessage string              `json:"errMsg,omitempty"`
	ErrStack   string              `json:"errStack,omitempty"`
	ErrCause   *jsonNode           `json:"errCause,omitempty"`
	ErrErrors  []*jsonNode         `json:"errErrors,omitempty"`
	ErrOptions *jsonPropertyRecord `json:"errOpts,omitempty"`

	BoxedKind *int     `json:"boxedKind,omitempty"`
	BoxedStr  string   `json:"boxedStr,omitempty"`
	BoxedNum  *float64 `json:"boxedNum,omitempty"`
	BoxedBool *bool    `json:"boxedBool,omitempty"`

	Href string `json:"href,omitempty"`

	MIMEType     string    `json:"mime,omitempty"`
	FileName     string    `json:"fileName,omitempty"`
	LastModified int64     `json:"lastModified,omitempty"`
	BodyBuffer   *jsonNode `json:"bodyBuffer,omitempty"`

	Plain *jsonPlainRecord `json:"plain,omitempty"`

	Method     string    `json:"method,omitempty"`
	StatusCode int       `json:"status,omitempty"`
	StatusText string    `json:"statusText,omitempty"`
	ReqHeaders *jsonNode `json:"reqHeaders,omitempty"`
	ReqBody    *jsonNode `json:"reqBody,omitempty"`

	EventType  string    `json:"eventType,omitempty"`
	Detail     *jsonNode `json:"detail,omitempty"`
	Bubbles    bool      `json:"bubbles,omitempty"`
	Cancelable bool      `json:"cancelable,omitempty"`

	Bytes []byte `json:"bytes,omitempty"`

	CtorName   string    `json:"ctor,omitempty"`
	Buffer     *jsonNode `json:"buffer,omitempty"`
	ByteOffset int       `json:"byteOffset,omitempty"`
	ByteLength int       `json:"byteLength,omitempty"`

	MapEntries []jsonMapEntry `json:"mapEntries,omitempty"`
	SetElems   []*jsonNode    `json:"setElems,omitempty"`

	Resolved   *bool     `json:"resolved,omitempty"`
	Resolution *jsonNode `json:"resolution,omitempty"`

	SymbolName string `json:"symbolName,omitempty"`

	PluginTag     string `json:"pluginTag,omitempty"`
	PluginPayload any    `json:"pluginPayload,omitempty"`

	StreamSID int `json:"streamSid,omitempty"`
}

type jsonPropertyRecord struct {
	Keys          []string    `json:"keys,omitempty"`
	Values        []*jsonNode `json:"values,omitempty"`
	HasSymbolIter bool        `json:"hasSymbolIter,omitempty"`
	IterValue     *jsonNode   `json:"iterValue,omitempty"`
}

type jsonPlainRecord struct {
	Keys   []string    `json:"keys,omitempty"`
	Values []*jsonNode `json:"values,omitempty"`
}

type jsonMapEntry struct {
	Key *jsonNode `json:"key"`
	Val *jsonNode `json:"val"`
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
func int64Ptr(i int64) *int64     { return &i }
func boolPtr(b bool) *bool        { return &b }

func nodeToJSON(n *Node) *jsonNode {
	if n == nil {
		return nil
	}
	out := &jsonNode{
		Tag: int(n.Tag), ID: n.ID, Str: n.Str,
		RefTag: n.RefTag, Length: n.Length, Flags: int(n.Flags),
		RegExpFlags: n.RegExpFlags, ErrMessage: n.ErrMessage, ErrStack: n.ErrStack,
		ErrCause: nodeToJSON(n.ErrCause), ErrOptions: propRecordToJSON(n.ErrOptions),
		BoxedStr: n.BoxedStr, Href: n.Href, MIMEType: n.MIMEType, FileName: n.FileName,
		LastModified: n.LastModified, BodyBuffer: nodeToJSON(n.BodyBuffer),
		Plain: plainRecordToJSON(n.Plain), Method: n.Method, StatusCode: n.StatusCode,
		StatusText: n.StatusText, ReqHeaders: nodeToJSON(n.ReqHeaders), ReqBody: nodeToJSON(n.ReqBody),
		EventType: n.EventType, Detail: nodeToJSON(n.Detail), Bubbles: n.Bubbles,
		Cancelable: n.Cancelable, Bytes: n.Bytes, CtorName: n.CtorName,
		Buffer: nodeToJSON(n.Buffer), ByteOffset: n.ByteOffset, ByteLength: n.ByteLength,
		SetElems: nodesToJSON(n.SetElems), Resolution: nodeToJSON(n.Resolution),
		SymbolName: n.SymbolName, PluginTag: n.PluginTag, PluginPayload: n.PluginPayload,
		StreamSID: n.StreamSID, Props: propRecordToJSON(n.Props),
	}
	if n.Tag != TagIndexedValue {
		out.Number = numberPtrIfRelevant(n)
	} else {
		out.RefID = intPtr(n.RefID)
	}
	if n.Tag == TagBoxed {
		out.BoxedKind = intPtr(int(n.BoxedKind))
		out.BoxedNum = floatPtr(n.BoxedNum)
		out.BoxedBool = boolPtr(n.BoxedBool)
	}
	if n.Tag == TagDate {
		out.TimeMillis = int64Ptr(n.TimeMillis)
	}
	if n.Tag == TagPromise {
		out.Resolved = boolPtr(n.Resolved)
	}
	if len(n.ErrErrors) > 0 {
		out.ErrErrors = nodesToJSON(n.ErrErrors)
	}
	if len(n.MapEntries) > 0 {
		out.MapEntries = make([]jsonMapEntry, len(n.MapEntries))
		for i, e := range n.MapEntries {
			out.MapEntries[i] = jsonMapEntry{Key: nodeToJSON(e.Key), Val: nodeToJSON(e.Val)}
		}
	}
	if n.Elements != nil {
		out.Elements = make(map[string]*jsonNode, len(n.Elements))
		for idx, c := range n.Elements {
			out.Elements[strconv.Itoa(idx)] = nodeToJSON(c)
		}
	}
	return out
}

// numberPtrIfRelevant avoids emitting a spurious `"num":0` for every
// non-Number tag, which has no use for the field at all.
func numberPtrIfRelevant(n *Node) *float64 {
	if n.Tag == TagNumber {
		return floatPtr(n.Number)
	}
	return nil
}

func nodesToJSON(ns []*Node) []*jsonNode {
	if ns == nil {
		return nil
	}
	out := make([]*jsonNode, len(ns))
	for i, n := range ns {
		out[i] = nodeToJSON(n)
	}
	return out
}

func propRecordToJSON(r *PropertyRecord) *jsonPropertyRecord {
	if r == nil {
		return nil
	}
	return &jsonPropertyRecord{
		Keys: r.Keys, Values: nodesToJSON(r.Values),
		HasSymbolIter: r.HasSymbolIter, IterValue: nodeToJSON(r.IterValue),
	}
}

func plainRecordToJSON(r *PlainRecord) *jsonPlainRecord {
	if r == nil {
		return nil
	}
	return &jsonPlainRecord{Keys: r.Keys, Values: nodesToJSON(r.Values)}
}

// --- jsonNode -> Node ---

func jsonToNode(j *jsonNode) (*Node, error) {
	if j == nil {
		return nil, nil
	}
	tag := NodeTag(j.Tag)
	n := &Node{
		Tag: tag, ID: j.ID, Str: j.Str, RefTag: j.RefTag, Length: j.Length,
		Flags: ObjectFlags(j.Flags), RegExpFlags: j.RegExpFlags,
		ErrMessage: j.ErrMessage, ErrStack: j.ErrStack,
		BoxedStr: j.BoxedStr, Href: j.Href, MIMEType: j.MIMEType, FileName: j.FileName,
		LastModified: j.LastModified, Method: j.Method, StatusCode: j.StatusCode,
		StatusText: j.StatusText, EventType: j.EventType, Bubbles: j.Bubbles,
		Cancelable: j.Cancelable, Bytes: j.Bytes, CtorName: j.CtorName,
		ByteOffset: j.ByteOffset, ByteLength: j.ByteLength, SymbolName: j.SymbolName,
		PluginTag: j.PluginTag, PluginPayload: j.PluginPayload, StreamSID: j.StreamSID,
	}
	var err error
	if n.ErrCause, err = jsonToNode(j.ErrCause); err != nil {
		return nil, err
	}
	if n.BodyBuffer, err = jsonToNode(j.BodyBuffer); err != nil {
		return nil, err
	}
	if n.ReqHeaders, err = jsonToNode(j.ReqHeaders); err != nil {
		return nil, err
	}
	if n.ReqBody, err = jsonToNode(j.ReqBody); err != nil {
		return nil, err
	}
	if n.Detail, err = jsonToNode(j.Detail); err != nil {
		return nil, err
	}
	if n.Buffer, err = jsonToNode(j.Buffer); err != nil {
		return nil, err
	}
	if n.Resolution, err = jsonToNode(j.Resolution); err != nil {
		return nil, err
	}
	if n.Props, err = jsonToPropRecord(j.Props); err != nil {
		return nil, err
	}
	if n.ErrOptions, err = jsonToPropRecord(j.ErrOptions); err != nil {
		return nil, err
	}
	if n.Plain, err = jsonToPlainRecord(j.Plain); err != nil {
		return nil, err
	}
	if n.ErrErrors, err = jsonToNodes(j.ErrErrors); err != nil {
		return nil, err
	}
	if n.SetElems, err = jsonToNodes(j.SetElems); err != nil {
		return nil, err
	}
	if tag == TagIndexedValue {
		if j.RefID == nil {
			return nil, &MalformedIRError{Detail: "IndexedValue missing refId"}
		}
		n.RefID = *j.RefID
	}
	if j.Number != nil {
		n.Number = *j.Number
	}
	if j.BoxedKind != nil {
		n.BoxedKind = NodeTag(*j.BoxedKind)
	}
	if j.BoxedNum != nil {
		n.BoxedNum = *j.BoxedNum
	}
	if j.BoxedBool != nil {
		n.BoxedBool = *j.BoxedBool
	}
	if j.TimeMillis != nil {
		n.TimeMillis = *j.TimeMillis
	}
	if j.Resolved != nil {
		n.Resolved = *j.Resolved
	}
	for _, e := range j.MapEntries {
		k, err := jsonToNode(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := jsonToNode(e.Val)
		if err != nil {
			return nil, err
		}
		n.MapEntries = append(n.MapEntries, MapEntryNode{Key: k, Val: v})
	}
	if j.Elements != nil {
		n.Elements = make(map[int]*Node, len(j.Elements))
		for k, v := range j.Elements {
			idx, err := strconv.Atoi(k)
			if err != nil {
				return nil, &MalformedIRError{Detail: "non-integer array element key " + k}
			}
			child, err := jsonToNode(v)
			if err != nil {
				return nil, err
			}
			n.Elements[idx] = child
		}
	}
	return n, nil
}

func jsonToNodes(js []*jsonNode) ([]*Node, error) {
	if js == nil {
		return nil, nil
	}
	out := make([]*Node, len(js))
	for i, j := range js {
		n, err := jsonToNode(j)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func jsonToPropRecord(j *jsonPropertyRecord) (*PropertyRecord, error) {
	if j == nil {
		return nil, nil
	}
	values, err := jsonToNodes(j.Values)
	if err != nil {
		return nil, err
	}
	iter, err := jsonToNode(j.IterValue)
	if err != nil {
		return nil, err
	}
	return &PropertyRecord{Keys: j.Keys, Values: values, HasSymbolIter: j.HasSymbolIter, IterValue: iter}, nil
}

func jsonToPlainRecord(j *jsonPlainRecord) (*PlainRecord, error) {
	if j == nil {
		return nil, nil
	}
	values, err := jsonToNodes(j.Values)
	if err != nil {
		return nil, err
	}
	return &PlainRecord{Keys: j.Keys, Values: values}, nil
}

// --- Public operations (§6) ---

// ToJSON parses v and marshals its IR to JSON bytes.
func ToJSON(v *Value, opts Options) ([]byte, error) {
	p := NewParser(opts)
	n, err := p.Parse(v)
	if err != nil {
		return nil, err
	}
	p.Commit()
	return json.Marshal(nodeToJSON(n))
}

// ToJSONAsync is ToJSON's async-parser counterpart.
func ToJSONAsync(ctx context.Context, v *Value, opts Options) ([]byte, error) {
	p := NewAsyncParser(opts)
	n, err := p.ParseAsync(ctx, v)
	if err != nil {
		return nil, err
	}
	p.Commit()
	return json.Marshal(nodeToJSON(n))
}

// FromJSON reconstructs a Node tree from a toJSON document.
func FromJSON(data []byte) (*Node, error) {
	var j jsonNode
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, &MalformedIRError{Detail: err.Error()}
	}
	return jsonToNode(&j)
}

// CompileJSON reconstructs a Node tree from a toJSON document and
// serializes it in self-contained mode, failing with
// MalformedIRError on a document that doesn't round-trip.
func CompileJSON(data []byte, opts Options) (string, error) {
	n, err := FromJSON(data)
	if err != nil {
		return "", err
	}
	return NewSelfContainedSerializer(opts).Serialize(n)
}
