package vgraph

import (
	"math"
)

// Parser walks an input Value graph into Node IR (§4.4). It assigns a
// stable id to every non-primitive value in first-seen order and
// detects aliases/cycles by Go pointer identity: the same *Value
// reached a second time yields an IndexedValue node instead of being
// walked again.
//
// Grounded on the teacher's Parser/parseValue dispatch switch
// (glyph/parse.go), adapted from text-token dispatch to value-kind
// dispatch, plus the two-pass counting-walk idea in
// glyph/auto_pool.go's AutoInterner (discover-then-commit in two
// passes) for the two-pass deferred-property extraction §4.4.1 calls
// for.
type Parser struct {
	opts     Options
	features FeatureMask
	ids      map[*Value]int
	nextID   int
}

// NewParser creates a synchronous parser. The synchronous variant
// rejects Promise values outright (§1): a value graph containing one
// can only be parsed with ParseAsync.
func NewParser(opts Options) *Parser {
	p := &Parser{
		opts:     opts,
		features: opts.featureSet(),
		ids:      make(map[*Value]int),
		nextID:   0,
	}
	if opts.Refs != nil {
		p.nextID = opts.Refs.Reserve(opts.ScopeID)
	}
	return p
}

// Commit advances this parser's cross-reference table (if any) to the
// id counter this parse produced, so the next parse in the same scope
// extends rather than collides with these ids (§3).
func (p *Parser) Commit() {
	if p.opts.Refs != nil {
		p.opts.Refs.Commit(p.opts.ScopeID, p.nextID)
	}
}

// Parse walks root and returns its IR, or the first UnsupportedType /
// FeatureDisabled error encountered (§7 propagation rule).
func (p *Parser) Parse(root *Value) (*Node, error) {
	return p.parseValue(root)
}

// assignID returns (id, true) the first time v is seen, and (id,
// false) on every subsequent visit — the Invariant in §3 that every
// non-primitive maps to exactly one id.
func (p *Parser) assignID(v *Value) (int, bool) {
	if id, ok := p.ids[v]; ok {
		return id, false
	}
	id := p.nextID
	p.nextID++
	p.ids[v] = id
	return id, true
}

func (p *Parser) parseValue(v *Value) (*Node, error) {
	if v == nil {
		return &Node{Tag: TagNull, ID: -1}, nil
	}

	if v.IsPrimitive() {
		return p.parsePrimitive(v)
	}

	// Dispatch order step 1: registered external reference (§4.4).
	if tag, ok := p.opts.registry().TagFor(v); ok {
		id, first := p.assignID(v)
		if !first {
			return NewIndexedValue(id), nil
		}
		return &Node{Tag: TagReference, ID: id, RefTag: tag}, nil
	}

	id, first := p.assignID(v)
	if !first {
		return NewIndexedValue(id), nil
	}

	switch v.Kind {
	case KindArray:
		return p.parseArray(v, id)
	case KindObject, KindNullProto:
		return p.parseObject(v, id)
	case KindDate:
		return &Node{Tag: TagDate, ID: id, TimeMillis: v.Time.UnixMilli()}, nil
	case KindRegExp:
		return &Node{Tag: TagRegExp, ID: id, Str: v.Source, RegExpFlags: v.Flags_}, nil
	case KindArrayBuffer:
		return &Node{Tag: TagArrayBuffer, ID: id, Bytes: v.Bytes}, nil
	case KindTypedArray:
		if !p.features.Has(FeatureTypedArray) {
			return nil, &FeatureDisabledError{Feature: FeatureTypedArray, Kind: "TypedArray"}
		}
		isBigInt := v.CtorName == "BigInt64Array" || v.CtorName == "BigUint64Array"
		return p.parseTypedArray(v, id, isBigInt)
	case KindDataView:
		return p.parseDataView(v, id)
	case KindMap:
		if !p.features.Has(FeatureMap) {
			return nil, &FeatureDisabledError{Feature: FeatureMap, Kind: "Map"}
		}
		return p.parseMap(v, id)
	case KindSet:
		if !p.features.Has(FeatureSet) {
			return nil, &FeatureDisabledError{Feature: FeatureSet, Kind: "Set"}
		}
		return p.parseSet(v, id)
	case KindError:
		return p.parseError(v, id)
	case KindAggregateError:
		if !p.features.Has(FeatureAggregateError) {
			return nil, &FeatureDisabledError{Feature: FeatureAggregateError, Kind: "AggregateError"}
		}
		return p.parseAggregateError(v, id)
	case KindBoxedBoolean:
		return &Node{Tag: TagBoxed, ID: id, BoxedKind: TagTrue, BoxedBool: v.Bool}, nil
	case KindBoxedNumber:
		return &Node{Tag: TagBoxed, ID: id, BoxedKind: TagNumber, BoxedNum: v.Number}, nil
	case KindBoxedString:
		return &Node{Tag: TagBoxed, ID: id, BoxedKind: TagString, BoxedStr: v.Str}, nil
	case KindURL:
		if !p.features.Has(FeatureWebAPI) {
			return nil, &FeatureDisabledError{Feature: FeatureWebAPI, Kind: "URL"}
		}
		return &Node{Tag: TagURL, ID: id, Href: v.Href}, nil
	case KindURLSearchParams:
		if !p.features.Has(FeatureWebAPI) {
			return nil, &FeatureDisabledError{Feature: FeatureWebAPI, Kind: "URLSearchParams"}
		}
		return &Node{Tag: TagURLSearchParams, ID: id, Href: v.Href}, nil
	case KindBlob:
		if !p.features.Has(FeatureWebAPI) {
			return nil, &FeatureDisabledError{Feature: FeatureWebAPI, Kind: "Blob"}
		}
		bufNode, err := p.parseValue(p.bodyBufferValue(v))
		if err != nil {
			return nil, err
		}
		return &Node{Tag: TagBlob, ID: id, MIMEType: v.MIMEType, BodyBuffer: bufNode}, nil
	case KindFile:
		if !p.features.Has(FeatureWebAPI) {
			return nil, &FeatureDisabledError{Feature: FeatureWebAPI, Kind: "File"}
		}
		bufNode, err := p.parseValue(p.bodyBufferValue(v))
		if err != nil {
			return nil, err
		}
		return &Node{Tag: TagFile, ID: id, MIMEType: v.MIMEType, FileName: v.FileName, LastModified: v.LastModified, BodyBuffer: bufNode}, nil
	case KindHeaders:
		if !p.features.Has(FeatureWebAPI) {
			return nil, &FeatureDisabledError{Feature: FeatureWebAPI, Kind: "Headers"}
		}
		return p.parseHeaders(v, id)
	case KindFormData:
		if !p.features.Has(FeatureWebAPI) {
			return nil, &FeatureDisabledError{Feature: FeatureWebAPI, Kind: "FormData"}
		}
		return p.parseFormData(v, id)
	case KindRequest:
		if !p.features.Has(FeatureWebAPI) {
			return nil, &FeatureDisabledError{Feature: FeatureWebAPI, Kind: "Request"}
		}
		return p.parseRequest(v, id)
	case KindResponse:
		if !p.features.Has(FeatureWebAPI) {
			return nil, &FeatureDisabledError{Feature: FeatureWebAPI, Kind: "Response"}
		}
		return p.parseResponse(v, id)
	case KindEvent:
		if !p.features.Has(FeatureWebAPI) {
			return nil, &FeatureDisabledError{Feature: FeatureWebAPI, Kind: "Event"}
		}
		return &Node{Tag: TagEvent, ID: id, EventType: v.EventType, Bubbles: v.Bubbles, Cancelable: v.Cancelable}, nil
	case KindCustomEvent:
		if !p.features.Has(FeatureWebAPI) {
			return nil, &FeatureDisabledError{Feature: FeatureWebAPI, Kind: "CustomEvent"}
		}
		return p.parseCustomEvent(v, id)
	case KindDOMException:
		if !p.features.Has(FeatureWebAPI) {
			return nil, &FeatureDisabledError{Feature: FeatureWebAPI, Kind: "DOMException"}
		}
		return &Node{Tag: TagDOMException, ID: id, ErrMessage: v.ExceptionMessage, Str: v.ExceptionName}, nil
	case KindSymbol:
		if !p.features.Has(FeatureSymbol) {
			return nil, &FeatureDisabledError{Feature: FeatureSymbol, Kind: "Symbol"}
		}
		// §9 open question: the sync parser treats Symbol as boxed,
		// which is not round-trippable outside the reference registry.
		// Preserved here as a Boxed-string node carrying the
		// description, matching that documented (if lossy) behavior.
		return &Node{Tag: TagBoxed, ID: id, BoxedKind: TagString, BoxedStr: v.Symbol}, nil
	case KindPromise:
		return nil, &UnsupportedTypeError{Kind: "Promise (use ParseAsync)"}
	case KindPlugin:
		return p.parsePlugin(v, id)
	default:
		return p.parseFallback(v, id)
	}
}

// parseFallback handles an unrecognized Kind: it tries the plugin
// list, and with no matching plugin yields undefined, or
// UnsupportedTypeError when ThrowOnUnsupported is set.
func (p *Parser) parseFallback(v *Value, id int) (*Node, error) {
	if plug := findPlugin(p.opts.Plugins, v); plug != nil {
		payload, err := plug.Parse(v)
		if err != nil {
			return nil, err
		}
		return &Node{Tag: TagPlugin, ID: id, PluginTag: plug.Tag(), PluginPayload: payload}, nil
	}
	if !p.opts.ThrowOnUnsupported {
		return &Node{Tag: TagUndefined, ID: -1}, nil
	}
	return nil, &UnsupportedTypeError{Kind: "unrecognized value"}
}

func (p *Parser) parsePrimitive(v *Value) (*Node, error) {
	switch v.Kind {
	case KindUndefined:
		return &Node{Tag: TagUndefined, ID: -1}, nil
	case KindNull:
		return &Node{Tag: TagNull, ID: -1}, nil
	case KindBool:
		if v.Bool {
			return &Node{Tag: TagTrue, ID: -1}, nil
		}
		return &Node{Tag: TagFalse, ID: -1}, nil
	case KindNumber:
		return p.parseNumber(v.Number), nil
	case KindBigInt:
		if !p.features.Has(FeatureBigInt) {
			return nil, &FeatureDisabledError{Feature: FeatureBigInt, Kind: "BigInt"}
		}
		return &Node{Tag: TagBigInt, ID: -1, Str: v.BigInt}, nil
	case KindString:
		return &Node{Tag: TagString, ID: -1, Str: v.Str}, nil
	case KindWellKnownSymbol:
		if !p.features.Has(FeatureSymbol) {
			return nil, &FeatureDisabledError{Feature: FeatureSymbol, Kind: "Symbol"}
		}
		return &Node{Tag: TagWellKnownSymbol, ID: -1, SymbolName: v.Symbol}, nil
	default:
		return nil, &InvariantViolationError{Detail: "unreachable primitive kind"}
	}
}

func (p *Parser) parseNumber(n float64) *Node {
	switch {
	case math.IsNaN(n):
		return &Node{Tag: TagNaN, ID: -1}
	case math.IsInf(n, 1):
		return &Node{Tag: TagPosInfinity, ID: -1}
	case math.IsInf(n, -1):
		return &Node{Tag: TagNegInfinity, ID: -1}
	case n == 0:
		if math.Signbit(n) {
			return &Node{Tag: TagNegZero, ID: -1}
		}
		return &Node{Tag: TagPosZero, ID: -1}
	default:
		return &Node{Tag: TagNumber, ID: -1, Number: n}
	}
}

func (p *Parser) parseArray(v *Value, id int) (*Node, error) {
	node := &Node{Tag: TagArray, ID: id, Length: len(v.Elements), Elements: make(map[int]*Node)}
	for i, elem := range v.Elements {
		if v.Holes != nil && v.Holes[i] {
			continue
		}
		child, err := p.parseValue(elem)
		if err != nil {
			return nil, err
		}
		node.Elements[i] = child
	}
	return node, nil
}

// isDeferredCandidate reports whether val "presents as iterable" for
// the purposes of the two-pass extraction in §4.4.1: containers whose
// walk could itself consume an iterator are pushed to the second
// pass so a lazy iterator sharing structure with an unrelated eager
// value isn't consumed out of order.
func isDeferredCandidate(val *Value) bool {
	if val == nil {
		return false
	}
	switch val.Kind {
	case KindArray, KindMap, KindSet:
		return true
	case KindObject, KindNullProto:
		return val.HasSymbolIterator
	default:
		return false
	}
}

// parsePropertyRecord implements §4.4.1's two-pass scheme: eager
// values are parsed inline on the first pass; deferred (iterable-
// looking) values are recorded and parsed on a second pass once every
// eager value has already been walked.
func (p *Parser) parsePropertyRecord(keys []string, fields map[string]*Value) (*PropertyRecord, error) {
	rec := &PropertyRecord{Keys: keys, Values: make([]*Node, len(keys))}

	type deferredEntry struct {
		index int
		value *Value
	}
	var deferred []deferredEntry

	for i, key := range keys {
		val := fields[key]
		if isDeferredCandidate(val) {
			deferred = append(deferred, deferredEntry{index: i, value: val})
			continue
		}
		child, err := p.parseValue(val)
		if err != nil {
			return nil, err
		}
		rec.Values[i] = child
	}

	for _, d := range deferred {
		child, err := p.parseValue(d.value)
		if err != nil {
			return nil, err
		}
		rec.Values[d.index] = child
	}

	return rec, nil
}

func (p *Parser) parseObject(v *Value, id int) (*Node, error) {
	rec, err := p.parsePropertyRecord(v.Keys, v.Fields)
	if err != nil {
		return nil, err
	}
	if v.HasSymbolIterator {
		items := make([]*Value, len(v.Iterated))
		copy(items, v.Iterated)
		iterNode, err := p.parseValue(Array(items, nil))
		if err != nil {
			return nil, err
		}
		rec.HasSymbolIter = true
		rec.IterValue = iterNode
	}

	tag := TagObject
	if v.Kind == KindNullProto {
		tag = TagNullConstructor
	}
	return &Node{Tag: tag, ID: id, Props: rec, Flags: v.Flags}, nil
}

// bodyBufferValue resolves the ArrayBuffer Value a Blob/File's bytes
// should parse as (§4.4.2: awaiting a Blob/File "becomes a child
// ArrayBuffer node"). A caller that built v with a shared v.Buffer
// gets that same Value parsed in place, so a Blob whose buffer is
// also referenced elsewhere in the graph aliases onto one id per §3;
// a caller that only set v.Bytes gets a private one-off ArrayBuffer
// Value synthesized around those bytes.
func (p *Parser) bodyBufferValue(v *Value) *Value {
	if v.Buffer != nil {
		return v.Buffer
	}
	return ArrayBufferVal(v.Bytes)
}

func (p *Parser) parseTypedArray(v *Value, id int, isBigInt bool) (*Node, error) {
	bufNode, err := p.parseValue(v.Buffer)
	if err != nil {
		return nil, err
	}
	tag := TagTypedArray
	if isBigInt {
		tag = TagBigIntTypedArray
		if !p.features.Has(FeatureBigIntTypedArray) {
			return nil, &FeatureDisabledError{Feature: FeatureBigIntTypedArray, Kind: "BigIntTypedArray"}
		}
	}
	return &Node{
		Tag: tag, ID: id, CtorName: v.CtorName, Buffer: bufNode,
		ByteOffset: v.ByteOffset, ByteLength: v.ArrayLength,
	}, nil
}

func (p *Parser) parseDataView(v *Value, id int) (*Node, error) {
	bufNode, err := p.parseValue(v.Buffer)
	if err != nil {
		return nil, err
	}
	return &Node{Tag: TagDataView, ID: id, Buffer: bufNode, ByteOffset: v.ByteOffset, ByteLength: v.ByteLength}, nil
}

func (p *Parser) parseMap(v *Value, id int) (*Node, error) {
	entries := make([]MapEntryNode, 0, len(v.Entries))
	for _, e := range v.Entries {
		k, err := p.parseValue(e.Key)
		if err != nil {
			return nil, err
		}
		val, err := p.parseValue(e.Val)
		if err != nil {
			return nil, err
		}
		entries = append(entries, MapEntryNode{Key: k, Val: val})
	}
	return &Node{Tag: TagMap, ID: id, MapEntries: entries}, nil
}

func (p *Parser) parseSet(v *Value, id int) (*Node, error) {
	elems := make([]*Node, 0, len(v.SetVals))
	for _, e := range v.SetVals {
		n, err := p.parseValue(e)
		if err != nil {
			return nil, err
		}
		elems = append(elems, n)
	}
	return &Node{Tag: TagSet, ID: id, SetElems: elems}, nil
}

// parseErrorOptions builds the §4.4.3 options record from the error's
// own enumerable properties other than name/message/stack/cause.
func (p *Parser) parseErrorOptions(opts *Value) (*PropertyRecord, error) {
	if opts == nil {
		return nil, nil
	}
	return p.parsePropertyRecord(opts.Keys, opts.Fields)
}

func (p *Parser) parseError(v *Value, id int) (*Node, error) {
	var causeNode *Node
	if v.Cause != nil {
		c, err := p.parseValue(v.Cause)
		if err != nil {
			return nil, err
		}
		causeNode = c
	}
	optRec, err := p.parseErrorOptions(v.ErrOptions)
	if err != nil {
		return nil, err
	}
	return &Node{
		Tag: TagError, ID: id, Str: v.ErrName, ErrMessage: v.Message,
		ErrStack: v.Stack, ErrCause: causeNode, ErrOptions: optRec,
	}, nil
}

func (p *Parser) parseAggregateError(v *Value, id int) (*Node, error) {
	errs := make([]*Node, 0, len(v.Errors))
	for _, e := range v.Errors {
		n, err := p.parseValue(e)
		if err != nil {
			return nil, err
		}
		errs = append(errs, n)
	}
	optRec, err := p.parseErrorOptions(v.ErrOptions)
	if err != nil {
		return nil, err
	}
	return &Node{Tag: TagAggregateError, ID: id, ErrMessage: v.Message, ErrStack: v.Stack, ErrErrors: errs, ErrOptions: optRec}, nil
}

func (p *Parser) parseHeaders(v *Value, id int) (*Node, error) {
	plain := &PlainRecord{}
	for _, kv := range v.HeaderPairs {
		plain.Keys = append(plain.Keys, kv[0])
		plain.Values = append(plain.Values, &Node{Tag: TagString, ID: -1, Str: kv[1]})
	}
	return &Node{Tag: TagHeaders, ID: id, Plain: plain}, nil
}

func (p *Parser) parseFormData(v *Value, id int) (*Node, error) {
	plain := &PlainRecord{}
	for _, e := range v.FormEntries {
		child, err := p.parseValue(e.Value)
		if err != nil {
			return nil, err
		}
		plain.Keys = append(plain.Keys, e.Key)
		plain.Values = append(plain.Values, child)
	}
	return &Node{Tag: TagFormData, ID: id, Plain: plain}, nil
}

func (p *Parser) parseRequest(v *Value, id int) (*Node, error) {
	var headersNode, bodyNode *Node
	var err error
	if v.Headers != nil {
		headersNode, err = p.parseValue(v.Headers)
		if err != nil {
			return nil, err
		}
	}
	if v.Body != nil {
		bodyNode, err = p.parseValue(v.Body)
		if err != nil {
			return nil, err
		}
	}
	return &Node{Tag: TagRequest, ID: id, Href: v.URLOrStatus, Method: v.Method, ReqHeaders: headersNode, ReqBody: bodyNode}, nil
}

func (p *Parser) parseResponse(v *Value, id int) (*Node, error) {
	var headersNode, bodyNode *Node
	var err error
	if v.Headers != nil {
		headersNode, err = p.parseValue(v.Headers)
		if err != nil {
			return nil, err
		}
	}
	if v.Body != nil {
		bodyNode, err = p.parseValue(v.Body)
		if err != nil {
			return nil, err
		}
	}
	return &Node{Tag: TagResponse, ID: id, StatusCode: v.StatusCode, StatusText: v.StatusText, ReqHeaders: headersNode, ReqBody: bodyNode}, nil
}

func (p *Parser) parseCustomEvent(v *Value, id int) (*Node, error) {
	var detail *Node
	if v.Detail != nil {
		d, err := p.parseValue(v.Detail)
		if err != nil {
			return nil, err
		}
		detail = d
	}
	return &Node{Tag: TagCustomEvent, ID: id, EventType: v.EventType, Detail: detail, Bubbles: v.Bubbles, Cancelable: v.Cancelable}, nil
}

func (p *Parser) parsePlugin(v *Value, id int) (*Node, error) {
	plug := findPluginByTag(p.opts.Plugins, v.PluginTag)
	if plug == nil {
		return nil, &MissingPluginError{Tag: v.PluginTag}
	}
	payload, err := plug.Parse(v)
	if err != nil {
		return nil, err
	}
	return &Node{Tag: TagPlugin, ID: id, PluginTag: v.PluginTag, PluginPayload: payload}, nil
}
