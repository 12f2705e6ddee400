package vgraph

import (
	"strconv"
	"strings"
)

// refNamer supplies the stable short identifier getRefParam formats
// for a marked id; self-contained and cross-referenced mode plug in
// different schemes (§4.5.1).
type refNamer interface {
	format(id int) string
}

// Serializer is the IR-to-source-text walker shared by both operating
// modes (§4.5). Concrete modes embed it and supply a refNamer plus a
// root-wrapping strategy.
//
// Grounded on the teacher's emit.go Emitter (a single walker over
// GValue dispatching on GType, accumulating into a strings.Builder),
// generalized from GLYPH's flat text grammar to this IR's cyclic,
// aliasable object graph — which is why this walker additionally
// carries the stack/marked/deferred bookkeeping glyph's acyclic tree
// never needed.
type Serializer struct {
	opts     Options
	features FeatureMask
	namer    refNamer

	stack    *Stack
	marked   *MarkedSet
	deferred *DeferredSlot
}

func newSerializer(opts Options, namer refNamer) *Serializer {
	return &Serializer{
		opts:     opts,
		features: opts.featureSet(),
		namer:    namer,
		stack:    NewStack(),
		marked:   NewMarkedSet(),
		deferred: NewDeferredSlot(),
	}
}

// getRefParam returns id's stable name and records that it has been
// observed as needing one (§4.5.1).
func (s *Serializer) getRefParam(id int) string {
	s.marked.Mark(id)
	return s.namer.format(id)
}

// assignIndexedValue implements §4.5.2's binding strategy for nodes
// with no internal mutable slots to patch (Date, RegExp, Boxed, URL,
// typed arrays, ...): bare expr when unmarked, `name=expr` otherwise.
func (s *Serializer) assignIndexedValue(id int, expr string) string {
	if s.marked.IsMarked(id) {
		return s.getRefParam(id) + "=" + expr
	}
	return expr
}

// premark walks the whole IR once before emission, counting how many
// times every id is referenced (as a defining node or as an
// IndexedValue) and marking every id seen more than once, plus every
// id whose node carries non-default object flags (§3 Marked set).
//
// The base spec frames marking as a live-stack check performed during
// emission. This port instead precomputes the full marked set up
// front: since a value's *defining* occurrence always precedes every
// IndexedValue referencing it (parse-time first-seen order, §5), and
// a marked container emits its shell and binds its name before
// recursing into its own members (see emitArray, emitObject, emitMap
// and emitSet), any later
// IndexedValue for that id is always resolvable by name — including
// self-references — without a separate on-stack special case. This
// collapses the spec's per-item stack-containment test and the Map
// key/value defer rule into one count-then-shell-first scheme; it is
// behaviorally equivalent for every round-trip and identity property
// in §8 and considerably simpler to reason about in Go.
func premark(root *Node) *MarkedSet {
	counts := make(map[int]int)
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		if n.Tag == TagIndexedValue {
			counts[n.RefID]++
			return
		}
		if n.ID >= 0 {
			counts[n.ID]++
		}
		for _, c := range children(n) {
			walk(c)
		}
	}
	walk(root)

	m := NewMarkedSet()
	for id, c := range counts {
		if c > 1 {
			m.Mark(id)
		}
	}
	var markFlags func(n *Node)
	markFlags = func(n *Node) {
		if n == nil {
			return
		}
		if n.ID >= 0 && n.Flags != FlagsNone {
			m.Mark(n.ID)
		}
		for _, c := range children(n) {
			markFlags(c)
		}
	}
	markFlags(root)
	return m
}

// children returns every direct Node child of n, for the pre-pass walk.
func children(n *Node) []*Node {
	var out []*Node
	if n.Props != nil {
		out = append(out, n.Props.Values...)
		if n.Props.IterValue != nil {
			out = append(out, n.Props.IterValue)
		}
	}
	for _, idx := range sortedKeys(n.Elements) {
		out = append(out, n.Elements[idx])
	}
	if n.ErrCause != nil {
		out = append(out, n.ErrCause)
	}
	out = append(out, n.ErrErrors...)
	if n.ErrOptions != nil {
		out = append(out, n.ErrOptions.Values...)
	}
	if n.BodyBuffer != nil {
		out = append(out, n.BodyBuffer)
	}
	if n.Plain != nil {
		out = append(out, n.Plain.Values...)
	}
	if n.ReqHeaders != nil {
		out = append(out, n.ReqHeaders)
	}
	if n.ReqBody != nil {
		out = append(out, n.ReqBody)
	}
	if n.Detail != nil {
		out = append(out, n.Detail)
	}
	if n.Buffer != nil {
		out = append(out, n.Buffer)
	}
	for _, e := range n.MapEntries {
		out = append(out, e.Key, e.Val)
	}
	out = append(out, n.SetElems...)
	if n.Resolution != nil {
		out = append(out, n.Resolution)
	}
	return out
}

func sortedKeys(m map[int]*Node) []int {
	if m == nil {
		return nil
	}
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	// insertion order doesn't matter for the pre-pass (only that every
	// element is visited once); a cheap insertion sort keeps this
	// dependency-free for the handful of elements typical arrays have.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// Serialize runs the full two-pass emission: premark, then walk.
func (s *Serializer) Serialize(root *Node) (string, error) {
	s.marked = premark(root)
	return s.serializeNode(root)
}

func (s *Serializer) serializeNode(n *Node) (string, error) {
	switch n.Tag {
	case TagTrue:
		return "true", nil
	case TagFalse:
		return "false", nil
	case TagUndefined:
		return "void 0", nil
	case TagNull:
		return "null", nil
	case TagPosZero:
		return "0", nil
	case TagNegZero:
		return "-0", nil
	case TagPosInfinity:
		return "1/0", nil
	case TagNegInfinity:
		return "-1/0", nil
	case TagNaN:
		return "NaN", nil
	case TagNumber:
		return strconv.FormatFloat(n.Number, 'g', -1, 64), nil
	case TagString:
		return QuotedString(n.Str), nil
	case TagBigInt:
		if !s.features.Has(FeatureBigInt) {
			return "", &FeatureDisabledError{Feature: FeatureBigInt, Kind: "BigInt"}
		}
		return n.Str + "n", nil
	case TagWellKnownSymbol:
		if !s.features.Has(FeatureSymbol) {
			return "", &FeatureDisabledError{Feature: FeatureSymbol, Kind: "Symbol"}
		}
		return "Symbol." + n.SymbolName, nil
	case TagIndexedValue:
		if expr, ok := s.deferred.Get(n.RefID); ok {
			return expr, nil
		}
		return s.getRefParam(n.RefID), nil
	case TagReference:
		return s.assignIndexedValue(n.ID, "$VGREF.get("+QuotedString(n.RefTag)+")"), nil
	case TagArray:
		return s.emitArray(n)
	case TagObject, TagNullConstructor:
		return s.emitObject(n)
	case TagDate:
		return s.assignIndexedValue(n.ID, "new Date("+strconv.FormatInt(n.TimeMillis, 10)+")"), nil
	case TagRegExp:
		return s.assignIndexedValue(n.ID, "new RegExp("+QuotedString(n.Str)+","+QuotedString(n.RegExpFlags)+")"), nil
	case TagBoxed:
		return s.emitBoxed(n)
	case TagError, TagAggregateError:
		return s.emitError(n)
	case TagURL:
		return s.assignIndexedValue(n.ID, "new URL("+QuotedString(n.Href)+")"), nil
	case TagURLSearchParams:
		return s.assignIndexedValue(n.ID, "new URLSearchParams("+QuotedString(n.Href)+")"), nil
	case TagBlob:
		return s.emitBlob(n)
	case TagFile:
		return s.emitFile(n)
	case TagHeaders:
		return s.emitHeaders(n)
	case TagFormData:
		return s.emitFormData(n)
	case TagRequest:
		return s.emitRequest(n)
	case TagResponse:
		return s.emitResponse(n)
	case TagEvent:
		opts := "{bubbles:" + boolLit(n.Bubbles) + ",cancelable:" + boolLit(n.Cancelable) + "}"
		return s.assignIndexedValue(n.ID, "new Event("+QuotedString(n.EventType)+","+opts+")"), nil
	case TagCustomEvent:
		return s.emitCustomEvent(n)
	case TagDOMException:
		return s.assignIndexedValue(n.ID, "new DOMException("+QuotedString(n.ErrMessage)+","+QuotedString(n.Str)+")"), nil
	case TagArrayBuffer:
		return s.assignIndexedValue(n.ID, emitByteArrayBuffer(n.Bytes)), nil
	case TagTypedArray, TagBigIntTypedArray:
		return s.emitTypedArray(n)
	case TagDataView:
		return s.emitDataView(n)
	case TagMap:
		return s.emitMap(n)
	case TagSet:
		return s.emitSet(n)
	case TagPromise:
		return s.emitPromise(n)
	case TagPlugin:
		return s.emitPlugin(n)
	default:
		return "", &InvariantViolationError{Detail: "unrecognized IR tag reached the serializer"}
	}
}

func boolLit(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func propertyAccessor(key string) string {
	if IsIdentifierSafe(key) {
		return "." + key
	}
	return "[" + QuotedString(key) + "]"
}

// emitByteArrayBuffer renders the fixed ArrayBuffer constructor form
// from §4.5.8.
func emitByteArrayBuffer(b []byte) string {
	var sb strings.Builder
	sb.WriteString("new Uint8Array([")
	for i, by := range b {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(int(by)))
	}
	sb.WriteString("]).buffer")
	return sb.String()
}

// --- Array / Object / Map / Set: the unified shell-first container rule ---

// emitArray implements §4.5.4's Array rule under the shell-first
// scheme: unmarked arrays emit one inline literal; marked arrays emit
// an empty shell bound to a name, followed by one `name[i]=expr`
// patch per element (so a self- or ancestor-referencing element can
// name its container before that container's own literal would
// otherwise have closed).
func (s *Serializer) emitArray(n *Node) (string, error) {
	s.stack.Push(n.ID)
	defer s.stack.Pop()

	if !s.marked.IsMarked(n.ID) {
		parts := make([]string, n.Length)
		for i := 0; i < n.Length; i++ {
			child, ok := n.Elements[i]
			if !ok {
				continue
			}
			expr, err := s.serializeNode(child)
			if err != nil {
				return "", err
			}
			parts[i] = expr
		}
		body := strings.Join(parts, ",")
		if n.Length > 0 {
			if _, ok := n.Elements[n.Length-1]; !ok {
				body += ","
			}
		}
		return "[" + body + "]", nil
	}

	name := s.getRefParam(n.ID)
	shell := "[" + strings.Repeat(",", n.Length) + "]"
	if n.Length == 0 {
		shell = "[]"
	}
	var patches strings.Builder
	for i := 0; i < n.Length; i++ {
		child, ok := n.Elements[i]
		if !ok {
			continue
		}
		expr, err := s.serializeNode(child)
		if err != nil {
			return "", err
		}
		patches.WriteString("," + name + "[" + strconv.Itoa(i) + "]=" + expr)
	}
	return "(" + name + "=" + shell + patches.String() + "," + name + ")", nil
}

// emitObject implements §4.5.4's Object/NullConstructor rule, again
// under shell-first for marked ids. The SymbolIterator sentinel is
// emitted inline (unmarked case) or as a patch assigning
// `name[Symbol.iterator]=function(){...}` (marked case), gated by
// the feature matrix per §4.5.4's "Iterable key" bullet.
func (s *Serializer) emitObject(n *Node) (string, error) {
	s.stack.Push(n.ID)
	defer s.stack.Pop()

	isNullProto := n.Tag == TagNullConstructor

	inline := !s.marked.IsMarked(n.ID)
	if inline && !s.features.Has(FeatureObjectAssign) && (n.Props.HasSymbolIter || (isNullProto && len(n.Props.Keys) > 0)) {
		// Without Object.assign, use the named shell and one
		// assignment per property instead.
		inline = false
	}
	if inline {
		props, err := s.objectLiteralProps(n)
		if err != nil {
			return "", err
		}
		if !isNullProto {
			return props, nil
		}
		if len(n.Props.Keys) == 0 && !n.Props.HasSymbolIter {
			return "Object.create(null)", nil
		}
		return "Object.assign(Object.create(null)," + props + ")", nil
	}

	name := s.getRefParam(n.ID)
	shellCtor := "{}"
	if isNullProto {
		shellCtor = "Object.create(null)"
	}
	var patches strings.Builder
	for i, key := range n.Props.Keys {
		expr, err := s.serializeNode(n.Props.Values[i])
		if err != nil {
			return "", err
		}
		patches.WriteString("," + name + propertyAccessor(key) + "=" + expr)
	}
	if n.Props.HasSymbolIter {
		iterExpr, err := s.serializeNode(n.Props.IterValue)
		if err != nil {
			return "", err
		}
		patches.WriteString("," + name + "[Symbol.iterator]=function(){return " + s.iterCall(iterExpr) + "}")
	}
	if n.Flags != FlagsNone {
		patches.WriteString("," + integrityCall(n.Flags) + "(" + name + ")")
	}
	return "(" + name + "=" + shellCtor + patches.String() + "," + name + ")", nil
}

// objectLiteralProps renders n's own Props as a plain `{k:v,...}`
// literal, used to attach properties onto a null-prototype shell via
// Object.assign without disturbing its prototype.
func (s *Serializer) objectLiteralProps(n *Node) (string, error) {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, key := range n.Props.Keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		expr, err := s.serializeNode(n.Props.Values[i])
		if err != nil {
			return "", err
		}
		sb.WriteString(objectKeyLiteral(key))
		sb.WriteByte(':')
		sb.WriteString(expr)
	}
	sb.WriteByte('}')
	if n.Props.HasSymbolIter {
		iterExpr, err := s.serializeNode(n.Props.IterValue)
		if err != nil {
			return "", err
		}
		method := "function(){return " + s.iterCall(iterExpr) + "}"
		if s.features.Has(FeatureMethodShorthand) {
			return "Object.assign(" + sb.String() + ",{[Symbol.iterator](){return " + s.iterCall(iterExpr) + "}})", nil
		}
		return "Object.assign(" + sb.String() + ",{[Symbol.iterator]:" + method + "})", nil
	}
	return sb.String(), nil
}

// iterCall renders the call that obtains an iterator over the array
// expression expr: `.values()` when ArrayPrototypeValues is enabled,
// `[Symbol.iterator]()` otherwise.
func (s *Serializer) iterCall(expr string) string {
	if s.features.Has(FeatureArrayPrototypeValues) {
		return "(" + expr + ").values()"
	}
	return "(" + expr + ")[Symbol.iterator]()"
}

func objectKeyLiteral(key string) string {
	if IsIdentifierSafe(key) {
		return key
	}
	return QuotedString(key)
}

func integrityCall(f ObjectFlags) string {
	switch f {
	case FlagsSealed:
		return "Object.seal"
	case FlagsFrozen:
		return "Object.freeze"
	case FlagsNonExtensible:
		return "Object.preventExtensions"
	default:
		return ""
	}
}

// emitMap implements §4.5.4/§4.5.5. Unmarked maps emit one
// `new Map([[k,v],...])` literal; marked maps emit an empty shell and
// one `.set(k,v)` patch per entry, processing the value ahead of the
// key (stashing it in the deferred slot) so a key that structurally
// aliases its own entry's value — the narrow case §4.5.5 names —
// resolves to an already-computed expression rather than one that
// hasn't been walked yet.
func (s *Serializer) emitMap(n *Node) (string, error) {
	if !s.features.Has(FeatureMap) {
		return "", &FeatureDisabledError{Feature: FeatureMap, Kind: "Map"}
	}
	s.stack.Push(n.ID)
	defer s.stack.Pop()

	if !s.marked.IsMarked(n.ID) {
		var sb strings.Builder
		sb.WriteString("new Map([")
		for i, e := range n.MapEntries {
			if i > 0 {
				sb.WriteByte(',')
			}
			k, v, err := s.emitMapEntryPair(e)
			if err != nil {
				return "", err
			}
			sb.WriteString("[" + k + "," + v + "]")
		}
		sb.WriteString("])")
		return sb.String(), nil
	}

	name := s.getRefParam(n.ID)
	var patches strings.Builder
	for _, e := range n.MapEntries {
		k, v, err := s.emitMapEntryPair(e)
		if err != nil {
			return "", err
		}
		patches.WriteString("," + name + ".set(" + k + "," + v + ")")
	}
	return "(" + name + "=new Map([])" + patches.String() + "," + name + ")", nil
}

func (s *Serializer) emitMapEntryPair(e MapEntryNode) (keyExpr, valExpr string, err error) {
	valExpr, err = s.serializeNode(e.Val)
	if err != nil {
		return "", "", err
	}
	if e.Val.ID >= 0 {
		s.deferred.Set(e.Val.ID, valExpr)
		defer s.deferred.Delete(e.Val.ID)
	}
	keyExpr, err = s.serializeNode(e.Key)
	if err != nil {
		return "", "", err
	}
	return keyExpr, valExpr, nil
}

func (s *Serializer) emitSet(n *Node) (string, error) {
	if !s.features.Has(FeatureSet) {
		return "", &FeatureDisabledError{Feature: FeatureSet, Kind: "Set"}
	}
	s.stack.Push(n.ID)
	defer s.stack.Pop()

	if !s.marked.IsMarked(n.ID) {
		parts := make([]string, len(n.SetElems))
		for i, e := range n.SetElems {
			expr, err := s.serializeNode(e)
			if err != nil {
				return "", err
			}
			parts[i] = expr
		}
		return "new Set([" + strings.Join(parts, ",") + "])", nil
	}

	name := s.getRefParam(n.ID)
	var patches strings.Builder
	for _, e := range n.SetElems {
		expr, err := s.serializeNode(e)
		if err != nil {
			return "", err
		}
		patches.WriteString("," + name + ".add(" + expr + ")")
	}
	return "(" + name + "=new Set([])" + patches.String() + "," + name + ")", nil
}

// --- Atomic/simple constructors ---

func (s *Serializer) emitBoxed(n *Node) (string, error) {
	var ctor, arg string
	switch n.BoxedKind {
	case TagTrue, TagFalse:
		ctor, arg = "Boolean", boolLit(n.BoxedBool)
	case TagNumber:
		ctor, arg = "Number", strconv.FormatFloat(n.BoxedNum, 'g', -1, 64)
	case TagString:
		ctor, arg = "String", QuotedString(n.BoxedStr)
	default:
		return "", &InvariantViolationError{Detail: "boxed node with unrecognized inner kind"}
	}
	return s.assignIndexedValue(n.ID, "new "+ctor+"("+arg+")"), nil
}

// errConstructorNames maps recognized error names to their runtime
// constructors; anything else falls back to the base Error.
var errConstructorNames = map[string]bool{
	"TypeError": true, "RangeError": true, "ReferenceError": true,
	"SyntaxError": true, "EvalError": true, "URIError": true,
}

func errCtorName(name string) string {
	if errConstructorNames[name] {
		return name
	}
	return "Error"
}

// emitError implements §4.5.6: message is the sole constructor
// argument (after the errors array for AggregateError); stack (only
// when ErrorPrototypeStack is enabled), cause, and the options record
// are attached as post-construction patches, since none of them are
// accepted by the Error constructor itself.
func (s *Serializer) emitError(n *Node) (string, error) {
	isAgg := n.Tag == TagAggregateError
	needsName := n.ErrStack != "" || n.ErrCause != nil || n.ErrOptions != nil || isAgg
	if needsName {
		s.marked.Mark(n.ID)
	}

	var ctorExpr string
	if isAgg {
		if !s.features.Has(FeatureAggregateError) {
			return "", &FeatureDisabledError{Feature: FeatureAggregateError, Kind: "AggregateError"}
		}
		parts := make([]string, len(n.ErrErrors))
		for i, e := range n.ErrErrors {
			expr, err := s.serializeNode(e)
			if err != nil {
				return "", err
			}
			parts[i] = expr
		}
		ctorExpr = "new AggregateError([" + strings.Join(parts, ",") + "]," + QuotedString(n.ErrMessage) + ")"
	} else {
		ctorExpr = "new " + errCtorName(n.Str) + "(" + QuotedString(n.ErrMessage) + ")"
	}

	if !needsName {
		return s.assignIndexedValue(n.ID, ctorExpr), nil
	}

	name := s.getRefParam(n.ID)
	var patches strings.Builder
	if n.ErrStack != "" && s.features.Has(FeatureErrorPrototypeStack) {
		patches.WriteString("," + name + ".stack=" + QuotedString(n.ErrStack))
	}
	if n.ErrCause != nil {
		causeExpr, err := s.serializeNode(n.ErrCause)
		if err != nil {
			return "", err
		}
		patches.WriteString("," + name + ".cause=" + causeExpr)
	}
	if n.ErrOptions != nil {
		for i, key := range n.ErrOptions.Keys {
			expr, err := s.serializeNode(n.ErrOptions.Values[i])
			if err != nil {
				return "", err
			}
			patches.WriteString("," + name + propertyAccessor(key) + "=" + expr)
		}
	}
	return "(" + name + "=" + ctorExpr + patches.String() + "," + name + ")", nil
}

func (s *Serializer) emitBlob(n *Node) (string, error) {
	if !s.features.Has(FeatureWebAPI) {
		return "", &FeatureDisabledError{Feature: FeatureWebAPI, Kind: "Blob"}
	}
	bufExpr, err := s.serializeNode(n.BodyBuffer)
	if err != nil {
		return "", err
	}
	opts := "{type:" + QuotedString(n.MIMEType) + "}"
	return s.assignIndexedValue(n.ID, "new Blob(["+bufExpr+"],"+opts+")"), nil
}

func (s *Serializer) emitFile(n *Node) (string, error) {
	if !s.features.Has(FeatureWebAPI) {
		return "", &FeatureDisabledError{Feature: FeatureWebAPI, Kind: "File"}
	}
	bufExpr, err := s.serializeNode(n.BodyBuffer)
	if err != nil {
		return "", err
	}
	opts := "{type:" + QuotedString(n.MIMEType) + ",lastModified:" + strconv.FormatInt(n.LastModified, 10) + "}"
	return s.assignIndexedValue(n.ID, "new File(["+bufExpr+"],"+QuotedString(n.FileName)+","+opts+")"), nil
}

func (s *Serializer) emitHeaders(n *Node) (string, error) {
	if !s.features.Has(FeatureWebAPI) {
		return "", &FeatureDisabledError{Feature: FeatureWebAPI, Kind: "Headers"}
	}
	var sb strings.Builder
	sb.WriteByte('{')
	for i, key := range n.Plain.Keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		expr, err := s.serializeNode(n.Plain.Values[i])
		if err != nil {
			return "", err
		}
		sb.WriteString(objectKeyLiteral(key) + ":" + expr)
	}
	sb.WriteByte('}')
	return s.assignIndexedValue(n.ID, "new Headers("+sb.String()+")"), nil
}

func (s *Serializer) emitFormData(n *Node) (string, error) {
	if !s.features.Has(FeatureWebAPI) {
		return "", &FeatureDisabledError{Feature: FeatureWebAPI, Kind: "FormData"}
	}
	if len(n.Plain.Keys) == 0 {
		return s.assignIndexedValue(n.ID, "new FormData()"), nil
	}
	s.marked.Mark(n.ID)
	name := s.getRefParam(n.ID)
	var patches strings.Builder
	for i, key := range n.Plain.Keys {
		expr, err := s.serializeNode(n.Plain.Values[i])
		if err != nil {
			return "", err
		}
		patches.WriteString("," + name + ".append(" + QuotedString(key) + "," + expr + ")")
	}
	return "(" + name + "=new FormData()" + patches.String() + "," + name + ")", nil
}

func (s *Serializer) emitRequest(n *Node) (string, error) {
	if !s.features.Has(FeatureWebAPI) {
		return "", &FeatureDisabledError{Feature: FeatureWebAPI, Kind: "Request"}
	}
	opts, err := s.emitReqResOptions(n.Method, "", n.ReqHeaders, n.ReqBody)
	if err != nil {
		return "", err
	}
	return s.assignIndexedValue(n.ID, "new Request("+QuotedString(n.Href)+","+opts+")"), nil
}

func (s *Serializer) emitResponse(n *Node) (string, error) {
	if !s.features.Has(FeatureWebAPI) {
		return "", &FeatureDisabledError{Feature: FeatureWebAPI, Kind: "Response"}
	}
	bodyExpr := "null"
	if n.ReqBody != nil {
		b, err := s.serializeNode(n.ReqBody)
		if err != nil {
			return "", err
		}
		bodyExpr = b
	}
	opts := "{status:" + strconv.Itoa(n.StatusCode) + ",statusText:" + QuotedString(n.StatusText)
	if n.ReqHeaders != nil {
		h, err := s.serializeNode(n.ReqHeaders)
		if err != nil {
			return "", err
		}
		opts += ",headers:" + h
	}
	opts += "}"
	return s.assignIndexedValue(n.ID, "new Response("+bodyExpr+","+opts+")"), nil
}

func (s *Serializer) emitReqResOptions(method, _ string, headers, body *Node) (string, error) {
	var sb strings.Builder
	sb.WriteByte('{')
	sb.WriteString("method:" + QuotedString(method))
	if headers != nil {
		h, err := s.serializeNode(headers)
		if err != nil {
			return "", err
		}
		sb.WriteString(",headers:" + h)
	}
	if body != nil {
		b, err := s.serializeNode(body)
		if err != nil {
			return "", err
		}
		sb.WriteString(",body:" + b)
	}
	sb.WriteByte('}')
	return sb.String(), nil
}

func (s *Serializer) emitCustomEvent(n *Node) (string, error) {
	if !s.features.Has(FeatureWebAPI) {
		return "", &FeatureDisabledError{Feature: FeatureWebAPI, Kind: "CustomEvent"}
	}
	detailExpr := "void 0"
	if n.Detail != nil {
		d, err := s.serializeNode(n.Detail)
		if err != nil {
			return "", err
		}
		detailExpr = d
	}
	opts := "{detail:" + detailExpr + ",bubbles:" + boolLit(n.Bubbles) + ",cancelable:" + boolLit(n.Cancelable) + "}"
	return s.assignIndexedValue(n.ID, "new CustomEvent("+QuotedString(n.EventType)+","+opts+")"), nil
}

func (s *Serializer) emitTypedArray(n *Node) (string, error) {
	feature := FeatureTypedArray
	if n.Tag == TagBigIntTypedArray {
		feature = FeatureBigIntTypedArray
	}
	if !s.features.Has(feature) {
		return "", &FeatureDisabledError{Feature: feature, Kind: n.CtorName}
	}
	bufExpr, err := s.serializeNode(n.Buffer)
	if err != nil {
		return "", err
	}
	expr := "new " + n.CtorName + "(" + bufExpr + "," + strconv.Itoa(n.ByteOffset) + "," + strconv.Itoa(n.ByteLength) + ")"
	return s.assignIndexedValue(n.ID, expr), nil
}

func (s *Serializer) emitDataView(n *Node) (string, error) {
	bufExpr, err := s.serializeNode(n.Buffer)
	if err != nil {
		return "", err
	}
	expr := "new DataView(" + bufExpr + "," + strconv.Itoa(n.ByteOffset) + "," + strconv.Itoa(n.ByteLength) + ")"
	return s.assignIndexedValue(n.ID, expr), nil
}

// emitPromise implements §4.5.7: a resolution that aliases an
// on-stack ancestor needs the `.then`/`.catch` deferral form so the
// returned promise is itself evaluable before the aliased name is
// bound; everything else inlines directly.
func (s *Serializer) emitPromise(n *Node) (string, error) {
	if !s.features.Has(FeaturePromise) {
		return "", &FeatureDisabledError{Feature: FeaturePromise, Kind: "Promise"}
	}
	s.stack.Push(n.ID)
	defer s.stack.Pop()

	method := "resolve"
	if !n.Resolved {
		method = "reject"
	}

	if n.Resolution != nil && n.Resolution.Tag == TagIndexedValue && s.stack.Contains(n.Resolution.RefID) {
		name := s.getRefParam(n.Resolution.RefID)
		var fn string
		if s.features.Has(FeatureArrowFunction) {
			fn = "()=>" + name
		} else {
			fn = "function(){return " + name + "}"
		}
		chain := ".then"
		if method == "reject" {
			chain = ".catch"
		}
		return s.assignIndexedValue(n.ID, "Promise.resolve()"+chain+"("+fn+")"), nil
	}

	resExpr := "void 0"
	if n.Resolution != nil {
		r, err := s.serializeNode(n.Resolution)
		if err != nil {
			return "", err
		}
		resExpr = r
	}
	return s.assignIndexedValue(n.ID, "Promise."+method+"("+resExpr+")"), nil
}

func (s *Serializer) emitPlugin(n *Node) (string, error) {
	plug := findPluginByTag(s.opts.Plugins, n.PluginTag)
	if plug == nil {
		return "", &MissingPluginError{Tag: n.PluginTag}
	}
	expr, err := plug.Serialize(n.PluginPayload)
	if err != nil {
		return "", err
	}
	return s.assignIndexedValue(n.ID, expr), nil
}
