package vgraph

import "context"

// AsyncParser is the §4.4.2 asynchronous parser variant: it awaits
// Promise values, which the synchronous parser rejects, and walks
// Blob/File/Request/Response bodies with the async walk. It embeds a
// Parser and only overrides those dispatch cases.
//
// The host graph handed to this package is already fully materialized
// data (§1: this package receives values, it does not itself talk to
// a JS runtime), so there is no actual pending I/O to wait on here —
// "awaiting" a Promise Value means reading its precomputed
// Settled/Rejected/Resolution fields. The context.Context parameter is
// carried anyway, in the teacher's style of threading cancellation
// through anything nominally blocking (stream/cursor.go's ReadFrame),
// so a caller wrapping a real async producer behind this API can still
// cancel a long walk.
type AsyncParser struct {
	*Parser
}

// NewAsyncParser creates an asynchronous parser sharing Options with
// the synchronous constructor.
func NewAsyncParser(opts Options) *AsyncParser {
	return &AsyncParser{Parser: NewParser(opts)}
}

// ParseAsync walks root, awaiting Promises and draining request/response
// bodies as it goes. It returns ctx.Err() immediately if ctx is already
// canceled, matching the cancellation-check-before-work idiom in
// stream/cursor.go's ReadFrame.
func (p *AsyncParser) ParseAsync(ctx context.Context, root *Value) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.parseValueAsync(ctx, root)
}

// parseValueAsync mirrors Parser.parseValue's dispatch, delegating
// every case the synchronous walk already handles correctly and only
// special-casing Promise and the body-bearing Web API kinds, whose
// nested values may themselves need draining.
func (p *AsyncParser) parseValueAsync(ctx context.Context, v *Value) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if v == nil || v.IsPrimitive() {
		return p.parseValue(v)
	}

	if tag, ok := p.opts.registry().TagFor(v); ok {
		id, first := p.assignID(v)
		if !first {
			return NewIndexedValue(id), nil
		}
		return &Node{Tag: TagReference, ID: id, RefTag: tag}, nil
	}

	switch v.Kind {
	case KindPromise:
		return p.parsePromiseAsync(ctx, v)
	case KindBlob:
		return p.drainBlobAsync(ctx, v)
	case KindFile:
		return p.drainFileAsync(ctx, v)
	case KindRequest:
		return p.drainRequestAsync(ctx, v)
	case KindResponse:
		return p.drainResponseAsync(ctx, v)
	default:
		return p.parseValue(v)
	}
}

// parsePromiseAsync assigns the promise its own id (a Promise is a
// non-primitive value like any other and can be aliased/cycled into),
// then walks its resolution — which itself may be another Promise,
// requiring recursive awaiting.
func (p *AsyncParser) parsePromiseAsync(ctx context.Context, v *Value) (*Node, error) {
	if !p.features.Has(FeaturePromise) {
		return nil, &FeatureDisabledError{Feature: FeaturePromise, Kind: "Promise"}
	}
	id, first := p.assignID(v)
	if !first {
		return NewIndexedValue(id), nil
	}

	var resolution *Node
	if v.Resolution != nil {
		r, err := p.parseValueAsync(ctx, v.Resolution)
		if err != nil {
			return nil, err
		}
		resolution = r
	}
	return &Node{
		Tag: TagPromise, ID: id,
		Resolved:   v.Settled && !v.Rejected,
		Resolution: resolution,
	}, nil
}

func (p *AsyncParser) drainBlobAsync(ctx context.Context, v *Value) (*Node, error) {
	if !p.features.Has(FeatureWebAPI) {
		return nil, &FeatureDisabledError{Feature: FeatureWebAPI, Kind: "Blob"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, first := p.assignID(v)
	if !first {
		return NewIndexedValue(id), nil
	}
	// Bytes are already materialized on the Value; "draining" here is
	// only the async contract, not additional I/O.
	bufNode, err := p.parseValueAsync(ctx, p.bodyBufferValue(v))
	if err != nil {
		return nil, err
	}
	return &Node{Tag: TagBlob, ID: id, MIMEType: v.MIMEType, BodyBuffer: bufNode}, nil
}

func (p *AsyncParser) drainFileAsync(ctx context.Context, v *Value) (*Node, error) {
	if !p.features.Has(FeatureWebAPI) {
		return nil, &FeatureDisabledError{Feature: FeatureWebAPI, Kind: "File"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, first := p.assignID(v)
	if !first {
		return NewIndexedValue(id), nil
	}
	bufNode, err := p.parseValueAsync(ctx, p.bodyBufferValue(v))
	if err != nil {
		return nil, err
	}
	return &Node{Tag: TagFile, ID: id, MIMEType: v.MIMEType, FileName: v.FileName, LastModified: v.LastModified, BodyBuffer: bufNode}, nil
}

func (p *AsyncParser) drainRequestAsync(ctx context.Context, v *Value) (*Node, error) {
	if !p.features.Has(FeatureWebAPI) {
		return nil, &FeatureDisabledError{Feature: FeatureWebAPI, Kind: "Request"}
	}
	id, first := p.assignID(v)
	if !first {
		return NewIndexedValue(id), nil
	}
	var headersNode, bodyNode *Node
	var err error
	if v.Headers != nil {
		headersNode, err = p.parseValueAsync(ctx, v.Headers)
		if err != nil {
			return nil, err
		}
	}
	if v.Body != nil {
		bodyNode, err = p.parseValueAsync(ctx, v.Body)
		if err != nil {
			return nil, err
		}
	}
	return &Node{Tag: TagRequest, ID: id, Href: v.URLOrStatus, Method: v.Method, ReqHeaders: headersNode, ReqBody: bodyNode}, nil
}

func (p *AsyncParser) drainResponseAsync(ctx context.Context, v *Value) (*Node, error) {
	if !p.features.Has(FeatureWebAPI) {
		return nil, &FeatureDisabledError{Feature: FeatureWebAPI, Kind: "Response"}
	}
	id, first := p.assignID(v)
	if !first {
		return NewIndexedValue(id), nil
	}
	var headersNode, bodyNode *Node
	var err error
	if v.Headers != nil {
		headersNode, err = p.parseValueAsync(ctx, v.Headers)
		if err != nil {
			return nil, err
		}
	}
	if v.Body != nil {
		bodyNode, err = p.parseValueAsync(ctx, v.Body)
		if err != nil {
			return nil, err
		}
	}
	return &Node{Tag: TagResponse, ID: id, StatusCode: v.StatusCode, StatusText: v.StatusText, ReqHeaders: headersNode, ReqBody: bodyNode}, nil
}
