package transform

import "context"

// Request is what a chain knows about the call it runs for: the version the
// client is pinned to, if any, and the surrounding request value, which is
// handed to transforms untouched.
type Request struct {
	version    int
	hasVersion bool
	raw        any
}

// NewRequest wraps raw (an *http.Request, a Kafka message, ...) without a
// version.
func NewRequest(raw any) *Request {
	return &Request{raw: raw}
}

// WithVersion returns a copy of r pinned to v. Zero is a valid version.
func (r *Request) WithVersion(v int) *Request {
	out := &Request{version: v, hasVersion: true}
	if r != nil {
		out.raw = r.raw
	}
	return out
}

// Version reports the requested version and whether one was set at all.
func (r *Request) Version() (int, bool) {
	if r == nil {
		return 0, false
	}
	return r.version, r.hasVersion
}

func (r *Request) Raw() any {
	if r == nil {
		return nil
	}
	return r.raw
}

type requestCtxKey struct{}

// ContextWithRequest stores r in ctx.
func ContextWithRequest(ctx context.Context, r *Request) context.Context {
	return context.WithValue(ctx, requestCtxKey{}, r)
}

// RequestFromContext returns the request stored in ctx.
func RequestFromContext(ctx context.Context) (*Request, bool) {
	r, ok := ctx.Value(requestCtxKey{}).(*Request)
	return r, ok && r != nil
}
