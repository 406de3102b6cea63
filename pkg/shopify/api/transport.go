package api

import (
	"context"
	"net/http"
	"net/url"
)

// Request is one Admin REST call. Path is relative to the shop host and
// starts with /admin/.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header
}

// Transport performs a request and returns the decoded JSON payload:
// map[string]any for objects, nil for an empty body. Numbers decode as
// json.Number. Failures should be *TransportError.
type Transport interface {
	Do(ctx context.Context, req Request) (any, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req Request) (any, error)

func (f TransportFunc) Do(ctx context.Context, req Request) (any, error) { return f(ctx, req) }
