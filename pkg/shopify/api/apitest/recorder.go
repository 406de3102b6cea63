// Package apitest provides a recording api.Transport for tests.
package apitest

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"shopifyapi/pkg/shopify/api"
)

// Call is one request seen by a Recorder. Body is a deep copy taken when
// the call was made.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Recorder answers requests from canned responses keyed by method and path
// and records every call. Unmatched requests fail with a 404 TransportError
// unless Fallback is set.
type Recorder struct {
	mu        sync.Mutex
	calls     []Call
	responses map[string]response

	// Fallback, when set, answers requests with no canned response.
	Fallback func(req api.Request) (any, error)
}

type response struct {
	body any
	err  error
}

var _ api.Transport = (*Recorder)(nil)

func New() *Recorder {
	return &Recorder{responses: map[string]response{}}
}

// On registers the payload returned for method and path. Each call gets a
// fresh deep copy.
func (r *Recorder) On(method, path string, body any) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[method+" "+path] = response{body: body}
	return r
}

// Fail registers an error returned for method and path.
func (r *Recorder) Fail(method, path string, err error) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[method+" "+path] = response{err: err}
	return r
}

func (r *Recorder) Do(_ context.Context, req api.Request) (any, error) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{
		Method: req.Method,
		Path:   req.Path,
		Query:  req.Query,
		Body:   api.CloneValue(req.Body),
	})
	resp, ok := r.responses[req.Method+" "+req.Path]
	fallback := r.Fallback
	r.mu.Unlock()

	if !ok {
		if fallback != nil {
			return fallback(req)
		}
		return nil, &api.TransportError{Method: req.Method, Path: req.Path, StatusCode: http.StatusNotFound}
	}
	if resp.err != nil {
		return nil, resp.err
	}
	return api.CloneValue(resp.body), nil
}

// Calls returns the recorded calls in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Last returns the most recent call.
func (r *Recorder) Last() Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return Call{}
	}
	return r.calls[len(r.calls)-1]
}

// Count returns how many calls used method; an empty method counts all.
func (r *Recorder) Count(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if method == "" {
		return len(r.calls)
	}
	n := 0
	for _, c := range r.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls and keeps the canned responses.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
