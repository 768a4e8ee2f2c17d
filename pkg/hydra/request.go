package hydra

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// MaxRequestBodySize is the largest request body NewRequest buffers (10MB).
const MaxRequestBodySize = 10 << 20

// ErrBodyTooLarge is returned by NewRequest when the body exceeds MaxRequestBodySize.
var ErrBodyTooLarge = errors.New("request body too large")

// Request is the buffered request carried through the head chain. Heads may
// hand a modified copy to the next head.
type Request struct {
	Method string
	// URL is the request target: path plus optional query string. Heads match on it.
	URL        string
	Host       string
	Header     http.Header
	Body       []byte
	RemoteAddr string

	ctx context.Context
}

// NewRequest buffers an incoming HTTP request.
func NewRequest(r *http.Request) (*Request, error) {
	var body []byte
	if r.Body != nil {
		data, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
		if len(data) > MaxRequestBodySize {
			return nil, ErrBodyTooLarge
		}
		body = data
	}

	target := r.RequestURI
	if target == "" {
		target = r.URL.RequestURI()
	}

	return &Request{
		Method:     r.Method,
		URL:        target,
		Host:       r.Host,
		Header:     r.Header.Clone(),
		Body:       body,
		RemoteAddr: r.RemoteAddr,
		ctx:        r.Context(),
	}, nil
}

// BuildRequest creates a request from its parts. It is mostly useful to heads
// that forge sub-requests, and to tests.
func BuildRequest(method, target string, body []byte) *Request {
	if method == "" {
		method = http.MethodGet
	}
	return &Request{
		Method: method,
		URL:    target,
		Header: make(http.Header),
		Body:   body,
	}
}

// Context returns the request's context, never nil.
func (r *Request) Context() context.Context {
	if r.ctx != nil {
		return r.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of r using ctx.
func (r *Request) WithContext(ctx context.Context) *Request {
	r2 := *r
	r2.ctx = ctx
	return &r2
}

// Path returns the request path without the query string.
func (r *Request) Path() string {
	return StripQuery(r.URL)
}

// Query parses the query string of the request target.
func (r *Request) Query() url.Values {
	_, raw, ok := strings.Cut(r.URL, "?")
	if !ok {
		return url.Values{}
	}
	raw, _, _ = strings.Cut(raw, "#")
	values, err := url.ParseQuery(raw)
	if err != nil {
		return url.Values{}
	}
	return values
}

// Clone returns a deep copy of the request.
func (r *Request) Clone() *Request {
	r2 := *r
	r2.Header = r.Header.Clone()
	if r.Body != nil {
		r2.Body = bytes.Clone(r.Body)
	}
	return &r2
}

// HTTPRequest converts the request back into an *http.Request so standard
// library handlers can serve it.
func (r *Request) HTTPRequest() (*http.Request, error) {
	hr, err := http.NewRequestWithContext(r.Context(), r.Method, r.URL, bytes.NewReader(r.Body))
	if err != nil {
		return nil, fmt.Errorf("building http request for %s: %w", r.URL, err)
	}
	if r.Header != nil {
		hr.Header = r.Header.Clone()
	}
	hr.Host = r.Host
	hr.RemoteAddr = r.RemoteAddr
	hr.RequestURI = r.URL
	return hr, nil
}
