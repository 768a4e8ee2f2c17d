package hydra

import "strings"

// Next hands a request and response to the next matching head after the one
// that received it. Both arguments are required.
type Next func(req *Request, res *Response) error

// HandlerFunc is the signature of a head's request handler.
type HandlerFunc func(req *Request, res *Response, next Next) error

// Head is a named, attachable request handler.
//
// Implementations embed HeadBase, which provides the name and attachment
// state the registry manages.
type Head interface {
	// Name returns the head's name, empty until the registry assigns one.
	Name() string
	// CanHandle reports whether the head wants to handle the request target.
	// It must not have side effects.
	CanHandle(url string) bool
	// Handle serves the request. It may call next to delegate to later heads.
	Handle(req *Request, res *Response, next Next) error
	// Attached reports whether dispatch considers this head.
	Attached() bool
	// Attach makes the head eligible for dispatch.
	Attach()
	// Detach removes the head from dispatch without unregistering it.
	Detach()

	setName(name string)
}

// HeadBase holds the registry-managed state of a head.
type HeadBase struct {
	name     string
	detached bool
}

// NewHeadBase returns a HeadBase with the given name. An empty name is
// replaced by a generated one at registration.
func NewHeadBase(name string) HeadBase {
	return HeadBase{name: name}
}

// Name returns the head name.
func (b *HeadBase) Name() string { return b.name }

// Attached reports whether the head takes part in dispatch.
func (b *HeadBase) Attached() bool { return !b.detached }

// Attach makes the head eligible for dispatch.
func (b *HeadBase) Attach() { b.detached = false }

// Detach removes the head from dispatch.
func (b *HeadBase) Detach() { b.detached = true }

func (b *HeadBase) setName(name string) { b.name = name }

// funcHead is a head built from a predicate and a handler function.
type funcHead struct {
	HeadBase
	match  func(url string) bool
	handle HandlerFunc
}

// NewHead builds a head from a match predicate and a handler.
func NewHead(name string, match func(url string) bool, handle HandlerFunc) Head {
	return &funcHead{HeadBase: NewHeadBase(name), match: match, handle: handle}
}

func (h *funcHead) CanHandle(url string) bool {
	if h.match == nil {
		return false
	}
	return h.match(url)
}

func (h *funcHead) Handle(req *Request, res *Response, next Next) error {
	return h.handle(req, res, next)
}

// MatchAll is a predicate accepting every request target.
func MatchAll(string) bool { return true }

// ExactPath returns a predicate matching one path, ignoring the query string.
func ExactPath(path string) func(string) bool {
	return func(url string) bool {
		return StripQuery(url) == path
	}
}

// PathPrefix returns a predicate matching every path under prefix.
func PathPrefix(prefix string) func(string) bool {
	return func(url string) bool {
		return strings.HasPrefix(StripQuery(url), prefix)
	}
}

// StripQuery removes the query string and fragment from a request target.
func StripQuery(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		return url[:i]
	}
	return url
}
