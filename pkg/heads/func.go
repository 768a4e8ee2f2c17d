package heads

import (
	"regexp"

	"github.com/getmockd/hydra/pkg/hydra"
)

// Func is a head running a Go handler for every path matching its pattern.
type Func struct {
	hydra.HeadBase
	path    *regexp.Regexp
	handler hydra.HandlerFunc
}

// NewFunc creates a Func head. An empty path matches everything.
func NewFunc(name, path string, handler hydra.HandlerFunc) (*Func, error) {
	re, err := compilePath(path)
	if err != nil {
		return nil, err
	}
	return &Func{HeadBase: hydra.NewHeadBase(name), path: re, handler: handler}, nil
}

// MustFunc is NewFunc that panics on an invalid path pattern.
func MustFunc(name, path string, handler hydra.HandlerFunc) *Func {
	f, err := NewFunc(name, path, handler)
	if err != nil {
		panic(err)
	}
	return f
}

// CanHandle reports whether the path matches the pattern.
func (f *Func) CanHandle(url string) bool {
	return f.path.MatchString(hydra.StripQuery(url))
}

// Handle runs the handler.
func (f *Func) Handle(req *hydra.Request, res *hydra.Response, next hydra.Next) error {
	return f.handler(req, res, next)
}
