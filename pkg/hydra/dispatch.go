package hydra

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/getmockd/hydra/pkg/logging"
)

// notFoundBody is the body sent when no head matches.
const notFoundBody = "Not Found"

// Match is a resolved head together with its owning plugin.
type Match struct {
	Plugin *Plugin
	Head   Head
}

// Ref returns the identity of the matched head.
func (m *Match) Ref() HeadRef {
	return HeadRef{Plugin: m.Plugin.Name, Head: m.Head.Name()}
}

// cursor is a position in the flattened head sequence.
type cursor struct {
	plugin int
	head   int
}

// Dispatcher resolves requests to heads and runs them.
type Dispatcher struct {
	registry *Registry
	observer Observer
	log      *slog.Logger
}

// NewDispatcher creates a dispatcher over registry.
func NewDispatcher(registry *Registry, observer Observer, log *slog.Logger) *Dispatcher {
	if observer == nil {
		observer = NopObserver{}
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Dispatcher{registry: registry, observer: observer, log: log}
}

// Resolve returns the first attached head, in global registration order,
// whose CanHandle accepts url. When after is set only heads strictly after it
// are considered; an after that is not registered matches nothing.
func (d *Dispatcher) Resolve(url string, after *HeadRef) *Match {
	start, ok := d.startCursor(after)
	if !ok {
		return nil
	}

	plugins := d.registry.plugins
	for pi, first := start.plugin, start.head; pi < len(plugins); pi, first = pi+1, 0 {
		plugin := plugins[pi].plugin
		for hi := first; hi < len(plugin.Heads); hi++ {
			h := plugin.Heads[hi]
			if h.Attached() && h.CanHandle(url) {
				return &Match{Plugin: plugin, Head: h}
			}
		}
	}
	return nil
}

// startCursor returns the position right after the head identified by after.
func (d *Dispatcher) startCursor(after *HeadRef) (cursor, bool) {
	if after == nil {
		return cursor{}, true
	}
	for pi, e := range d.registry.plugins {
		if e.plugin.Name != after.Plugin {
			continue
		}
		for hi, h := range e.plugin.Heads {
			if h.Name() == after.Head {
				return cursor{plugin: pi, head: hi + 1}, true
			}
		}
	}
	return cursor{}, false
}

// Dispatch serves req with the first matching head after the given position
// (nil for the beginning). Assertion failures raised by the head end the
// response and are not returned; any other error is.
func (d *Dispatcher) Dispatch(req *Request, res *Response, after *HeadRef) error {
	m := d.Resolve(req.URL, after)
	if m == nil {
		d.observer.NotFound(req.URL)
		res.WriteHeader(http.StatusNotFound)
		if err := res.Send([]byte(notFoundBody)); err != nil && !errors.Is(err, ErrResponseEnded) {
			return err
		}
		return nil
	}

	ref := m.Ref()
	d.log.Debug("head matched", "url", req.URL, "plugin", ref.Plugin, "head", ref.Head)
	d.observer.HeadMatched(ref.Plugin, ref.Head)

	res.WriteHeader(http.StatusOK)
	err := m.Head.Handle(req, res, continuation{dispatcher: d, from: ref}.next)

	var failure *AssertionFailure
	if errors.As(err, &failure) {
		d.log.Warn("assertion failed while handling request",
			"url", req.URL, "plugin", ref.Plugin, "head", ref.Head, "assertion", failure.Label)
		res.End()
		return nil
	}
	return err
}

// continuation resumes dispatch right after the head at from.
type continuation struct {
	dispatcher *Dispatcher
	from       HeadRef
}

func (c continuation) next(req *Request, res *Response) error {
	if req == nil || res == nil {
		return &InvalidNextParametersError{Plugin: c.from.Plugin, Head: c.from.Head}
	}
	return c.dispatcher.Dispatch(req, res, &c.from)
}
