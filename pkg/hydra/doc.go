// Package hydra provides the head registry and chained dispatch engine of the
// hydra stand-in server.
//
// # Heads and plugins
//
// A Head is a named request handler with a match predicate. Heads are grouped
// into plugins, and plugins are kept in registration order by a Registry. Three
// synthetic plugins always exist:
//
//   - *admin*: operational and introspection heads
//   - *dynamic*: heads appended at runtime
//   - *current-test*: the heads of the test that is currently running
//
// # Dispatch
//
// A request is matched against the flattened sequence of heads, plugin by
// plugin, head by head. The first attached head whose CanHandle returns true
// handles it. A head may call its Next continuation to hand the (possibly
// rewritten) request and response to the next matching head after itself:
//
//	h := hydra.New()
//	_ = h.Register(&hydra.Plugin{
//	    Name:  "example",
//	    Heads: []hydra.Head{hydra.NewHead("hello", hydra.ExactPath("/hello"), greet)},
//	})
//	res := hydra.NewResponse()
//	err := h.Dispatch(req, res)
//
// # Tests
//
// Plugins may define named tests. Starting a test installs its heads into
// *current-test* and resets its result. Assertions made through the Recorder
// are attributed to the running test.
//
// None of the types in this package are safe for concurrent mutation. Hosts
// must serialise Dispatch, Register, attach/detach and test start/stop.
package hydra
