// Package heads provides the stock head variants of hydra.
//
//   - Static: canned content, optionally cycling through several responses
//   - Filesystem: files under a document root
//   - Proxy: reverse proxy to an upstream server
//   - Func: a Go handler function
//   - Filter: rewrites the body produced by the rest of the chain
//   - Expr: declarative logic with expr-lang conditions and recorded assertions
//
// Path patterns are regular expressions anchored at both ends. A trailing
// slash is optional and the query string is ignored, so "/api/users" matches
// "/api/users/" and "/api/users?page=2". Mount paths are plain prefixes.
//
// Spec describes any of these declaratively; Build turns a Spec into a head.
package heads
