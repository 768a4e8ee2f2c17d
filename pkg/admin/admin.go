package admin

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/getmockd/hydra/pkg/heads"
	"github.com/getmockd/hydra/pkg/httputil"
	"github.com/getmockd/hydra/pkg/hydra"
	"github.com/getmockd/hydra/pkg/logging"
)

// Prefix is the path every admin head lives under.
const Prefix = "/hydra-admin"

// API serves the admin endpoints of one hydra.
type API struct {
	hydra   *hydra.Hydra
	metrics http.Handler
	log     *slog.Logger
	version string
	baseDir string
	started time.Time
}

// Option configures an API.
type Option func(*API)

// WithMetrics serves h at /hydra-admin/metrics.
func WithMetrics(h http.Handler) Option {
	return func(a *API) { a.metrics = h }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *API) {
		if log != nil {
			a.log = log
		}
	}
}

// WithVersion sets the version reported by /hydra-admin/health.
func WithVersion(v string) Option {
	return func(a *API) { a.version = v }
}

// WithBaseDir resolves relative document roots of dynamic heads.
func WithBaseDir(dir string) Option {
	return func(a *API) { a.baseDir = dir }
}

// New creates the admin API for h.
func New(h *hydra.Hydra, opts ...Option) *API {
	a := &API{
		hydra:   h,
		log:     logging.Nop(),
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Heads returns a builder suitable for hydra.WithAdminHeads.
func Heads(opts ...Option) func(*hydra.Hydra) []hydra.Head {
	return func(h *hydra.Hydra) []hydra.Head {
		return New(h, opts...).Heads()
	}
}

type handlerFunc func(req *hydra.Request, res *hydra.Response) error

// Heads returns the admin heads.
func (a *API) Heads() []hydra.Head {
	return []hydra.Head{
		a.route("plugins", "/plugins", a.handleListPlugins, http.MethodGet),
		a.route("dynamic-head", "/heads/dynamic", a.handleAddDynamicHead, http.MethodPost),
		a.route("head-state", "/heads/[^/]+/[^/]+/(attach|detach)", a.handleHeadState, http.MethodPost),
		a.route("stop-test", "/tests/stop", a.handleStopTest, http.MethodPost),
		a.route("current-test", "/tests/current", a.handleCurrentTest, http.MethodGet),
		a.route("test-results", "/tests/results", a.handleTestResults, http.MethodGet),
		a.route("start-test", "/tests/[^/]+/[^/]+/start", a.handleStartTest, http.MethodPost),
		a.route("metrics", "/metrics", a.handleMetrics, http.MethodGet),
		a.route("health", "/health", a.handleHealth, http.MethodGet),
	}
}

// route wraps an endpoint into a head answering errors as JSON.
func (a *API) route(name, pattern string, h handlerFunc, methods ...string) hydra.Head {
	return heads.MustFunc(name, Prefix+pattern, func(req *hydra.Request, res *hydra.Response, _ hydra.Next) error {
		if !slices.Contains(methods, req.Method) {
			httputil.WriteMethodNotAllowed(res, methods...)
			return nil
		}
		if err := h(req, res); err != nil {
			a.log.Debug("admin request failed", "path", req.Path(), "error", err)
			httputil.WriteErr(res, err)
		}
		return nil
	})
}

// segments returns the unescaped path segments below Prefix.
func segments(req *hydra.Request) []string {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(req.Path(), Prefix), "/"), "/")
	for i, p := range parts {
		if s, err := url.PathUnescape(p); err == nil {
			parts[i] = s
		}
	}
	return parts
}
