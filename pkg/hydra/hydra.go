package hydra

import (
	"log/slog"

	"github.com/getmockd/hydra/pkg/logging"
)

// Hydra owns one registry together with its dispatcher, test session and
// assertion recorder.
type Hydra struct {
	registry   *Registry
	session    *Session
	dispatcher *Dispatcher
	recorder   *Recorder
	log        *slog.Logger
}

// Option configures a Hydra.
type Option func(*options)

type options struct {
	log        *slog.Logger
	observer   Observer
	adminHeads func(*Hydra) []Head
}

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithObserver sets the observer notified of matches and assertions.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// WithAdminHeads sets the function building the heads of the *admin* plugin.
// It receives the Hydra being constructed.
func WithAdminHeads(build func(*Hydra) []Head) Option {
	return func(o *options) {
		o.adminHeads = build
	}
}

// New creates a Hydra with an empty registry. It panics if the admin heads
// cannot be installed, which only happens when they carry duplicate names.
func New(opts ...Option) *Hydra {
	o := options{log: logging.Nop(), observer: NopObserver{}}
	for _, opt := range opts {
		opt(&o)
	}

	registry := NewRegistry()
	session := NewSession(registry, o.log)
	h := &Hydra{
		registry:   registry,
		session:    session,
		dispatcher: NewDispatcher(registry, o.observer, o.log),
		recorder:   NewRecorder(session, o.observer),
		log:        o.log,
	}

	if o.adminHeads != nil {
		if err := registry.installAdminHeads(o.adminHeads(h)); err != nil {
			panic("hydra: installing admin heads: " + err.Error())
		}
	}
	return h
}

// Registry returns the plugin registry.
func (h *Hydra) Registry() *Registry { return h.registry }

// Session returns the test session.
func (h *Hydra) Session() *Session { return h.session }

// Dispatcher returns the dispatcher.
func (h *Hydra) Dispatcher() *Dispatcher { return h.dispatcher }

// Assert returns the assertion recorder for plugin and test authors.
func (h *Hydra) Assert() *Recorder { return h.recorder }

// Logger returns the operational logger.
func (h *Hydra) Logger() *slog.Logger { return h.log }

// Register registers a plugin.
func (h *Hydra) Register(p *Plugin) error {
	if err := h.registry.Register(p); err != nil {
		return err
	}
	h.log.Debug("plugin registered", "plugin", p.Name, "heads", len(p.Heads), "tests", len(p.Tests))
	return nil
}

// RegisterDynamicHead appends a head to the *dynamic* plugin.
func (h *Hydra) RegisterDynamicHead(head Head) error {
	return h.registry.RegisterDynamicHead(head)
}

// StartTest starts the named test.
func (h *Hydra) StartTest(pluginName, testName string) error {
	return h.session.StartTest(pluginName, testName)
}

// StopTest stops the running test.
func (h *Hydra) StopTest() {
	h.session.StopTest()
}

// Dispatch serves a request from the first matching head.
func (h *Hydra) Dispatch(req *Request, res *Response) error {
	return h.dispatcher.Dispatch(req, res, nil)
}
