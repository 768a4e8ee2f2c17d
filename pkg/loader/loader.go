package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/getmockd/hydra/pkg/hydra"
	"github.com/getmockd/hydra/pkg/logging"
)

// DefaultLoadPath is searched when no other load path is configured.
var DefaultLoadPath = []string{
	"hydra/plugins",
	"node_modules/hydra/plugins",
	"/usr/local/share/hydra/plugins",
	"/usr/share/hydra/plugins",
}

// Config is the configuration handed to a plugin module: the caller's
// options plus the "hydra" and "path" keys.
type Config map[string]any

// Config keys always set by Require.
const (
	ConfigHydra = "hydra"
	ConfigPath  = "path"
)

// Hydra returns the instance stored under "hydra", or nil.
func (c Config) Hydra() *hydra.Hydra {
	h, _ := c[ConfigHydra].(*hydra.Hydra)
	return h
}

// Path returns the plugin directory, empty for factories without one.
func (c Config) Path() string {
	p, _ := c[ConfigPath].(string)
	return p
}

// String returns the option as a string, or def.
func (c Config) String(key, def string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return def
}

// Module produces a plugin from its configuration.
type Module interface {
	Plugin(cfg Config) (*hydra.Plugin, error)
}

// Factory adapts a function to Module.
type Factory func(cfg Config) (*hydra.Plugin, error)

// Plugin calls f.
func (f Factory) Plugin(cfg Config) (*hydra.Plugin, error) {
	return f(cfg)
}

// Loaded is a plugin found by Require, not yet instantiated.
type Loaded struct {
	Name   string
	Module Module
	Config Config
}

// Plugin instantiates the module. The plugin takes the name it was
// required under.
func (l *Loaded) Plugin() (*hydra.Plugin, error) {
	p, err := l.Module.Plugin(l.Config)
	if err != nil {
		return nil, fmt.Errorf("plugin %q: %w", l.Name, err)
	}
	if p == nil {
		return nil, &hydra.InvalidPluginError{Name: l.Name, Reason: "module returned no plugin"}
	}
	if p.Name != "" && p.Name != l.Name {
		return nil, &hydra.InvalidPluginError{
			Name:   l.Name,
			Reason: fmt.Sprintf("module declares the name %q", p.Name),
		}
	}
	p.Name = l.Name
	return p, nil
}

// Loader resolves plugin names to modules.
type Loader struct {
	hydra     *hydra.Hydra
	loadPath  []string
	rootDir   string
	factories map[string]Module
	log       *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithRootDir prefixes every load path entry with dir. It lets tests and
// chroot-like setups use the default absolute entries.
func WithRootDir(dir string) Option {
	return func(l *Loader) { l.rootDir = dir }
}

// WithLoadPath replaces the default load path.
func WithLoadPath(paths ...string) Option {
	return func(l *Loader) { l.loadPath = slices.Clone(paths) }
}

// WithFactory registers a compiled-in module under name.
func WithFactory(name string, m Module) Option {
	return func(l *Loader) { l.factories[name] = m }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// New creates a Loader for plugins of h.
func New(h *hydra.Hydra, opts ...Option) *Loader {
	l := &Loader{
		hydra:     h,
		loadPath:  slices.Clone(DefaultLoadPath),
		factories: make(map[string]Module),
		log:       logging.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Register adds a compiled-in module.
func (l *Loader) Register(name string, m Module) {
	l.factories[name] = m
}

// AddLoadPath puts dir in front of the load path.
func (l *Loader) AddLoadPath(dir string) {
	l.loadPath = append([]string{dir}, l.loadPath...)
}

// LoadPath returns the load path in search order.
func (l *Loader) LoadPath() []string {
	return slices.Clone(l.loadPath)
}

// resolve turns a load path entry into an absolute directory.
func (l *Loader) resolve(entry string) (string, error) {
	dir := entry
	if !filepath.IsAbs(dir) {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving %s: %w", entry, err)
		}
		dir = filepath.Join(wd, dir)
	}
	if l.rootDir != "" {
		root, err := filepath.EvalSymlinks(l.rootDir)
		if err != nil {
			return "", fmt.Errorf("resolving root dir: %w", err)
		}
		dir = filepath.Join(root, dir)
	}
	return dir, nil
}

// Require finds the plugin called name. The first load path entry holding a
// directory of that name wins; a registered factory is used when there is
// one, the directory's manifest otherwise. A factory is found even without a
// directory. opts are copied into the returned Config.
func (l *Loader) Require(name string, opts map[string]any) (*Loaded, error) {
	if !hydra.ValidPluginName(name) {
		return nil, &hydra.InvalidPluginNameError{Name: name}
	}

	dir, err := l.findDir(name)
	if err != nil {
		return nil, err
	}

	var module Module
	switch factory, ok := l.factories[name]; {
	case ok:
		module = factory
	case dir != "":
		file, err := FindManifest(dir)
		if err != nil {
			return nil, &hydra.InvalidPluginError{Name: name, Reason: err.Error()}
		}
		module = manifestModule{file: file}
	default:
		return nil, &hydra.PluginNotFoundError{Name: name}
	}

	cfg := Config{ConfigHydra: l.hydra, ConfigPath: dir}
	maps.Copy(cfg, opts)

	l.log.Debug("plugin found", "plugin", name, "path", dir)
	return &Loaded{Name: name, Module: module, Config: cfg}, nil
}

func (l *Loader) findDir(name string) (string, error) {
	for _, entry := range l.loadPath {
		base, err := l.resolve(entry)
		if err != nil {
			return "", err
		}
		candidate := filepath.Join(base, name)
		info, err := os.Stat(candidate)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", fmt.Errorf("looking for plugin %q: %w", name, err)
		}
		if info.IsDir() {
			return candidate, nil
		}
	}
	return "", nil
}

// Load requires and instantiates a plugin.
func (l *Loader) Load(name string, opts map[string]any) (*hydra.Plugin, error) {
	loaded, err := l.Require(name, opts)
	if err != nil {
		return nil, err
	}
	return loaded.Plugin()
}

// Found describes an available plugin.
type Found struct {
	Name string `json:"name"`
	// Dir is empty for factories without a directory.
	Dir string `json:"dir,omitempty"`
	// Manifest is the manifest file, empty for factories.
	Manifest string `json:"manifest,omitempty"`
	Builtin  bool   `json:"builtin,omitempty"`
}

// Discover lists the plugins Require would find, sorted by name. Manifest
// plugins shadowed by an earlier load path entry are left out.
func (l *Loader) Discover() ([]Found, error) {
	found := make(map[string]Found)
	for _, entry := range l.loadPath {
		base, err := l.resolve(entry)
		if err != nil {
			return nil, err
		}
		matches, err := doublestar.Glob(os.DirFS(base), "*/plugin.{yaml,yml,json}")
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("scanning %s: %w", base, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			name := filepath.Dir(filepath.FromSlash(m))
			if _, seen := found[name]; seen || !hydra.ValidPluginName(name) {
				continue
			}
			file, err := FindManifest(filepath.Join(base, name))
			if err != nil {
				continue
			}
			found[name] = Found{Name: name, Dir: filepath.Join(base, name), Manifest: file}
		}
	}
	for name := range l.factories {
		f := found[name]
		f.Name = name
		f.Manifest = ""
		f.Builtin = true
		found[name] = f
	}

	out := make([]Found, 0, len(found))
	for _, f := range found {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
