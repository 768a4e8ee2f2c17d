package hydra

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
)

// Names of the synthetic plugins every registry contains, in order.
const (
	AdminPlugin       = "*admin*"
	DynamicPlugin     = "*dynamic*"
	CurrentTestPlugin = "*current-test*"
)

// anonymousHeadPrefix prefixes generated head names.
const anonymousHeadPrefix = "anonymousHead"

var pluginNamePattern = regexp.MustCompile(`(?i)^[a-z0-9_-]+$`)

// Plugin is a named, ordered bundle of heads plus named tests.
type Plugin struct {
	Name  string
	Heads []Head
	Tests map[string]TestDefinition
}

// TestDefinition is the bundle of heads installed while a test runs.
type TestDefinition struct {
	Heads []Head
	// Instructions tell a human tester what to do while the test is active.
	Instructions string
}

// HeadRef identifies a head by plugin and head name.
type HeadRef struct {
	Plugin string `json:"plugin"`
	Head   string `json:"head"`
}

func (r HeadRef) String() string {
	return r.Plugin + "/" + r.Head
}

type pluginEntry struct {
	plugin *Plugin
	heads  map[string]Head
}

// Registry is the ordered collection of plugins.
type Registry struct {
	plugins []*pluginEntry
}

// NewRegistry returns a registry holding only the synthetic plugins.
func NewRegistry() *Registry {
	r := &Registry{}
	for _, name := range []string{AdminPlugin, DynamicPlugin, CurrentTestPlugin} {
		r.plugins = append(r.plugins, newPluginEntry(name))
	}
	return r
}

func newPluginEntry(name string) *pluginEntry {
	return &pluginEntry{
		plugin: &Plugin{Name: name, Tests: map[string]TestDefinition{}},
		heads:  make(map[string]Head),
	}
}

// ValidPluginName reports whether name is acceptable for a registered plugin.
func ValidPluginName(name string) bool {
	return pluginNamePattern.MatchString(name)
}

// Register validates p and appends it to the registry. On error the registry
// and the plugin's heads are left untouched.
func (r *Registry) Register(p *Plugin) error {
	if p == nil {
		return &InvalidPluginError{Reason: "plugin is nil"}
	}
	if !ValidPluginName(p.Name) {
		return &InvalidPluginNameError{Name: p.Name}
	}
	if len(p.Heads) == 0 && len(p.Tests) == 0 {
		return &InvalidPluginError{Name: p.Name, Reason: "plugin doesn't have any heads or tests"}
	}
	if r.entry(p.Name) != nil {
		return &DuplicatePluginError{Name: p.Name}
	}

	entry := &pluginEntry{plugin: p, heads: make(map[string]Head)}
	if err := entry.addHeads(p.Heads); err != nil {
		return err
	}
	if p.Tests == nil {
		p.Tests = map[string]TestDefinition{}
	}
	r.plugins = append(r.plugins, entry)
	return nil
}

// RegisterDynamicHead appends a head to the *dynamic* plugin.
func (r *Registry) RegisterDynamicHead(h Head) error {
	entry := r.mustEntry(DynamicPlugin)
	if err := entry.addHeads([]Head{h}); err != nil {
		return err
	}
	entry.plugin.Heads = append(entry.plugin.Heads, h)
	return nil
}

// installAdminHeads appends heads to the *admin* plugin.
func (r *Registry) installAdminHeads(heads []Head) error {
	entry := r.mustEntry(AdminPlugin)
	if err := entry.addHeads(heads); err != nil {
		return err
	}
	entry.plugin.Heads = append(entry.plugin.Heads, heads...)
	return nil
}

// replaceCurrentTest swaps the *current-test* plugin for a fresh one holding
// heads. Nothing changes on error.
func (r *Registry) replaceCurrentTest(heads []Head) error {
	fresh := newPluginEntry(CurrentTestPlugin)
	if err := fresh.addHeads(heads); err != nil {
		return err
	}
	fresh.plugin.Heads = append(fresh.plugin.Heads, heads...)
	for i, e := range r.plugins {
		if e.plugin.Name == CurrentTestPlugin {
			r.plugins[i] = fresh
			return nil
		}
	}
	panic("hydra: internal error: couldn't find the " + CurrentTestPlugin + " plugin")
}

// addHeads names the unnamed heads and indexes them. Names are staged first
// so a duplicate leaves both the entry and the heads unchanged.
func (e *pluginEntry) addHeads(heads []Head) error {
	staged := make(map[string]bool, len(heads))
	taken := func(name string) bool {
		_, ok := e.heads[name]
		return ok || staged[name]
	}

	names := make([]string, len(heads))
	anonymous := 0
	for i, h := range heads {
		if h == nil {
			return &InvalidPluginError{Name: e.plugin.Name, Reason: fmt.Sprintf("head %d is nil", i)}
		}
		name := h.Name()
		if name == "" {
			name = anonymousHeadPrefix + strconv.Itoa(anonymous)
			anonymous++
			for taken(name) {
				name = anonymousHeadPrefix + strconv.Itoa(anonymous)
				anonymous++
			}
		}
		if taken(name) {
			return &DuplicateHeadNameError{Plugin: e.plugin.Name, Head: name}
		}
		staged[name] = true
		names[i] = name
	}

	for i, h := range heads {
		if h.Name() == "" {
			h.setName(names[i])
		}
		e.heads[names[i]] = h
	}
	return nil
}

func (r *Registry) entry(name string) *pluginEntry {
	for _, e := range r.plugins {
		if e.plugin.Name == name {
			return e
		}
	}
	return nil
}

func (r *Registry) mustEntry(name string) *pluginEntry {
	e := r.entry(name)
	if e == nil {
		panic("hydra: internal error: couldn't find the " + name + " plugin")
	}
	return e
}

// PluginNames returns plugin names in registration order.
func (r *Registry) PluginNames() []string {
	names := make([]string, len(r.plugins))
	for i, e := range r.plugins {
		names[i] = e.plugin.Name
	}
	return names
}

// Plugins returns copies of the plugins in registration order. Changing a
// copy does not change the registry; use Register and RegisterDynamicHead.
func (r *Registry) Plugins() []*Plugin {
	plugins := make([]*Plugin, len(r.plugins))
	for i, e := range r.plugins {
		plugins[i] = e.plugin.clone()
	}
	return plugins
}

// Plugin returns a copy of the plugin called name.
func (r *Registry) Plugin(name string) (*Plugin, error) {
	e := r.entry(name)
	if e == nil {
		return nil, &PluginNotFoundError{Name: name}
	}
	return e.plugin.clone(), nil
}

// clone copies the head slices and the test map. Heads are shared.
func (p *Plugin) clone() *Plugin {
	c := &Plugin{Name: p.Name, Heads: slices.Clone(p.Heads)}
	if p.Tests != nil {
		c.Tests = make(map[string]TestDefinition, len(p.Tests))
		for name, t := range p.Tests {
			c.Tests[name] = TestDefinition{Heads: slices.Clone(t.Heads), Instructions: t.Instructions}
		}
	}
	return c
}

// FindHead returns the head headName of plugin pluginName.
func (r *Registry) FindHead(pluginName, headName string) (Head, error) {
	e := r.entry(pluginName)
	if e == nil {
		return nil, &HeadNotFoundError{Plugin: pluginName, Head: headName}
	}
	h, ok := e.heads[headName]
	if !ok {
		return nil, &HeadNotFoundError{Plugin: pluginName, Head: headName}
	}
	return h, nil
}

// IsHeadAttached reports whether the head takes part in dispatch.
func (r *Registry) IsHeadAttached(pluginName, headName string) (bool, error) {
	h, err := r.FindHead(pluginName, headName)
	if err != nil {
		return false, err
	}
	return h.Attached(), nil
}

// AttachHead makes a head eligible for dispatch again.
func (r *Registry) AttachHead(pluginName, headName string) error {
	h, err := r.FindHead(pluginName, headName)
	if err != nil {
		return err
	}
	h.Attach()
	return nil
}

// DetachHead removes a head from dispatch.
func (r *Registry) DetachHead(pluginName, headName string) error {
	h, err := r.FindHead(pluginName, headName)
	if err != nil {
		return err
	}
	h.Detach()
	return nil
}
