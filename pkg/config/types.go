package config

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// DefaultPort is the port used when none is configured.
const DefaultPort = 3000

// ServerConfiguration defines the hydra server settings.
type ServerConfiguration struct {
	// Host is the interface to listen on ("" = all interfaces)
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	// Port is the HTTP port (0 = pick a free port)
	Port int `json:"port" yaml:"port"`
	// ReadTimeout is the HTTP read timeout in seconds
	ReadTimeout int `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`
	// WriteTimeout is the HTTP write timeout in seconds
	WriteTimeout int `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`
	// RootDir prefixes every plugin load path entry
	RootDir string `json:"rootDir,omitempty" yaml:"rootDir,omitempty"`
	// PluginLoadPath is searched before the default load path
	PluginLoadPath []string `json:"pluginLoadPath,omitempty" yaml:"pluginLoadPath,omitempty"`
	// Plugins are loaded in order at startup
	Plugins []PluginRef `json:"plugins,omitempty" yaml:"plugins,omitempty"`
	// Log configures logging
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
	// Format is text or json
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
	// File receives a JSON copy of every record
	File string `json:"file,omitempty" yaml:"file,omitempty"`
}

// PluginRef names a plugin to load and its options. In files it is either
// the bare plugin name or an object with name and config.
type PluginRef struct {
	Name   string         `json:"name" yaml:"name"`
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

var errPluginRefShape = errors.New("plugin entry must be a name or an object with name and config")

// UnmarshalYAML accepts a scalar name or a mapping.
func (p *PluginRef) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		p.Name = value.Value
		p.Config = nil
		return nil
	case yaml.MappingNode:
		type plain PluginRef
		var v plain
		if err := value.Decode(&v); err != nil {
			return err
		}
		*p = PluginRef(v)
		return nil
	default:
		return fmt.Errorf("line %d: %w", value.Line, errPluginRefShape)
	}
}

// UnmarshalJSON accepts a string name or an object.
func (p *PluginRef) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		p.Name = name
		p.Config = nil
		return nil
	}
	type plain PluginRef
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return errPluginRefShape
	}
	*p = PluginRef(v)
	return nil
}

// DefaultServerConfiguration returns the configuration used without a file.
func DefaultServerConfiguration() *ServerConfiguration {
	return &ServerConfiguration{
		Port: DefaultPort,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// PluginNames returns the names of the configured plugins in order.
func (c *ServerConfiguration) PluginNames() []string {
	names := make([]string, 0, len(c.Plugins))
	for _, p := range c.Plugins {
		names = append(names, p.Name)
	}
	return names
}

// AddPlugins appends bare plugin references for names not configured yet.
func (c *ServerConfiguration) AddPlugins(names ...string) {
	for _, name := range names {
		found := false
		for _, p := range c.Plugins {
			if p.Name == name {
				found = true
				break
			}
		}
		if !found {
			c.Plugins = append(c.Plugins, PluginRef{Name: name})
		}
	}
}
