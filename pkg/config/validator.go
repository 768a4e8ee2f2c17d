package config

import (
	"fmt"
	"strings"

	"github.com/getmockd/hydra/pkg/hydra"
)

// ValidationError is a single configuration problem.
type ValidationError struct {
	Path    string // e.g. "plugins[1].name"
	Message string
}

func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationResult collects every problem found.
type ValidationResult struct {
	Errors []ValidationError
}

// IsValid returns true if there are no validation errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Error returns a combined error message.
func (r *ValidationResult) Error() string {
	if r.IsValid() {
		return ""
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "\n")
}

// Err returns r as an error, or nil when valid.
func (r *ValidationResult) Err() error {
	if r.IsValid() {
		return nil
	}
	return r
}

// AddError adds a validation error.
func (r *ValidationResult) AddError(path, message string) {
	r.Errors = append(r.Errors, ValidationError{Path: path, Message: message})
}

var (
	validLevels  = []string{"debug", "info", "warn", "warning", "error"}
	validFormats = []string{"text", "json"}
)

// Validate checks the configuration and returns every problem found.
func (c *ServerConfiguration) Validate() *ValidationResult {
	result := &ValidationResult{}

	if c.Port < 0 || c.Port > 65535 {
		result.AddError("port", fmt.Sprintf("invalid port %d, must be 0-65535", c.Port))
	}
	if c.ReadTimeout < 0 {
		result.AddError("readTimeout", "must not be negative")
	}
	if c.WriteTimeout < 0 {
		result.AddError("writeTimeout", "must not be negative")
	}

	for i, p := range c.PluginLoadPath {
		if strings.TrimSpace(p) == "" {
			result.AddError(fmt.Sprintf("pluginLoadPath[%d]", i), "empty entry")
		}
	}

	seen := make(map[string]bool)
	for i, p := range c.Plugins {
		path := fmt.Sprintf("plugins[%d].name", i)
		switch {
		case p.Name == "":
			result.AddError(path, "required")
		case !hydra.ValidPluginName(p.Name):
			result.AddError(path, fmt.Sprintf("invalid plugin name %q", p.Name))
		case seen[p.Name]:
			result.AddError(path, fmt.Sprintf("duplicate plugin %q", p.Name))
		}
		seen[p.Name] = true
	}

	if c.Log.Level != "" && !oneOf(c.Log.Level, validLevels) {
		result.AddError("log.level", fmt.Sprintf("unknown level %q, expected one of %s", c.Log.Level, strings.Join(validLevels, ", ")))
	}
	if c.Log.Format != "" && !oneOf(c.Log.Format, validFormats) {
		result.AddError("log.format", fmt.Sprintf("unknown format %q, expected text or json", c.Log.Format))
	}

	return result
}

func oneOf(v string, options []string) bool {
	for _, o := range options {
		if strings.EqualFold(v, o) {
			return true
		}
	}
	return false
}
