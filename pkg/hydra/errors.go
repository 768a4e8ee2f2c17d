package hydra

import (
	"fmt"
	"net/http"
)

// InvalidPluginNameError is returned when a plugin name does not match ^[a-z0-9_-]+$.
type InvalidPluginNameError struct {
	Name string
}

func (e *InvalidPluginNameError) Error() string {
	return fmt.Sprintf("invalid plugin name %q", e.Name)
}

// StatusCode returns the HTTP status code for this error.
func (e *InvalidPluginNameError) StatusCode() int {
	return http.StatusBadRequest
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *InvalidPluginNameError) Hint() string {
	return "Plugin names may only contain letters, digits, '-' and '_'."
}

// InvalidPluginError is returned when a plugin has neither heads nor tests.
type InvalidPluginError struct {
	Name   string
	Reason string
}

func (e *InvalidPluginError) Error() string {
	return fmt.Sprintf("invalid plugin %q: %s", e.Name, e.Reason)
}

// StatusCode returns the HTTP status code for this error.
func (e *InvalidPluginError) StatusCode() int {
	return http.StatusBadRequest
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *InvalidPluginError) Hint() string {
	return "Define at least one head or one test in the plugin."
}

// DuplicatePluginError is returned when registering a plugin whose name is taken.
type DuplicatePluginError struct {
	Name string
}

func (e *DuplicatePluginError) Error() string {
	return fmt.Sprintf("plugin %q already registered", e.Name)
}

// StatusCode returns the HTTP status code for this error.
func (e *DuplicatePluginError) StatusCode() int {
	return http.StatusConflict
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *DuplicatePluginError) Hint() string {
	return fmt.Sprintf("Rename the plugin or remove the other plugin called %q from the configuration.", e.Name)
}

// DuplicateHeadNameError is returned when two heads of one plugin share a name.
type DuplicateHeadNameError struct {
	Plugin string
	Head   string
}

func (e *DuplicateHeadNameError) Error() string {
	return fmt.Sprintf("plugin %q already has a head named %q", e.Plugin, e.Head)
}

// StatusCode returns the HTTP status code for this error.
func (e *DuplicateHeadNameError) StatusCode() int {
	return http.StatusConflict
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *DuplicateHeadNameError) Hint() string {
	return "Head names must be unique within a plugin. Leave the name empty to get a generated one."
}

// PluginNotFoundError is returned when a plugin cannot be found by name.
type PluginNotFoundError struct {
	Name string
}

func (e *PluginNotFoundError) Error() string {
	return fmt.Sprintf("plugin %q not found", e.Name)
}

// StatusCode returns the HTTP status code for this error.
func (e *PluginNotFoundError) StatusCode() int {
	return http.StatusNotFound
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *PluginNotFoundError) Hint() string {
	return "Check the plugin name and the plugin load path."
}

// HeadNotFoundError is returned when a plugin or one of its heads does not exist.
type HeadNotFoundError struct {
	Plugin string
	Head   string
}

func (e *HeadNotFoundError) Error() string {
	return fmt.Sprintf("head %q not found in plugin %q", e.Head, e.Plugin)
}

// StatusCode returns the HTTP status code for this error.
func (e *HeadNotFoundError) StatusCode() int {
	return http.StatusNotFound
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *HeadNotFoundError) Hint() string {
	return "Use GET /hydra-admin/plugins to list plugins and their heads."
}

// InvalidTestError is returned when starting a test that does not exist.
type InvalidTestError struct {
	Plugin string
	Test   string
}

func (e *InvalidTestError) Error() string {
	return fmt.Sprintf("no test %q in plugin %q", e.Test, e.Plugin)
}

// StatusCode returns the HTTP status code for this error.
func (e *InvalidTestError) StatusCode() int {
	return http.StatusNotFound
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *InvalidTestError) Hint() string {
	return "Use GET /hydra-admin/plugins to list the tests each plugin defines."
}

// InvalidNextParametersError is returned when a head calls its continuation
// without both a request and a response.
type InvalidNextParametersError struct {
	Plugin string
	Head   string
}

func (e *InvalidNextParametersError) Error() string {
	return fmt.Sprintf("head %q of plugin %q called next without a request and a response", e.Head, e.Plugin)
}

// StatusCode returns the HTTP status code for this error.
func (e *InvalidNextParametersError) StatusCode() int {
	return http.StatusInternalServerError
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *InvalidNextParametersError) Hint() string {
	return "Pass both a request and a response to next, or return without calling it."
}

// AssertionFailure is returned by the Recorder when an assertion fails. It has
// already been recorded against the running test when the caller sees it.
type AssertionFailure struct {
	Test    TestRef
	Label   string
	Message string
}

func (e *AssertionFailure) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("assertion %q failed", e.Label)
	}
	return fmt.Sprintf("assertion %q failed: %s", e.Label, e.Message)
}

// StatusCode returns the HTTP status code for this error.
func (e *AssertionFailure) StatusCode() int {
	return http.StatusInternalServerError
}

// StatusCodeError is an interface for errors that have an HTTP status code.
type StatusCodeError interface {
	error
	StatusCode() int
}

// HintError is an interface for errors that provide resolution hints.
type HintError interface {
	error
	Hint() string
}
