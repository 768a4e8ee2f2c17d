package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Common errors for configuration loading.
var (
	ErrFileNotFound     = errors.New("configuration file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidJSON      = errors.New("invalid JSON syntax")
	ErrInvalidYAML      = errors.New("invalid YAML syntax")
	ErrEmptyFile        = errors.New("configuration file is empty")
)

// LoadFromFile reads a ServerConfiguration from a JSON or YAML file on top
// of the defaults. The format is detected from the extension (.yaml, .yml
// for YAML, otherwise JSON).
func LoadFromFile(path string) (*ServerConfiguration, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		return ParseYAML(data)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w in file: %s", ErrInvalidJSON, path)
	}
	return ParseJSON(data)
}

// ParseJSON parses JSON bytes on top of the defaults.
func ParseJSON(data []byte) (*ServerConfiguration, error) {
	cfg := DefaultServerConfiguration()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return cfg, nil
}

// ParseYAML parses YAML bytes on top of the defaults.
func ParseYAML(data []byte) (*ServerConfiguration, error) {
	cfg := DefaultServerConfiguration()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return cfg, nil
}

// ToYAML marshals a configuration to YAML bytes.
func ToYAML(cfg *ServerConfiguration) ([]byte, error) {
	if cfg == nil {
		return nil, errors.New("configuration cannot be nil")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal to YAML: %w", err)
	}
	return data, nil
}
