package loader

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/hydra/pkg/heads"
	"github.com/getmockd/hydra/pkg/hydra"
)

// ManifestNames are the file names a plugin directory may use, in lookup order.
var ManifestNames = []string{"plugin.yaml", "plugin.yml", "plugin.json"}

// Manifest errors.
var (
	ErrNoManifest      = errors.New("no plugin manifest")
	ErrEmptyManifest   = errors.New("plugin manifest is empty")
	ErrInvalidManifest = errors.New("invalid plugin manifest")
)

//go:embed manifest.schema.json
var manifestSchemaJSON string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// Manifest is the declarative form of a plugin.
type Manifest struct {
	Name        string                  `yaml:"name,omitempty" json:"name,omitempty"`
	Description string                  `yaml:"description,omitempty" json:"description,omitempty"`
	Heads       []heads.Spec            `yaml:"heads,omitempty" json:"heads,omitempty"`
	Tests       map[string]ManifestTest `yaml:"tests,omitempty" json:"tests,omitempty"`
}

// ManifestTest is one test of a manifest.
type ManifestTest struct {
	Instructions string       `yaml:"instructions,omitempty" json:"instructions,omitempty"`
	Heads        []heads.Spec `yaml:"heads,omitempty" json:"heads,omitempty"`
}

// SchemaError lists the schema violations of a manifest.
type SchemaError struct {
	File     string
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, strings.Join(e.Problems, "; "))
}

func (e *SchemaError) Unwrap() error { return ErrInvalidManifest }

// FindManifest returns the manifest file inside dir.
func FindManifest(dir string) (string, error) {
	for _, name := range ManifestNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrNoManifest, dir)
}

// LoadManifest reads, validates and decodes a manifest file.
func LoadManifest(file string) (*Manifest, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyManifest, file)
	}
	return ParseManifest(file, data)
}

// ParseManifest validates and decodes manifest data. JSON is parsed as YAML,
// of which it is a subset. name is only used in errors.
func ParseManifest(name string, data []byte) (*Manifest, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidManifest, name, err)
	}
	if err := validateManifest(name, doc); err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidManifest, name, err)
	}
	return &m, nil
}

func validateManifest(name string, doc any) error {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("manifest.schema.json", strings.NewReader(manifestSchemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = compiler.Compile("manifest.schema.json")
	})
	if schemaErr != nil {
		return fmt.Errorf("compiling manifest schema: %w", schemaErr)
	}

	// Round-trip through JSON so YAML scalars get the types the validator expects.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidManifest, name, err)
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidManifest, name, err)
	}

	if err := schema.Validate(instance); err != nil {
		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			return fmt.Errorf("%w: %s: %v", ErrInvalidManifest, name, err)
		}
		problems := collectProblems(verr, nil)
		sort.Strings(problems)
		return &SchemaError{File: name, Problems: problems}
	}
	return nil
}

func collectProblems(err *jsonschema.ValidationError, out []string) []string {
	if len(err.Causes) == 0 {
		loc := strings.ReplaceAll(strings.TrimPrefix(err.InstanceLocation, "/"), "/", ".")
		if loc == "" {
			loc = "(root)"
		}
		return append(out, loc+": "+err.Message)
	}
	for _, cause := range err.Causes {
		out = collectProblems(cause, out)
	}
	return out
}

// manifestModule builds a plugin from a manifest file.
type manifestModule struct {
	file string
}

// ManifestModule returns a Module that builds its plugin from file.
func ManifestModule(file string) Module { return manifestModule{file: file} }

// Plugin builds the manifest's heads and tests. Relative document roots are
// resolved against the plugin directory and Expr heads record assertions
// through the hydra in cfg.
func (m manifestModule) Plugin(cfg Config) (*hydra.Plugin, error) {
	manifest, err := LoadManifest(m.file)
	if err != nil {
		return nil, err
	}

	env := heads.BuildEnv{BaseDir: filepath.Dir(m.file)}
	if h := cfg.Hydra(); h != nil {
		env.Recorder = h.Assert()
	}

	plugin := &hydra.Plugin{Name: manifest.Name}
	if plugin.Heads, err = heads.BuildAll(manifest.Heads, env); err != nil {
		return nil, fmt.Errorf("%s: %w", m.file, err)
	}
	if len(manifest.Tests) > 0 {
		plugin.Tests = make(map[string]hydra.TestDefinition, len(manifest.Tests))
	}
	for name, t := range manifest.Tests {
		testHeads, err := heads.BuildAll(t.Heads, env)
		if err != nil {
			return nil, fmt.Errorf("%s: test %q: %w", m.file, name, err)
		}
		plugin.Tests[name] = hydra.TestDefinition{Heads: testHeads, Instructions: t.Instructions}
	}
	return plugin, nil
}
