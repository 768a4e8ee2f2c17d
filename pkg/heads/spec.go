package heads

import (
	"fmt"
	"path/filepath"

	"github.com/getmockd/hydra/pkg/hydra"
)

// Head types understood by Build.
const (
	TypeStatic     = "static"
	TypeFilesystem = "filesystem"
	TypeProxy      = "proxy"
	TypeExpr       = "expr"
)

// Spec is the declarative form of a head, as found in plugin manifests and
// in dynamic head requests to the admin API.
type Spec struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
	Type string `yaml:"type" json:"type"`
	Path string `yaml:"path,omitempty" json:"path,omitempty"`

	// static
	Content     any                  `yaml:"content,omitempty" json:"content,omitempty"`
	ContentType string               `yaml:"contentType,omitempty" json:"contentType,omitempty"`
	StatusCode  int                  `yaml:"statusCode,omitempty" json:"statusCode,omitempty"`
	Headers     map[string]string    `yaml:"headers,omitempty" json:"headers,omitempty"`
	Responses   []StaticResponseSpec `yaml:"responses,omitempty" json:"responses,omitempty"`
	RepeatMode  string               `yaml:"repeatMode,omitempty" json:"repeatMode,omitempty"`

	// filesystem and proxy
	MountPath     string   `yaml:"mountPath,omitempty" json:"mountPath,omitempty"`
	DocumentRoot  string   `yaml:"documentRoot,omitempty" json:"documentRoot,omitempty"`
	IndexFiles    []string `yaml:"indexFiles,omitempty" json:"indexFiles,omitempty"`
	Exclude       []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`
	ProxyTo       string   `yaml:"proxyTo,omitempty" json:"proxyTo,omitempty"`
	SetHostHeader bool     `yaml:"setHostHeader,omitempty" json:"setHostHeader,omitempty"`

	// expr
	When     string              `yaml:"when,omitempty" json:"when,omitempty"`
	Assert   []ExprAssertionSpec `yaml:"assert,omitempty" json:"assert,omitempty"`
	Continue bool                `yaml:"continue,omitempty" json:"continue,omitempty"`
	Body     string              `yaml:"body,omitempty" json:"body,omitempty"`
	BodyExpr string              `yaml:"bodyExpr,omitempty" json:"bodyExpr,omitempty"`
}

// StaticResponseSpec is one entry of Spec.Responses.
type StaticResponseSpec struct {
	Content     any               `yaml:"content,omitempty" json:"content,omitempty"`
	ContentType string            `yaml:"contentType,omitempty" json:"contentType,omitempty"`
	StatusCode  int               `yaml:"statusCode,omitempty" json:"statusCode,omitempty"`
	Headers     map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// ExprAssertionSpec is one entry of Spec.Assert.
type ExprAssertionSpec struct {
	Expr    string `yaml:"expr" json:"expr"`
	Message string `yaml:"message,omitempty" json:"message,omitempty"`
}

// BuildEnv carries what Build needs besides the spec.
type BuildEnv struct {
	// BaseDir resolves relative document roots.
	BaseDir string
	// Recorder receives Expr head assertions.
	Recorder *hydra.Recorder
}

// Build creates the head a spec describes.
func Build(spec Spec, env BuildEnv) (hydra.Head, error) {
	switch spec.Type {
	case TypeStatic:
		cfg := StaticConfig{
			Name: spec.Name,
			Path: spec.Path,
			StaticResponse: StaticResponse{
				Content:     spec.Content,
				ContentType: spec.ContentType,
				StatusCode:  spec.StatusCode,
				Headers:     spec.Headers,
			},
			RepeatMode: spec.RepeatMode,
		}
		for _, r := range spec.Responses {
			cfg.Responses = append(cfg.Responses, StaticResponse(r))
		}
		return asHead(NewStatic(cfg))

	case TypeFilesystem:
		root := spec.DocumentRoot
		if root != "" && !filepath.IsAbs(root) && env.BaseDir != "" {
			root = filepath.Join(env.BaseDir, root)
		}
		return asHead(NewFilesystem(FilesystemConfig{
			Name:         spec.Name,
			MountPath:    spec.MountPath,
			DocumentRoot: root,
			IndexFiles:   spec.IndexFiles,
			Exclude:      spec.Exclude,
		}))

	case TypeProxy:
		return asHead(NewProxy(ProxyConfig{
			Name:          spec.Name,
			MountPath:     spec.MountPath,
			ProxyTo:       spec.ProxyTo,
			SetHostHeader: spec.SetHostHeader,
		}))

	case TypeExpr:
		cfg := ExprConfig{
			Name:        spec.Name,
			Path:        spec.Path,
			When:        spec.When,
			Continue:    spec.Continue,
			StatusCode:  spec.StatusCode,
			ContentType: spec.ContentType,
			Headers:     spec.Headers,
			Body:        spec.Body,
			BodyExpr:    spec.BodyExpr,
		}
		for _, a := range spec.Assert {
			cfg.Assertions = append(cfg.Assertions, ExprAssertion(a))
		}
		return asHead(NewExpr(cfg, env.Recorder))

	default:
		return nil, fmt.Errorf("unknown head type %q", spec.Type)
	}
}

// asHead avoids returning a typed nil inside a non-nil interface.
func asHead[T hydra.Head](h T, err error) (hydra.Head, error) {
	if err != nil {
		return nil, err
	}
	return h, nil
}

// BuildAll builds every spec in order.
func BuildAll(specs []Spec, env BuildEnv) ([]hydra.Head, error) {
	out := make([]hydra.Head, 0, len(specs))
	for i, spec := range specs {
		h, err := Build(spec, env)
		if err != nil {
			return nil, fmt.Errorf("head %d: %w", i, err)
		}
		out = append(out, h)
	}
	return out, nil
}
