package heads

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/getmockd/hydra/pkg/hydra"
)

// FilesystemConfig configures a Filesystem head.
type FilesystemConfig struct {
	Name         string
	MountPath    string
	DocumentRoot string
	// IndexFiles are tried, in order, for directory requests.
	IndexFiles []string
	// Exclude holds doublestar globs, relative to the document root, that
	// are answered with 404.
	Exclude []string
}

// Filesystem serves files from a directory.
type Filesystem struct {
	hydra.HeadBase
	mount      string
	root       string
	indexFiles []string
	exclude    []string
}

// NewFilesystem creates a Filesystem head.
func NewFilesystem(cfg FilesystemConfig) (*Filesystem, error) {
	if cfg.DocumentRoot == "" {
		return nil, fmt.Errorf("filesystem head %q: documentRoot is required", cfg.Name)
	}
	for _, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("filesystem head %q: invalid exclude pattern %q", cfg.Name, pattern)
		}
	}
	indexFiles := cfg.IndexFiles
	if len(indexFiles) == 0 {
		indexFiles = []string{"index.html", "index.htm"}
	}
	return &Filesystem{
		HeadBase:   hydra.NewHeadBase(cfg.Name),
		mount:      normalizeMount(cfg.MountPath),
		root:       cfg.DocumentRoot,
		indexFiles: indexFiles,
		exclude:    cfg.Exclude,
	}, nil
}

// CanHandle reports whether the path lies under the mount path.
func (f *Filesystem) CanHandle(url string) bool {
	_, ok := underMount(f.mount, url)
	return ok
}

// Handle serves the file the path maps to, or 404.
func (f *Filesystem) Handle(req *hydra.Request, res *hydra.Response, next hydra.Next) error {
	rest, _ := underMount(f.mount, req.URL)
	rel := path.Clean(rest)[1:]

	if f.excluded(rel) {
		return notFound(res)
	}

	full := filepath.Join(f.root, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return notFound(res)
		}
		return fmt.Errorf("stat %s: %w", full, err)
	}
	if info.IsDir() {
		full, info = f.index(full)
		if info == nil {
			return notFound(res)
		}
	}

	file, err := os.Open(full)
	if err != nil {
		return fmt.Errorf("open %s: %w", full, err)
	}
	defer func() { _ = file.Close() }()

	hr, err := req.HTTPRequest()
	if err != nil {
		return err
	}
	http.ServeContent(res, hr, info.Name(), info.ModTime(), file)
	res.End()
	return nil
}

func (f *Filesystem) excluded(rel string) bool {
	for _, pattern := range f.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (f *Filesystem) index(dir string) (string, os.FileInfo) {
	for _, name := range f.indexFiles {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, info
		}
	}
	return "", nil
}

func notFound(res *hydra.Response) error {
	res.WriteHeader(http.StatusNotFound)
	return res.Send([]byte("Not Found"))
}
