package heads

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/getmockd/hydra/pkg/hydra"
)

// defaultPath matches every request.
const defaultPath = "/.*"

// compilePath compiles a head path pattern.
func compilePath(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		pattern = defaultPath
	}
	trimmed := strings.TrimRight(pattern, "/")
	re, err := regexp.Compile("^" + trimmed + "/?$")
	if err != nil {
		return nil, fmt.Errorf("invalid path pattern %q: %w", pattern, err)
	}
	return re, nil
}

// normalizeMount cleans a mount path to "/" or "/a/b" without trailing slash.
func normalizeMount(mount string) string {
	if mount == "" {
		return "/"
	}
	return path.Clean("/" + mount)
}

// underMount reports whether url lies under mount and returns the rest of
// the path, always starting with "/".
func underMount(mount, url string) (string, bool) {
	p := hydra.StripQuery(url)
	if mount == "/" {
		return p, true
	}
	if p == mount {
		return "/", true
	}
	if strings.HasPrefix(p, mount+"/") {
		return p[len(mount):], true
	}
	return "", false
}
