package heads

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/getmockd/hydra/pkg/hydra"
)

// FilterFunc rewrites a response body. res is the response the rest of the
// chain produced; its headers may be changed too.
type FilterFunc func(body []byte, res *hydra.Response) ([]byte, error)

// Filter dispatches to the following heads and rewrites their body.
// Gzip-encoded bodies are decoded before filtering and encoded again after.
type Filter struct {
	hydra.HeadBase
	path   *regexp.Regexp
	filter FilterFunc
}

// NewFilter creates a Filter head.
func NewFilter(name, path string, filter FilterFunc) (*Filter, error) {
	re, err := compilePath(path)
	if err != nil {
		return nil, err
	}
	return &Filter{HeadBase: hydra.NewHeadBase(name), path: re, filter: filter}, nil
}

// CanHandle reports whether the path matches the pattern.
func (f *Filter) CanHandle(url string) bool {
	return f.path.MatchString(hydra.StripQuery(url))
}

// Handle runs the rest of the chain into a scratch response and copies the
// filtered result out.
func (f *Filter) Handle(req *hydra.Request, res *hydra.Response, next hydra.Next) error {
	scratch := hydra.NewResponse()
	if err := next(req, scratch); err != nil {
		return err
	}

	gzipped := strings.EqualFold(scratch.Header().Get("Content-Encoding"), "gzip")
	body := scratch.Body()
	if gzipped {
		decoded, err := gunzip(body)
		if err != nil {
			return fmt.Errorf("filter %q: %w", f.Name(), err)
		}
		body = decoded
	}

	filtered, err := f.filter(body, scratch)
	if err != nil {
		return fmt.Errorf("filter %q: %w", f.Name(), err)
	}

	if gzipped {
		if filtered, err = gzipBytes(filtered); err != nil {
			return fmt.Errorf("filter %q: %w", f.Name(), err)
		}
	}

	scratch.CopyTo(res)
	res.Header().Del("Content-Length")
	res.SetBody(filtered)
	res.End()
	return nil
}

func gunzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding gzip body: %w", err)
	}
	defer func() { _ = zr.Close() }()
	return io.ReadAll(zr)
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
