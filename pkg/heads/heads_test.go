package heads

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/hydra/pkg/hydra"
)

func serve(t *testing.T, h *hydra.Hydra, method, url string, body string) *hydra.Response {
	t.Helper()
	res := hydra.NewResponse()
	require.NoError(t, h.Dispatch(hydra.BuildRequest(method, url, []byte(body)), res))
	return res
}

func register(t *testing.T, heads ...hydra.Head) *hydra.Hydra {
	t.Helper()
	h := hydra.New()
	require.NoError(t, h.Register(&hydra.Plugin{Name: "test", Heads: heads}))
	return h
}

func TestPathPatterns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		url     string
		want    bool
	}{
		{"/api/users", "/api/users", true},
		{"/api/users", "/api/users/", true},
		{"/api/users/", "/api/users", true},
		{"/api/users", "/api/users?page=2", true},
		{"/api/users", "/api/users/1", false},
		{"/api/users/[0-9]+", "/api/users/42", true},
		{"/api/.*", "/api/anything/deep", true},
		{"", "/whatever", true},
		{"/", "/", true},
		{"/", "/x", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.pattern+" "+tt.url, func(t *testing.T) {
			t.Parallel()
			f := MustFunc("", tt.pattern, nil)
			assert.Equal(t, tt.want, f.CanHandle(tt.url))
		})
	}

	_, err := NewFunc("bad", "/api/(", nil)
	assert.Error(t, err)
}

func TestUnderMount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mount, url, rest string
		ok               bool
	}{
		{"/", "/a/b", "/a/b", true},
		{"/static", "/static", "/", true},
		{"/static", "/static/css/site.css?v=1", "/css/site.css", true},
		{"/static", "/staticky", "", false},
		{"/static", "/other", "", false},
	}
	for _, tt := range tests {
		tt := tt
		rest, ok := underMount(normalizeMount(tt.mount), tt.url)
		assert.Equal(t, tt.ok, ok, tt.url)
		assert.Equal(t, tt.rest, rest, tt.url)
	}
	assert.Equal(t, "/", normalizeMount(""))
	assert.Equal(t, "/a/b", normalizeMount("a/b/"))
}

func TestStatic(t *testing.T) {
	t.Parallel()

	t.Run("string content", func(t *testing.T) {
		t.Parallel()
		s, err := NewStatic(StaticConfig{
			Path: "/hello",
			StaticResponse: StaticResponse{
				Content:     "hi",
				ContentType: "text/plain",
				StatusCode:  http.StatusAccepted,
				Headers:     map[string]string{"X-Hydra": "yes"},
			},
		})
		require.NoError(t, err)
		res := serve(t, register(t, s), http.MethodGet, "/hello", "")
		assert.Equal(t, http.StatusAccepted, res.StatusCode)
		assert.Equal(t, "hi", string(res.Body()))
		assert.Equal(t, "text/plain", res.Header().Get("Content-Type"))
		assert.Equal(t, "yes", res.Header().Get("X-Hydra"))
	})

	t.Run("structured content is JSON", func(t *testing.T) {
		t.Parallel()
		s, err := NewStatic(StaticConfig{StaticResponse: StaticResponse{Content: map[string]any{"ok": true}}})
		require.NoError(t, err)
		res := serve(t, register(t, s), http.MethodGet, "/anything", "")
		assert.JSONEq(t, `{"ok":true}`, string(res.Body()))
		assert.Equal(t, "application/json", res.Header().Get("Content-Type"))
	})

	t.Run("responses round robin", func(t *testing.T) {
		t.Parallel()
		s, err := NewStatic(StaticConfig{Responses: []StaticResponse{{Content: "a"}, {Content: "b"}}})
		require.NoError(t, err)
		h := register(t, s)
		var got []string
		for i := 0; i < 4; i++ {
			got = append(got, string(serve(t, h, http.MethodGet, "/", "").Body()))
		}
		assert.Equal(t, []string{"a", "b", "a", "b"}, got)
	})

	t.Run("responses repeat last", func(t *testing.T) {
		t.Parallel()
		s, err := NewStatic(StaticConfig{
			Responses:  []StaticResponse{{Content: "a"}, {Content: "b", StatusCode: http.StatusGone}},
			RepeatMode: RepeatLast,
		})
		require.NoError(t, err)
		h := register(t, s)
		var got []string
		for i := 0; i < 3; i++ {
			got = append(got, string(serve(t, h, http.MethodGet, "/", "").Body()))
		}
		assert.Equal(t, []string{"a", "b", "b"}, got)
	})

	t.Run("unknown repeat mode", func(t *testing.T) {
		t.Parallel()
		_, err := NewStatic(StaticConfig{RepeatMode: "shuffle"})
		assert.Error(t, err)
	})
}

func TestFilesystem(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs", "private"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<h1>home</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "guide.txt"), []byte("read me"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "private", "secret.txt"), []byte("secret"), 0o644))

	fsHead, err := NewFilesystem(FilesystemConfig{
		MountPath:    "/site",
		DocumentRoot: root,
		Exclude:      []string{"**/private/**"},
	})
	require.NoError(t, err)
	h := register(t, fsHead)

	tests := []struct {
		name   string
		url    string
		status int
		body   string
	}{
		{"file", "/site/docs/guide.txt", http.StatusOK, "read me"},
		{"index file", "/site/", http.StatusOK, "<h1>home</h1>"},
		{"query ignored", "/site/docs/guide.txt?x=1", http.StatusOK, "read me"},
		{"missing file", "/site/docs/nope.txt", http.StatusNotFound, "Not Found"},
		{"directory without index", "/site/docs", http.StatusNotFound, "Not Found"},
		{"excluded", "/site/docs/private/secret.txt", http.StatusNotFound, "Not Found"},
		{"traversal stays inside root", "/site/../../etc/passwd", http.StatusNotFound, "Not Found"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			res := serve(t, h, http.MethodGet, tt.url, "")
			assert.Equal(t, tt.status, res.StatusCode)
			assert.Equal(t, tt.body, string(res.Body()))
		})
	}

	assert.False(t, fsHead.CanHandle("/other/file"))

	_, err = NewFilesystem(FilesystemConfig{})
	assert.Error(t, err)
	_, err = NewFilesystem(FilesystemConfig{DocumentRoot: root, Exclude: []string{"[unclosed"}})
	assert.Error(t, err)
}

func TestProxy(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Upstream-Path", r.URL.Path)
		w.Header().Set("X-Upstream-Host", r.Host)
		w.WriteHeader(http.StatusCreated)
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write([]byte(r.Method + " " + r.URL.RequestURI() + " " + string(body)))
	}))
	t.Cleanup(upstream.Close)

	t.Run("forwards below the mount path", func(t *testing.T) {
		t.Parallel()
		p, err := NewProxy(ProxyConfig{MountPath: "/api", ProxyTo: upstream.URL + "/v1"})
		require.NoError(t, err)
		h := register(t, p)

		req := hydra.BuildRequest(http.MethodPost, "/api/orders?id=7", []byte("payload"))
		req.Host = "frontend.test"
		res := hydra.NewResponse()
		require.NoError(t, h.Dispatch(req, res))

		assert.Equal(t, http.StatusCreated, res.StatusCode)
		assert.Equal(t, "POST /v1/orders?id=7 payload", string(res.Body()))
		assert.Equal(t, "frontend.test", res.Header().Get("X-Upstream-Host"))
		assert.True(t, res.Ended())
	})

	t.Run("can send the upstream host", func(t *testing.T) {
		t.Parallel()
		p, err := NewProxy(ProxyConfig{ProxyTo: upstream.URL, SetHostHeader: true})
		require.NoError(t, err)
		res := serve(t, register(t, p), http.MethodGet, "/x", "")
		assert.Equal(t, strings.TrimPrefix(upstream.URL, "http://"), res.Header().Get("X-Upstream-Host"))
	})

	t.Run("upstream failure is a bad gateway", func(t *testing.T) {
		t.Parallel()
		dead := httptest.NewServer(http.NotFoundHandler())
		dead.Close()
		p, err := NewProxy(ProxyConfig{ProxyTo: dead.URL})
		require.NoError(t, err)
		res := serve(t, register(t, p), http.MethodGet, "/x", "")
		assert.Equal(t, http.StatusBadGateway, res.StatusCode)
	})

	t.Run("rejects invalid targets", func(t *testing.T) {
		t.Parallel()
		_, err := NewProxy(ProxyConfig{ProxyTo: "not a url"})
		assert.Error(t, err)
	})
}

func TestFilter(t *testing.T) {
	t.Parallel()

	upper := func(body []byte, res *hydra.Response) ([]byte, error) {
		res.Header().Set("X-Filtered", "1")
		return bytes.ToUpper(body), nil
	}

	t.Run("plain body", func(t *testing.T) {
		t.Parallel()
		f, err := NewFilter("upper", "", upper)
		require.NoError(t, err)
		inner, _ := NewStatic(StaticConfig{StaticResponse: StaticResponse{Content: "quiet", StatusCode: http.StatusAccepted}})
		res := serve(t, register(t, f, inner), http.MethodGet, "/", "")
		assert.Equal(t, "QUIET", string(res.Body()))
		assert.Equal(t, http.StatusAccepted, res.StatusCode)
		assert.Equal(t, "1", res.Header().Get("X-Filtered"))
	})

	t.Run("gzip body", func(t *testing.T) {
		t.Parallel()
		f, err := NewFilter("upper", "", upper)
		require.NoError(t, err)
		compressed, err := gzipBytes([]byte("quiet"))
		require.NoError(t, err)
		inner, _ := NewStatic(StaticConfig{StaticResponse: StaticResponse{
			Content: compressed,
			Headers: map[string]string{"Content-Encoding": "gzip"},
		}})
		res := serve(t, register(t, f, inner), http.MethodGet, "/", "")

		zr, err := gzip.NewReader(bytes.NewReader(res.Body()))
		require.NoError(t, err)
		plain, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.Equal(t, "QUIET", string(plain))
	})

	t.Run("nothing behind the filter", func(t *testing.T) {
		t.Parallel()
		f, err := NewFilter("upper", "", upper)
		require.NoError(t, err)
		res := serve(t, register(t, f), http.MethodGet, "/", "")
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		assert.Equal(t, "NOT FOUND", string(res.Body()))
	})
}
