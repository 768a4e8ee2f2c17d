package hydra

import (
	"net/http"
	"strings"
)

// respond returns a head that writes body for every url with prefix.
func respond(name, prefix, body string) Head {
	return NewHead(name, PathPrefix(prefix), func(req *Request, res *Response, next Next) error {
		return res.Send([]byte(body))
	})
}

// passThrough returns a head that appends tag to a header and continues.
func passThrough(name, prefix, tag string) Head {
	return NewHead(name, PathPrefix(prefix), func(req *Request, res *Response, next Next) error {
		res.Header().Add("X-Chain", tag)
		return next(req, res)
	})
}

func get(url string) *Request {
	return BuildRequest(http.MethodGet, url, nil)
}

func names(heads []Head) []string {
	out := make([]string, len(heads))
	for i, h := range heads {
		out[i] = h.Name()
	}
	return out
}

func body(res *Response) string {
	return strings.TrimSpace(string(res.Body()))
}
