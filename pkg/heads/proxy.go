package heads

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/getmockd/hydra/pkg/hydra"
)

// ProxyConfig configures a Proxy head.
type ProxyConfig struct {
	Name      string
	MountPath string
	// ProxyTo is the upstream base URL. The path below MountPath is appended to it.
	ProxyTo string
	// SetHostHeader sends the upstream host in the Host header instead of the
	// client's.
	SetHostHeader bool
	// Transport overrides http.DefaultTransport.
	Transport http.RoundTripper
}

// Proxy forwards requests to an upstream server.
type Proxy struct {
	hydra.HeadBase
	mount   string
	target  *url.URL
	proxy   *httputil.ReverseProxy
	setHost bool
}

// NewProxy creates a Proxy head.
func NewProxy(cfg ProxyConfig) (*Proxy, error) {
	target, err := url.Parse(cfg.ProxyTo)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("proxy head %q: invalid proxyTo %q", cfg.Name, cfg.ProxyTo)
	}

	p := &Proxy{
		HeadBase: hydra.NewHeadBase(cfg.Name),
		mount:    normalizeMount(cfg.MountPath),
		target:   target,
		setHost:  cfg.SetHostHeader,
	}
	p.proxy = &httputil.ReverseProxy{
		Rewrite:   p.rewrite,
		Transport: cfg.Transport,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = fmt.Fprintf(w, "Bad Gateway: %v", err)
		},
	}
	return p, nil
}

func (p *Proxy) rewrite(pr *httputil.ProxyRequest) {
	rest, _ := underMount(p.mount, pr.In.URL.Path)
	pr.Out.URL.Path = rest
	pr.Out.URL.RawPath = ""
	pr.SetURL(p.target)
	if !p.setHost {
		pr.Out.Host = pr.In.Host
	}
	pr.SetXForwarded()
}

// CanHandle reports whether the path lies under the mount path.
func (p *Proxy) CanHandle(url string) bool {
	_, ok := underMount(p.mount, url)
	return ok
}

// Handle proxies the request and ends the response. The host's dispatch
// lock is released for the upstream round trip.
func (p *Proxy) Handle(req *hydra.Request, res *hydra.Response, next hydra.Next) error {
	hr, err := req.HTTPRequest()
	if err != nil {
		return err
	}
	hydra.Unlocked(req.Context(), func() { p.proxy.ServeHTTP(res, hr) })
	res.End()
	return nil
}
