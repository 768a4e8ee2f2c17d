package heads

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	"github.com/getmockd/hydra/pkg/hydra"
)

// Repeat modes for Static heads with several responses.
const (
	RepeatRoundRobin = "round-robin"
	RepeatLast       = "repeat-last"
)

// StaticResponse is one canned response.
type StaticResponse struct {
	// Content is sent as is when it is a string or []byte and as JSON otherwise.
	Content     any
	ContentType string
	StatusCode  int
	Headers     map[string]string
}

// StaticConfig configures a Static head.
type StaticConfig struct {
	Name string
	Path string
	StaticResponse
	// Responses, when set, replace the single response and are served in turn.
	Responses  []StaticResponse
	RepeatMode string
}

// Static serves canned content.
type Static struct {
	hydra.HeadBase
	path       *regexp.Regexp
	responses  []renderedResponse
	repeatLast bool
	next       int
}

type renderedResponse struct {
	body        []byte
	contentType string
	statusCode  int
	headers     map[string]string
}

// NewStatic creates a Static head.
func NewStatic(cfg StaticConfig) (*Static, error) {
	re, err := compilePath(cfg.Path)
	if err != nil {
		return nil, err
	}

	switch cfg.RepeatMode {
	case "", RepeatRoundRobin, RepeatLast:
	default:
		return nil, fmt.Errorf("static head %q: unknown repeat mode %q", cfg.Name, cfg.RepeatMode)
	}

	sources := cfg.Responses
	if len(sources) == 0 {
		sources = []StaticResponse{cfg.StaticResponse}
	}
	s := &Static{
		HeadBase:   hydra.NewHeadBase(cfg.Name),
		path:       re,
		repeatLast: cfg.RepeatMode == RepeatLast,
	}
	for i, src := range sources {
		r, err := render(src)
		if err != nil {
			return nil, fmt.Errorf("static head %q response %d: %w", cfg.Name, i, err)
		}
		s.responses = append(s.responses, r)
	}
	return s, nil
}

func render(src StaticResponse) (renderedResponse, error) {
	r := renderedResponse{
		contentType: src.ContentType,
		statusCode:  src.StatusCode,
		headers:     src.Headers,
	}
	switch c := src.Content.(type) {
	case nil:
	case string:
		r.body = []byte(c)
	case []byte:
		r.body = c
	default:
		data, err := json.Marshal(c)
		if err != nil {
			return r, fmt.Errorf("encoding content as JSON: %w", err)
		}
		r.body = data
		if r.contentType == "" {
			r.contentType = "application/json"
		}
	}
	if r.statusCode == 0 {
		r.statusCode = http.StatusOK
	}
	return r, nil
}

// CanHandle reports whether the path matches the pattern.
func (s *Static) CanHandle(url string) bool {
	return s.path.MatchString(hydra.StripQuery(url))
}

// Handle sends the next canned response.
func (s *Static) Handle(req *hydra.Request, res *hydra.Response, next hydra.Next) error {
	r := s.responses[s.next]
	switch {
	case s.next < len(s.responses)-1:
		s.next++
	case !s.repeatLast:
		s.next = 0
	}

	for k, v := range r.headers {
		res.Header().Set(k, v)
	}
	if r.contentType != "" {
		res.Header().Set("Content-Type", r.contentType)
	}
	res.WriteHeader(r.statusCode)
	return res.Send(r.body)
}
