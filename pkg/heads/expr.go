package heads

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/getmockd/hydra/pkg/hydra"
)

// ExprAssertion is a boolean expression recorded as an assertion of the
// running test.
type ExprAssertion struct {
	Expr    string
	Message string
}

// ExprConfig configures an Expr head.
//
// Expressions see a "request" map with the keys method, url, path, query,
// headers (lower-cased names, first value), body (string) and json (the
// decoded body, nil when it is not JSON). The function jsonpath(doc, path)
// evaluates a JSONPath against a decoded document or a JSON string.
type ExprConfig struct {
	Name string
	Path string
	// When gates the head. If it is false the request goes to the next head.
	When       string
	Assertions []ExprAssertion
	// Continue hands the request to the next head after the assertions
	// instead of answering it.
	Continue    bool
	StatusCode  int
	ContentType string
	Headers     map[string]string
	Body        string
	// BodyExpr computes the body. Non-string results are sent as JSON.
	BodyExpr string
}

// Expr is a declarative logic head.
type Expr struct {
	hydra.HeadBase
	path       *regexp.Regexp
	cfg        ExprConfig
	when       *vm.Program
	assertions []compiledAssertion
	body       *vm.Program
	recorder   *hydra.Recorder

	jpMu    sync.RWMutex
	jpCache map[string]jp.Expr
}

type compiledAssertion struct {
	program *vm.Program
	source  string
	label   string
}

// NewExpr compiles an Expr head. Assertions are recorded through recorder,
// which may only be nil when there are none.
func NewExpr(cfg ExprConfig, recorder *hydra.Recorder) (*Expr, error) {
	re, err := compilePath(cfg.Path)
	if err != nil {
		return nil, err
	}
	if len(cfg.Assertions) > 0 && recorder == nil {
		return nil, fmt.Errorf("expr head %q: assertions need a recorder", cfg.Name)
	}

	e := &Expr{
		HeadBase: hydra.NewHeadBase(cfg.Name),
		path:     re,
		cfg:      cfg,
		recorder: recorder,
		jpCache:  make(map[string]jp.Expr),
	}

	if cfg.When != "" {
		if e.when, err = e.compile(cfg.When, expr.AsBool()); err != nil {
			return nil, err
		}
	}
	for _, a := range cfg.Assertions {
		program, err := e.compile(a.Expr, expr.AsBool())
		if err != nil {
			return nil, err
		}
		label := a.Message
		if label == "" {
			label = a.Expr
		}
		e.assertions = append(e.assertions, compiledAssertion{program: program, source: a.Expr, label: label})
	}
	if cfg.BodyExpr != "" {
		if e.body, err = e.compile(cfg.BodyExpr); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *Expr) compile(source string, opts ...expr.Option) (*vm.Program, error) {
	opts = append([]expr.Option{
		expr.Env(map[string]any{"request": map[string]any{}}),
		expr.Function("jsonpath", e.jsonpath, new(func(any, string) any)),
	}, opts...)
	program, err := expr.Compile(source, opts...)
	if err != nil {
		return nil, fmt.Errorf("expr head %q: compiling %q: %w", e.Name(), source, err)
	}
	return program, nil
}

// CanHandle reports whether the path matches the pattern.
func (e *Expr) CanHandle(url string) bool {
	return e.path.MatchString(hydra.StripQuery(url))
}

// Handle evaluates the condition and assertions, then answers or continues.
func (e *Expr) Handle(req *hydra.Request, res *hydra.Response, next hydra.Next) error {
	env := map[string]any{"request": requestEnv(req)}

	if e.when != nil {
		ok, err := e.evalBool(e.when, env)
		if err != nil {
			return err
		}
		if !ok {
			return next(req, res)
		}
	}

	for _, a := range e.assertions {
		passed, err := e.evalBool(a.program, env)
		if err != nil {
			return err
		}
		outcome := hydra.Outcome{Passed: passed}
		if !passed {
			outcome.Message = fmt.Sprintf("expression %q was false", a.source)
		}
		if err := e.recorder.Record(a.label, outcome); err != nil {
			return err
		}
	}

	if e.cfg.Continue {
		return next(req, res)
	}
	return e.respond(res, env)
}

func (e *Expr) respond(res *hydra.Response, env map[string]any) error {
	body := []byte(e.cfg.Body)
	contentType := e.cfg.ContentType

	if e.body != nil {
		out, err := expr.Run(e.body, env)
		if err != nil {
			return fmt.Errorf("expr head %q: body: %w", e.Name(), err)
		}
		switch v := out.(type) {
		case string:
			body = []byte(v)
		default:
			data, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("expr head %q: encoding body: %w", e.Name(), err)
			}
			body = data
			if contentType == "" {
				contentType = "application/json"
			}
		}
	}

	for k, v := range e.cfg.Headers {
		res.Header().Set(k, v)
	}
	if contentType != "" {
		res.Header().Set("Content-Type", contentType)
	}
	status := e.cfg.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	res.WriteHeader(status)
	return res.Send(body)
}

func (e *Expr) evalBool(program *vm.Program, env map[string]any) (bool, error) {
	out, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("expr head %q: %w", e.Name(), err)
	}
	b, _ := out.(bool)
	return b, nil
}

// jsonpath implements the jsonpath(doc, path) expression function.
func (e *Expr) jsonpath(params ...any) (any, error) {
	path, _ := params[1].(string)
	x, err := e.jsonPathExpr(path)
	if err != nil {
		return nil, err
	}

	doc := params[0]
	switch v := doc.(type) {
	case string:
		if doc, err = oj.ParseString(v); err != nil {
			return nil, nil
		}
	case []byte:
		if doc, err = oj.Parse(v); err != nil {
			return nil, nil
		}
	}

	results := x.Get(doc)
	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

func (e *Expr) jsonPathExpr(path string) (jp.Expr, error) {
	e.jpMu.RLock()
	x, ok := e.jpCache[path]
	e.jpMu.RUnlock()
	if ok {
		return x, nil
	}

	x, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONPath %q: %w", path, err)
	}
	e.jpMu.Lock()
	e.jpCache[path] = x
	e.jpMu.Unlock()
	return x, nil
}

// requestEnv exposes a request to expressions.
func requestEnv(req *hydra.Request) map[string]any {
	headers := make(map[string]any, len(req.Header))
	for k, v := range req.Header {
		if len(v) > 0 {
			headers[strings.ToLower(k)] = v[0]
		}
	}
	query := make(map[string]any)
	for k, v := range req.Query() {
		if len(v) > 0 {
			query[k] = v[0]
		}
	}

	var decoded any
	if len(req.Body) > 0 {
		if v, err := oj.Parse(req.Body); err == nil {
			decoded = v
		}
	}

	return map[string]any{
		"method":  req.Method,
		"url":     req.URL,
		"path":    req.Path(),
		"query":   query,
		"headers": headers,
		"body":    string(req.Body),
		"json":    decoded,
	}
}
