package heads

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/hydra/pkg/hydra"
)

func TestExpr_When(t *testing.T) {
	t.Parallel()

	h := hydra.New()
	onlyPost, err := NewExpr(ExprConfig{
		Path:       "/orders",
		When:       `request.method == "POST"`,
		StatusCode: http.StatusCreated,
		Body:       "created",
	}, nil)
	require.NoError(t, err)
	fallback, _ := NewStatic(StaticConfig{StaticResponse: StaticResponse{Content: "listed"}})
	require.NoError(t, h.Register(&hydra.Plugin{Name: "orders", Heads: []hydra.Head{onlyPost, fallback}}))

	res := serve(t, h, http.MethodPost, "/orders", "")
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, "created", string(res.Body()))

	res = serve(t, h, http.MethodGet, "/orders", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "listed", string(res.Body()))
}

func TestExpr_Assertions(t *testing.T) {
	t.Parallel()

	h := hydra.New()
	check, err := NewExpr(ExprConfig{
		Path: "/checkout",
		Assertions: []ExprAssertion{
			{Expr: `request.headers["content-type"] == "application/json"`, Message: "sends JSON"},
			{Expr: `jsonpath(request.json, "$.items[0].qty") == 2`, Message: "first item qty is 2"},
			{Expr: `jsonpath(request.body, "$.coupon") == nil`},
		},
		Continue: true,
	}, h.Assert())
	require.NoError(t, err)
	answer, _ := NewStatic(StaticConfig{StaticResponse: StaticResponse{Content: "thanks"}})
	require.NoError(t, h.Register(&hydra.Plugin{
		Name:  "shop",
		Tests: map[string]hydra.TestDefinition{"checkout": {Heads: []hydra.Head{check, answer}}},
	}))
	require.NoError(t, h.StartTest("shop", "checkout"))

	req := hydra.BuildRequest(http.MethodPost, "/checkout", []byte(`{"items":[{"qty":2}]}`))
	req.Header.Set("Content-Type", "application/json")
	res := hydra.NewResponse()
	require.NoError(t, h.Dispatch(req, res))
	assert.Equal(t, "thanks", string(res.Body()))

	result, _ := h.Session().Result("shop", "checkout")
	assert.Equal(t, hydra.VerdictPass, result.Result)
	assert.Equal(t, []string{"sends JSON", "first item qty is 2", `jsonpath(request.body, "$.coupon") == nil`}, result.Passes)

	// A failing assertion ends the response without running the next head.
	res = serve(t, h, http.MethodPost, "/checkout", `{"items":[{"qty":5}]}`)
	assert.True(t, res.Ended())
	assert.Empty(t, res.Body())

	result, _ = h.Session().Result("shop", "checkout")
	assert.Equal(t, hydra.VerdictFail, result.Result)
	assert.Equal(t, []string{"sends JSON"}, result.Failures)
}

func TestExpr_BodyExpr(t *testing.T) {
	t.Parallel()

	echo, err := NewExpr(ExprConfig{BodyExpr: `{"path": request.path, "page": request.query.page}`}, nil)
	require.NoError(t, err)
	res := serve(t, register(t, echo), http.MethodGet, "/items?page=3", "")
	assert.JSONEq(t, `{"path":"/items","page":"3"}`, string(res.Body()))
	assert.Equal(t, "application/json", res.Header().Get("Content-Type"))

	greet, err := NewExpr(ExprConfig{BodyExpr: `"hello " + request.method`, ContentType: "text/plain"}, nil)
	require.NoError(t, err)
	res = serve(t, register(t, greet), http.MethodGet, "/", "")
	assert.Equal(t, "hello GET", string(res.Body()))
}

func TestExpr_CompileErrors(t *testing.T) {
	t.Parallel()

	_, err := NewExpr(ExprConfig{When: `request.method ==`}, nil)
	assert.Error(t, err)

	_, err = NewExpr(ExprConfig{When: `"not a bool"`}, nil)
	assert.Error(t, err)

	_, err = NewExpr(ExprConfig{Assertions: []ExprAssertion{{Expr: "true"}}}, nil)
	assert.Error(t, err)
}

func TestBuild(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	h := hydra.New()

	tests := []struct {
		name    string
		spec    Spec
		want    any
		wantErr bool
	}{
		{"static", Spec{Type: TypeStatic, Content: "x", Responses: []StaticResponseSpec{{Content: "a"}}}, &Static{}, false},
		{"filesystem", Spec{Type: TypeFilesystem, DocumentRoot: root}, &Filesystem{}, false},
		{"filesystem relative root", Spec{Type: TypeFilesystem, DocumentRoot: "public"}, &Filesystem{}, false},
		{"proxy", Spec{Type: TypeProxy, ProxyTo: "http://localhost:1"}, &Proxy{}, false},
		{"expr", Spec{Type: TypeExpr, Assert: []ExprAssertionSpec{{Expr: "true"}}}, &Expr{}, false},
		{"unknown", Spec{Type: "carrier-pigeon"}, nil, true},
		{"invalid proxy", Spec{Type: TypeProxy}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			head, err := Build(tt.spec, BuildEnv{BaseDir: root, Recorder: h.Assert()})
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, head)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, head)
		})
	}

	fsHead, err := Build(Spec{Type: TypeFilesystem, DocumentRoot: "public"}, BuildEnv{BaseDir: root})
	require.NoError(t, err)
	assert.Equal(t, root+"/public", fsHead.(*Filesystem).root)

	_, err = BuildAll([]Spec{{Type: TypeStatic}, {Type: "nope"}}, BuildEnv{})
	assert.ErrorContains(t, err, "head 1")
}
