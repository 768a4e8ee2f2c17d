package hydra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_VerdictAsymmetry(t *testing.T) {
	t.Parallel()

	h := newTestHydra(t, checkoutPlugin())
	require.NoError(t, h.StartTest("shop", "empty-catalog"))
	rec := h.Assert()

	require.NoError(t, rec.Equal(1, 1, "numbers match"))
	result, _ := h.Session().Result("shop", "empty-catalog")
	assert.Equal(t, VerdictPass, result.Result)

	err := rec.Equal("a", "b", "letters match")
	var failure *AssertionFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "letters match", failure.Label)
	assert.Equal(t, TestRef{Plugin: "shop", Test: "empty-catalog"}, failure.Test)
	assert.NotEmpty(t, failure.Message)

	result, _ = h.Session().Result("shop", "empty-catalog")
	assert.Equal(t, VerdictFail, result.Result)

	require.NoError(t, rec.True(true, "later pass"))
	result, _ = h.Session().Result("shop", "empty-catalog")
	assert.Equal(t, VerdictFail, result.Result)
	assert.Equal(t, []string{"numbers match", "later pass"}, result.Passes)
	assert.Equal(t, []string{"letters match"}, result.Failures)
}

func TestRecorder_FailureFirst(t *testing.T) {
	t.Parallel()

	h := newTestHydra(t, checkoutPlugin())
	require.NoError(t, h.StartTest("shop", "empty-catalog"))

	require.Error(t, h.Assert().Nil("not nil"))
	require.NoError(t, h.Assert().Nil(nil))

	result, _ := h.Session().Result("shop", "empty-catalog")
	assert.Equal(t, VerdictFail, result.Result)
	assert.Equal(t, []string{UnnamedAssertion}, result.Failures)
	assert.Equal(t, []string{UnnamedAssertion}, result.Passes)
}

func TestRecorder_DefaultTest(t *testing.T) {
	t.Parallel()

	h := New()
	require.NoError(t, h.Assert().Ok("truthy", "outside any test"))

	result, _ := h.Session().Result(DefaultTest, DefaultTest)
	assert.Equal(t, VerdictPass, result.Result)
	assert.Equal(t, []string{"outside any test"}, result.Passes)
}

func TestRecorder_Invoke(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind   string
		args   []any
		passed bool
	}{
		{"ok", []any{1}, true},
		{"ok", []any{""}, false},
		{"ok", []any{nil}, false},
		{"true", []any{true}, true},
		{"true", []any{"yes"}, false},
		{"false", []any{false}, true},
		{"false", []any{true}, false},
		{"equal", []any{"a", "a"}, true},
		{"equal", []any{1, 2}, false},
		{"notEqual", []any{1, 2}, true},
		{"equalValues", []any{int32(3), int64(3)}, true},
		{"nil", []any{nil}, true},
		{"notNil", []any{nil}, false},
		{"empty", []any{""}, true},
		{"notEmpty", []any{[]int{1}}, true},
		{"contains", []any{"hydra", "dra"}, true},
		{"notContains", []any{"hydra", "x"}, true},
		{"regexp", []any{`^/api/`, "/api/users"}, true},
		{"jsonEq", []any{`{"a":1,"b":2}`, `{"b":2,"a":1}`}, true},
		{"len", []any{[]int{1, 2}, 2}, true},
		{"len", []any{[]int{1, 2}, 2.0}, true},
		{"len", []any{[]int{1, 2}, 3}, false},
		{"fail", []any{"always"}, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.kind, func(t *testing.T) {
			t.Parallel()
			h := New()
			args := append(append([]any{}, tt.args...), "check "+tt.kind)
			err := h.Assert().Invoke(tt.kind, args...)

			result, _ := h.Session().Result(DefaultTest, DefaultTest)
			if tt.passed {
				assert.NoError(t, err)
				assert.Equal(t, []string{"check " + tt.kind}, result.Passes)
			} else {
				var failure *AssertionFailure
				assert.ErrorAs(t, err, &failure)
				assert.Equal(t, []string{"check " + tt.kind}, result.Failures)
			}
		})
	}
}

func TestRecorder_InvokeErrors(t *testing.T) {
	t.Parallel()

	h := New()
	assert.ErrorIs(t, h.Assert().Invoke("bogus", 1), ErrUnknownAssertion)
	assert.Error(t, h.Assert().Invoke("equal", 1))

	result, _ := h.Session().Result(DefaultTest, DefaultTest)
	assert.Empty(t, result.Passes)
	assert.Empty(t, result.Failures)
	assert.Contains(t, Kinds(), "equal")
}

func TestLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, UnnamedAssertion, Label())
	assert.Equal(t, UnnamedAssertion, Label(""))
	assert.Equal(t, "plain", Label("plain"))
	assert.Equal(t, "item 3 present", Label("item %d present", 3))
	assert.Equal(t, "42", Label(42))
	assert.Equal(t, UnnamedAssertion, Label(1, 2))
}
