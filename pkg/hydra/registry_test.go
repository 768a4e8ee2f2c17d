package hydra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_SyntheticPlugins(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	assert.Equal(t, []string{AdminPlugin, DynamicPlugin, CurrentTestPlugin}, r.PluginNames())
	for _, p := range r.Plugins() {
		assert.Empty(t, p.Heads)
	}
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		plugin  *Plugin
		wantErr any
	}{
		{"valid with heads", &Plugin{Name: "shop", Heads: []Head{respond("", "/", "x")}}, nil},
		{"valid with tests only", &Plugin{Name: "shop-tests_2", Tests: map[string]TestDefinition{"t": {}}}, nil},
		{"uppercase accepted", &Plugin{Name: "Shop", Heads: []Head{respond("", "/", "x")}}, nil},
		{"empty name", &Plugin{Name: "", Heads: []Head{respond("", "/", "x")}}, &InvalidPluginNameError{}},
		{"space in name", &Plugin{Name: "my shop", Heads: []Head{respond("", "/", "x")}}, &InvalidPluginNameError{}},
		{"synthetic name rejected", &Plugin{Name: DynamicPlugin, Heads: []Head{respond("", "/", "x")}}, &InvalidPluginNameError{}},
		{"no heads and no tests", &Plugin{Name: "empty"}, &InvalidPluginError{}},
		{"nil plugin", nil, &InvalidPluginError{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := NewRegistry().Register(tt.plugin)
			switch want := tt.wantErr.(type) {
			case nil:
				assert.NoError(t, err)
			case *InvalidPluginNameError:
				assert.ErrorAs(t, err, &want)
			case *InvalidPluginError:
				assert.ErrorAs(t, err, &want)
			}
		})
	}
}

func TestRegister_DuplicatePlugin(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register(&Plugin{Name: "shop", Heads: []Head{respond("a", "/", "x")}}))

	err := r.Register(&Plugin{Name: "shop", Heads: []Head{respond("b", "/", "y")}})
	var dup *DuplicatePluginError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "shop", dup.Name)
	assert.Len(t, r.Plugins(), 4)
}

func TestRegister_AnonymousHeadNames(t *testing.T) {
	t.Parallel()

	t.Run("unnamed heads get distinct generated names", func(t *testing.T) {
		t.Parallel()
		heads := []Head{respond("", "/a", "a"), respond("", "/b", "b"), respond("", "/c", "c")}
		r := NewRegistry()
		require.NoError(t, r.Register(&Plugin{Name: "shop", Heads: heads}))
		assert.Equal(t, []string{"anonymousHead0", "anonymousHead1", "anonymousHead2"}, names(heads))
	})

	t.Run("generated names skip explicit ones", func(t *testing.T) {
		t.Parallel()
		heads := []Head{respond("anonymousHead0", "/a", "a"), respond("", "/b", "b"), respond("", "/c", "c")}
		r := NewRegistry()
		require.NoError(t, r.Register(&Plugin{Name: "shop", Heads: heads}))
		assert.Equal(t, []string{"anonymousHead0", "anonymousHead1", "anonymousHead2"}, names(heads))
	})

	t.Run("dynamic heads skip names already in the plugin", func(t *testing.T) {
		t.Parallel()
		r := NewRegistry()
		first, second := respond("", "/a", "a"), respond("", "/b", "b")
		require.NoError(t, r.RegisterDynamicHead(first))
		require.NoError(t, r.RegisterDynamicHead(second))
		assert.Equal(t, "anonymousHead0", first.Name())
		assert.Equal(t, "anonymousHead1", second.Name())
	})
}

func TestRegister_DuplicateHeadName(t *testing.T) {
	t.Parallel()

	t.Run("explicit duplicates", func(t *testing.T) {
		t.Parallel()
		r := NewRegistry()
		err := r.Register(&Plugin{Name: "shop", Heads: []Head{respond("home", "/", "a"), respond("home", "/", "b")}})
		var dup *DuplicateHeadNameError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "shop", dup.Plugin)
		assert.Equal(t, "home", dup.Head)
		assert.NotContains(t, r.PluginNames(), "shop")
	})

	t.Run("explicit name colliding with a generated one leaves heads unnamed", func(t *testing.T) {
		t.Parallel()
		unnamed := respond("", "/", "a")
		r := NewRegistry()
		err := r.Register(&Plugin{Name: "shop", Heads: []Head{unnamed, respond("anonymousHead0", "/", "b")}})
		var dup *DuplicateHeadNameError
		require.ErrorAs(t, err, &dup)
		assert.Empty(t, unnamed.Name())
	})

	t.Run("dynamic head with a taken name", func(t *testing.T) {
		t.Parallel()
		r := NewRegistry()
		require.NoError(t, r.RegisterDynamicHead(respond("x", "/", "a")))
		err := r.RegisterDynamicHead(respond("x", "/", "b"))
		var dup *DuplicateHeadNameError
		require.ErrorAs(t, err, &dup)
		p, _ := r.Plugin(DynamicPlugin)
		assert.Len(t, p.Heads, 1)
	})
}

func TestRegistry_Lookup(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	home := respond("home", "/", "home")
	require.NoError(t, r.Register(&Plugin{Name: "shop", Heads: []Head{home}}))

	p, err := r.Plugin("shop")
	require.NoError(t, err)
	assert.Equal(t, "shop", p.Name)
	assert.NotNil(t, p.Tests)

	_, err = r.Plugin("missing")
	var pnf *PluginNotFoundError
	assert.ErrorAs(t, err, &pnf)

	h, err := r.FindHead("shop", "home")
	require.NoError(t, err)
	assert.Same(t, home, h)

	var hnf *HeadNotFoundError
	_, err = r.FindHead("shop", "missing")
	assert.ErrorAs(t, err, &hnf)
	_, err = r.FindHead("missing", "home")
	assert.ErrorAs(t, err, &hnf)
}

func TestRegistry_PluginsAreCopies(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register(&Plugin{
		Name:  "shop",
		Heads: []Head{respond("home", "/", "home")},
		Tests: map[string]TestDefinition{"buy": {Heads: []Head{respond("", "/", "t")}}},
	}))

	p, err := r.Plugin("shop")
	require.NoError(t, err)
	p.Heads = append(p.Heads, respond("sneaky", "/sneaky", "x"))
	p.Tests["other"] = TestDefinition{}
	for _, q := range r.Plugins() {
		if q.Name == "shop" {
			q.Heads[0] = respond("swapped", "/", "x")
		}
	}

	again, err := r.Plugin("shop")
	require.NoError(t, err)
	assert.Equal(t, []string{"home"}, names(again.Heads))
	assert.Len(t, again.Tests, 1)
	_, err = r.FindHead("shop", "sneaky")
	assert.Error(t, err)
}

func TestRegistry_AttachDetach(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register(&Plugin{Name: "shop", Heads: []Head{respond("home", "/", "home")}}))

	attached, err := r.IsHeadAttached("shop", "home")
	require.NoError(t, err)
	assert.True(t, attached)

	require.NoError(t, r.DetachHead("shop", "home"))
	attached, _ = r.IsHeadAttached("shop", "home")
	assert.False(t, attached)

	require.NoError(t, r.AttachHead("shop", "home"))
	attached, _ = r.IsHeadAttached("shop", "home")
	assert.True(t, attached)

	var hnf *HeadNotFoundError
	assert.ErrorAs(t, r.DetachHead("shop", "nope"), &hnf)
	assert.ErrorAs(t, r.AttachHead("nope", "home"), &hnf)
	_, err = r.IsHeadAttached("nope", "home")
	assert.ErrorAs(t, err, &hnf)
}
