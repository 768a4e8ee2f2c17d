package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/getmockd/hydra/pkg/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const apiManifest = `name: api
heads:
  - type: static
    path: /hello
    content: hello
tests:
  smoke:
    instructions: Request /hello
    heads:
      - type: static
        path: /hello
        content: smoke
`

func pluginDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "api"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "api", "plugin.yaml"), []byte(apiManifest), 0o644))
	return dir
}

func runCLI(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out, err := runCLI(t, context.Background(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "hydra ")

	out, err = runCLI(t, context.Background(), "version", "--json")
	require.NoError(t, err)
	var v VersionOutput
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.NotEmpty(t, v.Go)
	assert.NotEmpty(t, v.Version)
}

func TestPlugins(t *testing.T) {
	t.Parallel()
	dir := pluginDir(t)

	out, err := runCLI(t, context.Background(), "plugins", "--plugin-path", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "api")
	assert.Contains(t, out, filepath.Join(dir, "api", "plugin.yaml"))

	out, err = runCLI(t, context.Background(), "plugins", "--plugin-path", dir, "--json")
	require.NoError(t, err)
	var listing PluginsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &listing))
	require.Len(t, listing.Plugins, 1)
	assert.Equal(t, "api", listing.Plugins[0].Name)
	assert.Equal(t, dir, listing.LoadPath[0])
}

func TestPlugins_Empty(t *testing.T) {
	t.Parallel()

	out, err := runCLI(t, context.Background(), "plugins", "--plugin-path", t.TempDir(), "--root-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "no plugins found")
}

func TestValidate(t *testing.T) {
	t.Parallel()
	dir := pluginDir(t)

	t.Run("plugins resolve", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, context.Background(), "validate", "--plugin-path", dir, "--plugin", "api")
		require.NoError(t, err)
		assert.Contains(t, out, "ok   plugin api (1 heads, 1 tests)")
		assert.Contains(t, out, "configuration is valid")
	})

	t.Run("missing plugin", func(t *testing.T) {
		t.Parallel()
		out, err := runCLI(t, context.Background(), "validate", "--plugin-path", dir, "--plugin", "nope")
		require.ErrorIs(t, err, errInvalid)
		assert.Contains(t, out, "FAIL plugin nope")
	})

	t.Run("manifest argument", func(t *testing.T) {
		t.Parallel()
		bad := filepath.Join(t.TempDir(), "plugin.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("name: bad\nheads:\n  - type: nonsense\n"), 0o644))

		out, err := runCLI(t, context.Background(), "validate", "--json",
			filepath.Join(dir, "api", "plugin.yaml"), bad)
		require.ErrorIs(t, err, errInvalid)

		var res ValidateOutput
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.False(t, res.Valid)
		require.Len(t, res.Manifests, 2)
		assert.Equal(t, "api", res.Manifests[0].Name)
		assert.Empty(t, res.Manifests[0].Error)
		assert.Contains(t, res.Manifests[1].Error, "heads.0")
	})

	t.Run("bad config", func(t *testing.T) {
		t.Parallel()
		_, err := runCLI(t, context.Background(), "validate", "--port", "70000")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "port")
	})
}

func TestConfigFlags_Precedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "hydra.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`port: 4000
host: 127.0.0.1
pluginLoadPath: [from-file]
plugins: [api]
log:
  level: debug
`), 0o644))
	t.Setenv(config.EnvPort, "5000")
	t.Setenv(config.EnvLogFormat, "json")

	var f configFlags
	cmd := &cobra.Command{Use: "serve"}
	f.register(cmd)
	require.NoError(t, cmd.Flags().Parse([]string{"-c", file, "--port", "6000", "--plugin", "assets", "--plugin-path", "from-flag"}))

	cfg, err := f.resolve(cmd)
	require.NoError(t, err)
	assert.Equal(t, 6000, cfg.Port)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []string{"from-flag", "from-file"}, cfg.PluginLoadPath)
	assert.Equal(t, []string{"api", "assets"}, cfg.PluginNames())
}

func TestServe_StopsOnCancel(t *testing.T) {
	t.Parallel()
	dir := pluginDir(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := runCLI(t, ctx, "serve", "--port", "0", "--host", "127.0.0.1",
		"--plugin-path", dir, "--plugin", "api", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "hydra listening on http://127.0.0.1:")
	assert.Contains(t, out, "/hydra-admin")
	assert.Contains(t, out, "Shutting down...")
}

func TestServe_UnknownPlugin(t *testing.T) {
	t.Parallel()

	_, err := runCLI(t, context.Background(), "serve", "--port", "0",
		"--plugin-path", t.TempDir(), "--root-dir", t.TempDir(), "--plugin", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `loading plugin "ghost"`)
}
