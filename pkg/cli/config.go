package cli

import (
	"github.com/getmockd/hydra/pkg/config"
	"github.com/spf13/cobra"
)

// configFlags are the flags shared by serve and validate.
type configFlags struct {
	configFile string
	port       int
	host       string
	plugins    []string
	pluginPath []string
	rootDir    string
	logLevel   string
	logFormat  string
}

func (f *configFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.configFile, "config", "c", "", "Path to a YAML or JSON configuration file")
	fl.IntVarP(&f.port, "port", "p", config.DefaultPort, "HTTP port (0 picks a free port)")
	fl.StringVar(&f.host, "host", "", "Interface to listen on")
	fl.StringArrayVar(&f.plugins, "plugin", nil, "Plugin to load (repeatable)")
	fl.StringArrayVar(&f.pluginPath, "plugin-path", nil, "Directory searched for plugins before the default load path (repeatable)")
	fl.StringVar(&f.rootDir, "root-dir", "", "Prefix for every plugin load path entry")
	fl.StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fl.StringVar(&f.logFormat, "log-format", "text", "Log format (text, json)")
}

// resolve builds the effective configuration. File values are overridden by
// the environment, which flags set on the command line override in turn.
func (f *configFlags) resolve(cmd *cobra.Command) (*config.ServerConfiguration, error) {
	cfg := config.DefaultServerConfiguration()
	if f.configFile != "" {
		loaded, err := config.LoadFromFile(f.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	config.ApplyEnv(cfg)

	changed := cmd.Flags().Changed
	if changed("port") {
		cfg.Port = f.port
	}
	if changed("host") {
		cfg.Host = f.host
	}
	if changed("root-dir") {
		cfg.RootDir = f.rootDir
	}
	if changed("plugin-path") {
		cfg.PluginLoadPath = append(append([]string{}, f.pluginPath...), cfg.PluginLoadPath...)
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	cfg.AddPlugins(f.plugins...)

	if err := cfg.Validate().Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}
