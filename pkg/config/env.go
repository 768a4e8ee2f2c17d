package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// Environment variable names
const (
	EnvPort         = "HYDRA_PORT"
	EnvHost         = "HYDRA_HOST"
	EnvLogLevel     = "HYDRA_LOG_LEVEL"
	EnvLogFormat    = "HYDRA_LOG_FORMAT"
	EnvPluginPath   = "HYDRA_PLUGIN_PATH"
	EnvRootDir      = "HYDRA_ROOT_DIR"
	EnvReadTimeout  = "HYDRA_READ_TIMEOUT"
	EnvWriteTimeout = "HYDRA_WRITE_TIMEOUT"
)

// ApplyEnv overrides cfg with the environment. Only variables that are set
// and parse are applied. HYDRA_PLUGIN_PATH is a list separated like PATH;
// its entries are searched before the configured ones.
func ApplyEnv(cfg *ServerConfiguration) {
	applyEnv(cfg, os.Getenv)
}

func applyEnv(cfg *ServerConfiguration, getenv func(string) string) {
	if v := getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}

	if v := getenv(EnvHost); v != "" {
		cfg.Host = v
	}

	if v := getenv(EnvReadTimeout); v != "" {
		if timeout, err := strconv.Atoi(v); err == nil {
			cfg.ReadTimeout = timeout
		}
	}

	if v := getenv(EnvWriteTimeout); v != "" {
		if timeout, err := strconv.Atoi(v); err == nil {
			cfg.WriteTimeout = timeout
		}
	}

	if v := getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}

	if v := getenv(EnvLogFormat); v != "" {
		cfg.Log.Format = v
	}

	if v := getenv(EnvPluginPath); v != "" {
		var paths []string
		for _, p := range filepath.SplitList(v) {
			if p != "" {
				paths = append(paths, p)
			}
		}
		cfg.PluginLoadPath = append(paths, cfg.PluginLoadPath...)
	}

	if v := getenv(EnvRootDir); v != "" {
		cfg.RootDir = v
	}
}
