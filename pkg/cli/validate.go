package cli

import (
	"errors"
	"fmt"

	"github.com/getmockd/hydra/pkg/engine"
	"github.com/getmockd/hydra/pkg/loader"
	"github.com/spf13/cobra"
)

// ValidateOutput is the JSON form of a validate run.
type ValidateOutput struct {
	Valid     bool            `json:"valid"`
	Plugins   []PluginCheck   `json:"plugins,omitempty"`
	Manifests []ManifestCheck `json:"manifests,omitempty"`
}

// PluginCheck reports one configured plugin.
type PluginCheck struct {
	Name  string `json:"name"`
	Heads int    `json:"heads"`
	Tests int    `json:"tests"`
	Error string `json:"error,omitempty"`
}

// ManifestCheck reports one manifest named on the command line.
type ManifestCheck struct {
	File  string `json:"file"`
	Name  string `json:"name,omitempty"`
	Error string `json:"error,omitempty"`
}

var errInvalid = errors.New("validation failed")

func newValidateCmd() *cobra.Command {
	var f configFlags
	cmd := &cobra.Command{
		Use:   "validate [manifest...]",
		Short: "Check a configuration and its plugins without serving",
		Long: `Resolve the configuration exactly as serve would, then build every
configured plugin without registering it. Manifest files given as arguments
are checked against the manifest schema and built as well.`,
		Example: `  hydra validate -c hydra.yaml
  hydra validate plugins/api/plugin.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, &f, args)
		},
	}
	f.register(cmd)
	return cmd
}

func runValidate(cmd *cobra.Command, f *configFlags, manifests []string) error {
	cfg, err := f.resolve(cmd)
	if err != nil {
		return err
	}

	srv := engine.NewServer(cfg)
	out := ValidateOutput{Valid: true}
	for _, ref := range cfg.Plugins {
		check := PluginCheck{Name: ref.Name}
		p, err := srv.Loader().Load(ref.Name, ref.Config)
		if err != nil {
			check.Error = err.Error()
			out.Valid = false
		} else {
			check.Heads, check.Tests = len(p.Heads), len(p.Tests)
		}
		out.Plugins = append(out.Plugins, check)
	}
	for _, file := range manifests {
		check := ManifestCheck{File: file}
		p, err := loader.ManifestModule(file).Plugin(loader.Config{})
		if err != nil {
			check.Error = err.Error()
			out.Valid = false
		} else {
			check.Name = p.Name
		}
		out.Manifests = append(out.Manifests, check)
	}

	w := cmd.OutOrStdout()
	if jsonOutput(cmd) {
		if err := writeJSON(w, out); err != nil {
			return err
		}
	} else {
		for _, c := range out.Plugins {
			if c.Error != "" {
				fmt.Fprintf(w, "FAIL plugin %s: %s\n", c.Name, c.Error)
				continue
			}
			fmt.Fprintf(w, "ok   plugin %s (%d heads, %d tests)\n", c.Name, c.Heads, c.Tests)
		}
		for _, c := range out.Manifests {
			if c.Error != "" {
				fmt.Fprintf(w, "FAIL manifest %s: %s\n", c.File, c.Error)
				continue
			}
			fmt.Fprintf(w, "ok   manifest %s (%s)\n", c.File, c.Name)
		}
		if out.Valid {
			fmt.Fprintln(w, "configuration is valid")
		}
	}
	if !out.Valid {
		return errInvalid
	}
	return nil
}
