package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/getmockd/hydra/pkg/engine"
	"github.com/getmockd/hydra/pkg/loader"
	"github.com/spf13/cobra"
)

// PluginsOutput is the JSON form of the plugins listing.
type PluginsOutput struct {
	LoadPath []string       `json:"loadPath"`
	Plugins  []loader.Found `json:"plugins"`
}

func newPluginsCmd() *cobra.Command {
	var f configFlags
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "List the plugins found on the load path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			l := engine.NewServer(cfg).Loader()
			found, err := l.Discover()
			if err != nil {
				return err
			}

			if jsonOutput(cmd) {
				if found == nil {
					found = []loader.Found{}
				}
				return writeJSON(cmd.OutOrStdout(), PluginsOutput{LoadPath: l.LoadPath(), Plugins: found})
			}

			if len(found) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no plugins found")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tMANIFEST")
			for _, p := range found {
				where := p.Manifest
				if p.Builtin {
					where = "(built in)"
				}
				fmt.Fprintf(tw, "%s\t%s\n", p.Name, where)
			}
			return tw.Flush()
		},
	}
	f.register(cmd)
	return cmd
}
