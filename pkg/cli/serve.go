package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getmockd/hydra/pkg/admin"
	"github.com/getmockd/hydra/pkg/engine"
	"github.com/getmockd/hydra/pkg/logging"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	var f configFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the hydra server",
		Long: `Start the hydra server and load the configured plugins in order.

Plugins are looked up by name in every load path entry; the first entry with
a matching directory wins. --plugin may be given several times and adds to
the plugins listed in the configuration file.`,
		Example: `  # Serve two plugins from ./plugins
  hydra serve --plugin-path ./plugins --plugin api --plugin assets

  # Serve from a configuration file on a different port
  hydra serve -c hydra.yaml -p 8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, &f)
		},
	}
	f.register(cmd)
	return cmd
}

func runServe(cmd *cobra.Command, f *configFlags) error {
	cfg, err := f.resolve(cmd)
	if err != nil {
		return err
	}

	log, closer, err := logging.Open(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: logging.ParseFormat(cfg.Log.Format),
		Output: cmd.ErrOrStderr(),
		File:   cfg.Log.File,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	srv := engine.NewServer(cfg,
		engine.WithLogger(log),
		engine.WithVersion(Version),
	)
	if err := srv.LoadPlugins(); err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "hydra listening on http://%s\n", srv.Addr())
	fmt.Fprintf(out, "admin API at http://%s%s\n", srv.Addr(), admin.Prefix)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	fmt.Fprintln(out, "\nShutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
