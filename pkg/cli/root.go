package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// NewRootCommand returns the hydra command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "hydra",
		Short: "hydra is a programmable HTTP test server",
		Long: `hydra serves HTTP through a chain of heads supplied by plugins.
Heads can be attached, detached and added at runtime through the admin API
under /hydra-admin, and plugins can declare tests whose assertions are
recorded while a test is active.

Configuration can be provided via flags, HYDRA_* environment variables or a
configuration file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Bool("json", false, "Output command results in JSON format")

	root.AddCommand(
		newServeCmd(),
		newValidateCmd(),
		newPluginsCmd(),
		newVersionCmd(),
	)
	return root
}

// Main runs the command line and returns the process exit code.
func Main() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// Execute runs the command line and exits non-zero on error.
func Execute() {
	os.Exit(Main())
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}
