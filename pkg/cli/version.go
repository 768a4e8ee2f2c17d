package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// VersionOutput represents JSON output format
type VersionOutput struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
}

func buildInfo() VersionOutput {
	out := VersionOutput{
		Version: Version,
		Commit:  Commit,
		Date:    BuildDate,
		Go:      runtime.Version(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}
	if out.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		out.Version = info.Main.Version
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if out.Commit == "none" {
				out.Commit = setting.Value
			}
		case "vcs.time":
			if out.Date == "unknown" {
				out.Date = setting.Value
			}
		}
	}
	return out
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show hydra version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := buildInfo()
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "hydra %s (%s, %s)\n", out.Version, out.Commit, out.Date)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s/%s\n", out.Go, out.OS, out.Arch)
			return nil
		},
	}
}
