package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/smdgraph/pkg/buildinfo"
)

// SetVersion overrides the build information shown by --version and the
// version command. Release builds set it through ldflags on package
// buildinfo instead; this is for callers embedding the CLI.
//
// Parameters:
//   - v: semantic version string (e.g., "v1.2.3")
//   - c: git commit SHA (short or long form)
//   - d: build timestamp (e.g., "2026-03-01T14:32:01Z")
func SetVersion(v, c, d string) {
	buildinfo.Version = v
	buildinfo.Commit = c
	buildinfo.Date = d
}

// versionCommand creates the version command.
func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	}
}
