package cli

import (
	"fmt"

	"github.com/insightloop/insightloop/internal/version"

	"github.com/spf13/cobra"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Get()

			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "insightloop %s\n", info.Version)
			if info.GitCommit != "" {
				fmt.Fprintf(out, "  commit:     %s\n", info.GitCommit)
			}
			if info.BuildDate != "" {
				fmt.Fprintf(out, "  built:      %s\n", info.BuildDate)
			}
			fmt.Fprintf(out, "  go version: %s\n", info.GoVersion)
			fmt.Fprintf(out, "  platform:   %s\n", info.Platform)
		},
	}
}
