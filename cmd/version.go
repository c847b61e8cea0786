package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newVersionCmd creates the Cobra command for displaying the application version.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of azdo-mcp",
		Long:  `Prints the azdo-mcp version. The user agent sent to Azure DevOps carries the same version.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "azdo-mcp version %s\n", rootCmd.Version)
		},
	}
}
