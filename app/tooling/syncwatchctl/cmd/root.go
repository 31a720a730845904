// Package cmd contains syncwatchctl commands.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "syncwatchctl",
	Short: "Operator tooling for the syncwatch monitor",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("registry", "r", "zarf/nodes.json", "Path to the node registry file.")
}
