package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spigell/contest-guide/internal/config"
)

// Actual version can be specified in build command.
var version = config.Version

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("%s version: %s (service %s)\n", config.App, version, config.Service)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
