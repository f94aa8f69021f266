package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/remnawizard"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of remnawizard",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "remnawizard version %s\n", strings.TrimSpace(remnawizard.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
