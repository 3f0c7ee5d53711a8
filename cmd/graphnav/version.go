package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/graphnav"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of graphnav",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "graphnav version %s\n", strings.TrimSpace(graphnav.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
