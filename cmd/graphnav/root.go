package main

import (
	"fmt"
	"os"

	"github.com/aretw0/graphnav/internal/cli"
	"github.com/aretw0/graphnav/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "graphnav",
	Short: "graphnav edits nested processor graphs",
	Long: `graphnav is an editor for node graphs whose nodes may hold nested graphs.
It keeps every visited graph in a context cache so moving between levels
restores exactly what was left there.`,
	SilenceUsage: true,
	RunE:         runShell,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "graphnav.yaml", "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().Bool("debug", false, "Log at debug level")
	rootCmd.Flags().Bool("headless", false, "No banner, prompts or styling")
}

// openSession loads the configuration named by the flags and builds a session.
func openSession(cmd *cobra.Command) (*cli.Session, config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, cfg, err
	}
	logger, err := cli.NewLogger(cfg, debug)
	if err != nil {
		return nil, cfg, err
	}
	s, err := cli.OpenSession(cmd.Context(), cfg, logger)
	return s, cfg, err
}
