package main

import (
	"context"

	"github.com/aretw0/graphnav/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve an editor session over HTTP",
	Long:  `Starts one editor session and exposes its commands, state and render output as a JSON API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		s, cfg, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close(context.Background())

		addr := cfg.HTTP.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}
		return cli.ListenAndServe(sigCtx, s, addr, cfg.HTTP.Metrics)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
}
