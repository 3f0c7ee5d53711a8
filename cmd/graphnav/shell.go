package main

import (
	"context"

	"github.com/aretw0/graphnav/internal/cli"
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Edit a graph interactively (default)",
	RunE:  runShell,
}

func runShell(cmd *cobra.Command, args []string) error {
	headless, _ := cmd.Flags().GetBool("headless")

	sigCtx := cli.NewSignalContext(cmd.Context())
	defer sigCtx.Cancel()

	s, _, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close(context.Background())

	return cli.RunShell(sigCtx, s, cli.ShellOptions{
		Input:    cmd.InOrStdin(),
		Output:   cmd.OutOrStdout(),
		Headless: headless,
	})
}

func init() {
	rootCmd.AddCommand(shellCmd)
	shellCmd.Flags().Bool("headless", false, "No banner, prompts or styling")
}
