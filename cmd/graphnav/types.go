package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the enabled node types",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close(context.Background())

		out := cmd.OutOrStdout()
		for _, typ := range s.Editor.Catalog() {
			names := make([]string, len(typ.Parameters))
			for i, p := range typ.Parameters {
				names[i] = p.Name
			}
			fmt.Fprintf(out, "%-16s %s\n", typ.Name, strings.Join(names, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
}
