package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "searchctl version %s\n", version)
			fmt.Fprintf(w, "  commit: %s\n", commit)
			fmt.Fprintf(w, "  built:  %s\n", date)
		},
	}
}
