package main

import (
	"github.com/spf13/cobra"
)

func getCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "get <index> <id>",
		Short: "Print a single document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.connect(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			doc, err := s.repo.FindByID(cmd.Context(), args[0], args[1], forceID()...)
			if err != nil {
				return err
			}
			return s.render(doc)
		},
	}
}
