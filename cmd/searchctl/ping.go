package main

import (
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/searchkit/pkg/opensearch"
)

func pingCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the cluster is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.connect(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			client := s.store.Client()
			if err := opensearch.Healthcheck(client.Client)(cmd.Context()); err != nil {
				return err
			}
			return s.render(map[string]any{
				"status":    "ok",
				"pool":      client.Pool().String(),
				"addresses": client.Config().Addresses,
			})
		},
	}
}
