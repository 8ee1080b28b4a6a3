package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func deleteCmd(g *globals) *cobra.Command {
	var (
		id     string
		ids    []string
		field  string
		phrase string
	)

	cmd := &cobra.Command{
		Use:   "delete <index>",
		Short: "Delete documents by id or by phrase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			selectors := 0
			for _, set := range []bool{id != "", len(ids) > 0, field != ""} {
				if set {
					selectors++
				}
			}
			if selectors != 1 {
				return errors.New("exactly one of --id, --ids or --field is required")
			}
			if field != "" && phrase == "" {
				return errors.New("--phrase is required with --field")
			}

			s, err := g.connect(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, index := cmd.Context(), args[0]
			switch {
			case id != "":
				return s.respond(s.repo.DeleteByID(ctx, index, id))
			case len(ids) > 0:
				docs := make([]document, 0, len(ids))
				for _, v := range ids {
					docs = append(docs, document{"id": v})
				}
				return s.respond(s.repo.DeleteMany(ctx, index, docs))
			default:
				return s.respond(s.repo.DeleteWhere(ctx, index, field, phrase))
			}
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Identifier of the document to delete")
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "Comma-separated identifiers to delete in one batch")
	cmd.Flags().StringVar(&field, "field", "", "Field to match")
	cmd.Flags().StringVar(&phrase, "phrase", "", "Phrase the field must contain")

	return cmd
}
