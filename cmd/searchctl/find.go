package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func findCmd(g *globals) *cobra.Command {
	var (
		field  string
		phrase string
		ids    []string
	)

	cmd := &cobra.Command{
		Use:   "find <index>",
		Short: "List documents of an index",
		Long: `List documents of an index.

Without filters every document is returned. --field with --phrase keeps the
documents whose field contains the phrase; --ids fetches the listed documents.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(ids) > 0 && field != "" {
				return errors.New("--ids cannot be combined with --field")
			}
			if (field == "") != (phrase == "") {
				return errors.New("--field and --phrase must be given together")
			}

			s, err := g.connect(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, index := cmd.Context(), args[0]
			var docs []document
			switch {
			case len(ids) > 0:
				docs, err = s.repo.FindByListID(ctx, index, ids, forceID()...)
			case field != "":
				docs, err = s.repo.FindWhere(ctx, index, field, phrase, forceID()...)
			default:
				docs, err = s.repo.FindAll(ctx, index, forceID()...)
			}
			if err != nil {
				return err
			}
			return s.render(docs)
		},
	}

	cmd.Flags().StringVar(&field, "field", "", "Field to match")
	cmd.Flags().StringVar(&phrase, "phrase", "", "Phrase the field must contain")
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "Comma-separated document identifiers")

	return cmd
}
