package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/searchkit/pkg/docstore"
)

func importCmd(g *globals) *cobra.Command {
	var (
		mode      string
		splitByID bool
		refresh   string
	)

	cmd := &cobra.Command{
		Use:   "import <index> <file.ndjson>",
		Short: "Write documents from an NDJSON file",
		Long: `Write documents from a newline-delimited JSON file, one document per line.
Use "-" to read from standard input.

Modes:
  insert   index every document, overwriting those with a known id
  upsert   update by id, creating missing documents (default)
  update   partially update existing documents by id`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := readDocuments(cmd, args[1])
			if err != nil {
				return err
			}

			s, err := g.connect(cmd.Context(), cmd, docstore.WithRefresh(refresh))
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, index := cmd.Context(), args[0]
			switch mode {
			case "insert":
				return s.respond(s.repo.InsertMany(ctx, index, docs))
			case "upsert":
				var opts []docstore.UpsertOption
				if splitByID {
					opts = append(opts, docstore.WithSplitByID())
				}
				return s.respond(s.repo.UpsertMany(ctx, index, docs, opts...))
			case "update":
				return s.respond(s.repo.UpdateMany(ctx, index, docs))
			default:
				return fmt.Errorf("unknown import mode %q", mode)
			}
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "upsert", "Write mode: insert, upsert, update")
	cmd.Flags().BoolVar(&splitByID, "split-by-id", false, "Insert documents without id instead of rejecting them (upsert mode)")
	cmd.Flags().StringVar(&refresh, "refresh", "", "Refresh policy: true, false, wait_for")

	return cmd
}

// readDocuments decodes a stream of JSON objects.
func readDocuments(cmd *cobra.Command, path string) ([]document, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	docs := []document{}
	for {
		var doc document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode document %d: %w", len(docs)+1, err)
		}
		docs = append(docs, doc)
	}
}
