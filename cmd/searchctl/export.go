package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/searchkit/pkg/snapshot"
)

func exportCmd(g *globals) *cobra.Command {
	var (
		file          string
		toS3          bool
		uploadTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "export <index>",
		Short: "Write every document of an index to an NDJSON snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (file != "") == toS3 {
				return errors.New("exactly one of --file or --s3 is required")
			}

			s, err := g.connect(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			var sink snapshot.Sink
			if toS3 {
				var files []string
				if g.envFile != "" {
					files = append(files, g.envFile)
				}
				cfg, err := snapshot.LoadS3Config(files...)
				if err != nil {
					return err
				}
				sink, err = snapshot.NewS3Sink(cmd.Context(), cfg, snapshot.WithUploadTimeout(uploadTimeout))
				if err != nil {
					return err
				}
			} else {
				sink = snapshot.NewFileSink(file)
			}

			res, err := snapshot.Export(cmd.Context(), s.repo, args[0], sink, snapshot.WithLogger(s.log))
			if err != nil {
				return err
			}
			return s.render(res)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Local file to write")
	cmd.Flags().BoolVar(&toS3, "s3", false, "Upload to the bucket configured by SNAPSHOT_S3_*")
	cmd.Flags().DurationVar(&uploadTimeout, "upload-timeout", 5*time.Minute, "Upper bound for the S3 upload")

	return cmd
}
