// Package main is the entry point for the searchctl CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// commandKey carries the running command name into log records.
type commandKey struct{}

// globals holds the persistent flags shared by every command.
type globals struct {
	envFile  string
	logLevel string
	output   string
}

func rootCmd() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:   "searchctl",
		Short: "Typed access to an OpenSearch cluster",
		Long: `searchctl reads, writes and exports documents stored in an OpenSearch cluster.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables

Environment variables:
  OPENSEARCH_ADDRESSES         Comma-separated node URLs (required)
  OPENSEARCH_USERNAME          Basic auth user
  OPENSEARCH_PASSWORD          Basic auth password
  OPENSEARCH_TIMEOUT           Request timeout (default: 60s)
  OPENSEARCH_CA_CERT_PATH      PEM authority used to verify the cluster
  OPENSEARCH_DISCOVER_INTERVAL Node discovery interval (default: 5m)

  SNAPSHOT_S3_*                S3 export target (export --s3)
    BUCKET, REGION, ACCESS_KEY_ID, SECRET_KEY, ENDPOINT, PREFIX, FORCE_PATH_STYLE`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if g.output != "json" && g.output != "yaml" {
				return fmt.Errorf("unsupported output format %q: use json or yaml", g.output)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), commandKey{}, cmd.Name()))
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&g.envFile, "env-file", "", "Path to .env file")
	flags.StringVar(&g.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	flags.StringVarP(&g.output, "output", "o", "json", "Output format: json, yaml")

	cmd.AddCommand(pingCmd(g))
	cmd.AddCommand(getCmd(g))
	cmd.AddCommand(findCmd(g))
	cmd.AddCommand(importCmd(g))
	cmd.AddCommand(deleteCmd(g))
	cmd.AddCommand(exportCmd(g))
	cmd.AddCommand(versionCmd())

	return cmd
}
