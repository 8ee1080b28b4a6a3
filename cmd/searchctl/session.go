package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/searchkit/pkg/docstore"
	"github.com/dmitrymomot/searchkit/pkg/logger"
	"github.com/dmitrymomot/searchkit/pkg/opensearch"
)

// document is the shape every command reads and writes. Its identifier
// lives under the "id" key, which is added on read when missing.
type document map[string]any

func (d document) GetID() string {
	switch id := d["id"].(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}

func (d document) SetID(id string) { d["id"] = id }

// session is a connected store plus the logger and output settings of one invocation.
type session struct {
	log   *slog.Logger
	store *docstore.Store
	repo  *docstore.Repository[document]
	out   io.Writer
	g     *globals
}

func (g *globals) logger(cmd *cobra.Command) (*slog.Logger, error) {
	level, err := logger.ParseLevel(g.logLevel)
	if err != nil {
		return nil, err
	}
	return logger.New(
		logger.WithLevel(level),
		logger.WithTextFormatter(),
		logger.WithOutput(cmd.ErrOrStderr()),
		logger.WithService("searchctl"),
		logger.WithContextValue("command", commandKey{}),
	), nil
}

func (g *globals) loadConfig() (opensearch.Config, error) {
	var files []string
	if g.envFile != "" {
		files = append(files, g.envFile)
	}
	cfg, err := opensearch.LoadConfig(files...)
	if err != nil {
		return opensearch.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// connect opens a store; the caller must close the session.
func (g *globals) connect(ctx context.Context, cmd *cobra.Command, opts ...docstore.Option) (*session, error) {
	log, err := g.logger(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}

	opts = append([]docstore.Option{docstore.WithLogger(log)}, opts...)
	store, err := docstore.New(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}

	return &session{
		log:   log,
		store: store,
		repo:  docstore.NewRepository[document](store),
		out:   cmd.OutOrStdout(),
		g:     g,
	}, nil
}

// forceID makes every printed document carry its identifier.
func forceID() []docstore.FindOption {
	return []docstore.FindOption{docstore.WithForceRetrieveID()}
}

func (s *session) Close() error {
	return s.store.Close()
}

func (s *session) render(v any) error {
	return render(s.out, s.g.output, v)
}

// respond prints resp and turns an invalid response into the command error.
func (s *session) respond(resp docstore.Response) error {
	if err := s.render(resp); err != nil {
		return err
	}
	return resp.Err()
}

func render(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}
