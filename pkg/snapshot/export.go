package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/searchkit/pkg/docstore"
	"github.com/dmitrymomot/searchkit/pkg/logger"
)

// Sink stores a finished snapshot body and reports where it went.
type Sink interface {
	Put(ctx context.Context, index string, body io.Reader, size int64) (location string, err error)
}

// Result describes a written snapshot.
type Result struct {
	Index    string `json:"index" yaml:"index"`
	Count    int    `json:"count" yaml:"count"`
	Location string `json:"location" yaml:"location"`
}

// Option configures Export.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used to report finished exports.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Export writes every document of index to sink as NDJSON.
// An index with no documents still produces an empty snapshot.
func Export[T any](ctx context.Context, repo *docstore.Repository[T], index string, sink Sink, opts ...Option) (Result, error) {
	o := options{logger: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	started := time.Now()
	docs, err := repo.FindAll(ctx, index, docstore.WithForceRetrieveID())
	if err != nil {
		return Result{}, errors.Join(ErrExportFailed, err)
	}

	body, err := encode(docs)
	if err != nil {
		return Result{}, errors.Join(ErrExportFailed, err)
	}

	location, err := sink.Put(ctx, index, bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return Result{}, errors.Join(ErrExportFailed, err)
	}

	o.logger.InfoContext(ctx, "snapshot written",
		logger.Index(index),
		logger.Count(len(docs)),
		logger.Duration(time.Since(started)),
		slog.String("location", location),
	)
	return Result{Index: index, Count: len(docs), Location: location}, nil
}

func encode[T any](docs []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for i, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode document %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
