package docstore

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/searchkit/pkg/logger"
	"github.com/dmitrymomot/searchkit/pkg/opensearch"
)

const (
	// PageSize is the number of documents fetched per scroll page.
	PageSize = 1000
	// InitialScrollLease keeps the cursor opened by the first search alive.
	InitialScrollLease = 5 * time.Minute
	// ScrollLease is requested on every cursor advance.
	ScrollLease = 10 * time.Minute
)

// Store owns one health-checked OpenSearch client. Typed operations are
// reached through Repository values created with NewRepository.
//
// A Store is safe for concurrent use by independent operations. It must not
// be used after Close.
type Store struct {
	client  *opensearch.Client
	timeout time.Duration
	refresh string
	logger  *slog.Logger
}

// New connects to the cluster described by cfg. Construction pings the
// cluster; on any failure the returned error wraps opensearch.ErrConnectionFailed
// and no Store is returned.
func New(ctx context.Context, cfg opensearch.Config, opts ...Option) (*Store, error) {
	s := &Store{
		timeout: cfg.RequestTimeout(),
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := validRefresh(s.refresh); err != nil {
		return nil, err
	}

	client, err := opensearch.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s.client = client

	s.logger.DebugContext(ctx, "opensearch store connected",
		logger.Component("docstore"),
		slog.String("pool", client.Pool().String()),
		slog.Int("addresses", len(cfg.Addresses)),
	)
	return s, nil
}

// Client exposes the underlying client for calls the store does not wrap.
func (s *Store) Client() *opensearch.Client {
	return s.client
}

// Close releases pooled connections.
func (s *Store) Close() error {
	return s.client.Close()
}

func validRefresh(policy string) error {
	switch policy {
	case "", "true", "false", "wait_for":
		return nil
	default:
		return ErrInvalidRefreshPolicy
	}
}
