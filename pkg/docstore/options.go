package docstore

import "log/slog"

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for operation traces. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRefresh sets the refresh policy sent with bulk and delete requests:
// "" (engine default), "true", "false" or "wait_for".
func WithRefresh(policy string) Option {
	return func(s *Store) { s.refresh = policy }
}

// FindOption configures a find operation.
type FindOption func(*findOptions)

type findOptions struct {
	forceID bool
}

// WithForceRetrieveID stamps every returned document with its engine-assigned
// identifier, through property.WithIdentifier.
func WithForceRetrieveID() FindOption {
	return func(o *findOptions) { o.forceID = true }
}

func newFindOptions(opts []FindOption) findOptions {
	var o findOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// UpsertOption configures UpsertMany.
type UpsertOption func(*upsertOptions)

type upsertOptions struct {
	splitByID bool
}

// WithSplitByID routes documents without a usable identifier through
// InsertMany and only upserts the rest.
func WithSplitByID() UpsertOption {
	return func(o *upsertOptions) { o.splitByID = true }
}
