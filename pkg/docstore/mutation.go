package docstore

import (
	"context"
	"fmt"
	"net/http"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	"github.com/opensearch-project/opensearch-go/v2/opensearchutil"

	"github.com/dmitrymomot/searchkit/pkg/logger"
	"github.com/dmitrymomot/searchkit/pkg/property"
)

// InsertMany indexes every document. Documents that carry an identifier are
// written under it, overwriting any existing version; the engine assigns one
// to the rest. No existence check is made.
func (r *Repository[T]) InsertMany(ctx context.Context, index string, docs []T) Response {
	actions := make([]bulkAction, 0, len(docs))
	for _, doc := range docs {
		id, _ := property.Identifier(doc)
		actions = append(actions, bulkAction{action: "index", id: id, source: doc})
	}
	return r.store.bulk(ctx, "insert_many", index, actions)
}

// UpsertMany updates each document by identifier, creating it when absent.
//
// With WithSplitByID, documents without a usable identifier are inserted
// through InsertMany and only the others are upserted. The result is valid
// when both parts are, and its message carries both diagnostics.
func (r *Repository[T]) UpsertMany(ctx context.Context, index string, docs []T, opts ...UpsertOption) Response {
	var o upsertOptions
	for _, opt := range opts {
		opt(&o)
	}
	if !o.splitByID {
		return r.upsert(ctx, index, docs)
	}

	var fresh, known []T
	for _, doc := range docs {
		if _, ok := property.Identifier(doc); ok {
			known = append(known, doc)
		} else {
			fresh = append(fresh, doc)
		}
	}

	inserted := r.InsertMany(ctx, index, fresh)
	upserted := r.upsert(ctx, index, known)
	return combine("insert", inserted, "upsert", upserted)
}

func (r *Repository[T]) upsert(ctx context.Context, index string, docs []T) Response {
	actions := make([]bulkAction, 0, len(docs))
	for _, doc := range docs {
		id, _ := property.Identifier(doc)
		actions = append(actions, bulkAction{
			action: "update",
			id:     id,
			source: map[string]any{"doc": doc, "upsert": doc},
		})
	}
	return r.store.bulk(ctx, "upsert_many", index, actions)
}

// UpdateMany partially updates every document by identifier. The request is
// sent for the whole list; documents without an identifier make the engine
// reject the batch.
func (r *Repository[T]) UpdateMany(ctx context.Context, index string, docs []T) Response {
	actions := make([]bulkAction, 0, len(docs))
	harvested := 0
	for _, doc := range docs {
		id, ok := property.Identifier(doc)
		if ok {
			harvested++
		}
		actions = append(actions, bulkAction{
			action: "update",
			id:     id,
			source: map[string]any{"doc": doc},
		})
	}
	if harvested < len(docs) {
		r.store.logger.WarnContext(ctx, "documents without identifier in update batch",
			logger.Operation("update_many"),
			logger.Index(index),
			logger.Count(len(docs)-harvested),
		)
	}
	return r.store.bulk(ctx, "update_many", index, actions)
}

// DeleteMany deletes the given documents by identifier. Documents without one are skipped.
func (r *Repository[T]) DeleteMany(ctx context.Context, index string, docs []T) Response {
	actions := make([]bulkAction, 0, len(docs))
	for _, doc := range docs {
		if id, ok := property.Identifier(doc); ok {
			actions = append(actions, bulkAction{action: "delete", id: id})
		}
	}
	return r.store.bulk(ctx, "delete_many", index, actions)
}

// DeleteByID deletes a single document. Deleting a missing document is invalid.
// The delete travels as a one-item bulk action so identifiers never end up in
// the URL path.
func (r *Repository[T]) DeleteByID(ctx context.Context, index, id string) Response {
	c, result, resp := r.store.sendBulk(ctx, index, []bulkAction{{action: "delete", id: id}})
	if outcome, ok := result.first(); resp.Valid && ok && outcome.Status == http.StatusNotFound {
		resp = NewResponse(false, fmt.Sprintf("Invalid response built from a successful (%d) low level call on %s %s: document %s %s (%d)",
			c.status, c.method, c.path, id, outcome.Result, outcome.Status))
	}

	if resp.Valid {
		r.store.logger.DebugContext(ctx, "opensearch operation",
			logger.Operation("delete_by_id"),
			logger.Index(index),
			logger.DocumentID(id),
		)
		return resp
	}
	r.store.logger.WarnContext(ctx, "opensearch operation rejected",
		logger.Operation("delete_by_id"),
		logger.Index(index),
		logger.DocumentID(id),
		logger.Message(resp.Message),
	)
	return resp
}

// DeleteWhere deletes every document whose field matches phrase. Validity
// reflects the call itself, not how many documents were removed.
func (r *Repository[T]) DeleteWhere(ctx context.Context, index, field, phrase string) Response {
	req := opensearchapi.DeleteByQueryRequest{
		Index: []string{index},
		Body:  opensearchutil.NewJSONReader(map[string]any{"query": matchPhrase(field, phrase)}),
	}
	if r.store.refresh != "" {
		refresh := r.store.refresh != "false"
		req.Refresh = &refresh
	}
	c := r.store.perform(ctx, http.MethodPost, "/"+index+"/_delete_by_query", req)
	return r.store.report(ctx, "delete_where", index, 0, c.response())
}
