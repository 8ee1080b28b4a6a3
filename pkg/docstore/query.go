package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	"github.com/opensearch-project/opensearch-go/v2/opensearchutil"

	"github.com/dmitrymomot/searchkit/pkg/logger"
	"github.com/dmitrymomot/searchkit/pkg/mapping"
)

// RemapIndex puts the mapping inferred from T's shape on index.
func (r *Repository[T]) RemapIndex(ctx context.Context, index string) Response {
	c := r.store.perform(ctx, http.MethodPut, "/"+index+"/_mapping", opensearchapi.IndicesPutMappingRequest{
		Index: []string{index},
		Body:  opensearchutil.NewJSONReader(mapping.Infer[T]()),
	})
	return r.store.report(ctx, "remap_index", index, 0, c.response())
}

// FindAll returns every document of index. The scan opens a scroll cursor
// with the first page and advances it sequentially until an empty page; the
// cursor is released afterwards.
func (r *Repository[T]) FindAll(ctx context.Context, index string, opts ...FindOption) ([]T, error) {
	return r.scan(ctx, "find_all", index, matchAll(), newFindOptions(opts))
}

// FindWhere returns every document whose field matches phrase as a phrase.
func (r *Repository[T]) FindWhere(ctx context.Context, index, field, phrase string, opts ...FindOption) ([]T, error) {
	return r.scan(ctx, "find_where", index, matchPhrase(field, phrase), newFindOptions(opts))
}

// FindByListID returns the documents whose identifiers are in ids. An empty
// list returns an empty result without contacting the engine.
func (r *Repository[T]) FindByListID(ctx context.Context, index string, ids []string, opts ...FindOption) ([]T, error) {
	results := []T{}
	if len(ids) == 0 {
		return results, nil
	}
	o := newFindOptions(opts)

	c := r.store.perform(ctx, http.MethodPost, "/"+index+"/_search", opensearchapi.SearchRequest{
		Index: []string{index},
		Body:  opensearchutil.NewJSONReader(map[string]any{"query": idsQuery(ids)}),
		From:  intPtr(0),
		Size:  intPtr(len(ids)),
	})
	page, err := decodeSearch[T](c)
	if err != nil {
		return nil, r.store.fail(ctx, "find_by_list_id", index, err)
	}

	results = appendHits(results, page.Hits.Hits, o.forceID)
	r.store.trace(ctx, "find_by_list_id", index, len(results))
	return results, nil
}

// FindByID fetches a single document. A missing document yields ErrDocumentNotFound.
// The lookup runs as an ids query so identifiers never end up in the URL path.
func (r *Repository[T]) FindByID(ctx context.Context, index, id string, opts ...FindOption) (T, error) {
	var zero T
	o := newFindOptions(opts)

	c := r.store.perform(ctx, http.MethodPost, "/"+index+"/_search", opensearchapi.SearchRequest{
		Index: []string{index},
		Body:  opensearchutil.NewJSONReader(map[string]any{"query": idsQuery([]string{id})}),
		Size:  intPtr(1),
	})
	page, err := decodeSearch[T](c)
	if err != nil {
		r.store.logger.WarnContext(ctx, "opensearch query failed",
			logger.Operation("find_by_id"),
			logger.Index(index),
			logger.DocumentID(id),
			logger.Error(err),
		)
		return zero, err
	}
	if len(page.Hits.Hits) == 0 {
		return zero, fmt.Errorf("%w: %s/%s", ErrDocumentNotFound, index, id)
	}

	result := appendHits(make([]T, 0, 1), page.Hits.Hits[:1], o.forceID)[0]
	r.store.logger.DebugContext(ctx, "opensearch query",
		logger.Operation("find_by_id"),
		logger.Index(index),
		logger.DocumentID(id),
		logger.Count(1),
	)
	return result, nil
}

func (r *Repository[T]) scan(ctx context.Context, op, index string, query map[string]any, o findOptions) ([]T, error) {
	c := r.store.perform(ctx, http.MethodPost, "/"+index+"/_search", opensearchapi.SearchRequest{
		Index:  []string{index},
		Body:   opensearchutil.NewJSONReader(map[string]any{"query": query}),
		From:   intPtr(0),
		Size:   intPtr(PageSize),
		Scroll: InitialScrollLease,
	})
	page, err := decodeSearch[T](c)
	if err != nil {
		return nil, r.store.fail(ctx, op, index, err)
	}

	scrollID := page.ScrollID
	defer func() { r.store.clearScroll(ctx, scrollID) }()

	results := []T{}
	if page.Hits.Total == 0 {
		r.store.trace(ctx, op, index, 0)
		return results, nil
	}
	results = appendHits(results, page.Hits.Hits, o.forceID)

	for scrollID != "" {
		next, err := r.advance(ctx, scrollID)
		if err != nil {
			return nil, r.store.fail(ctx, op, index, err)
		}
		if next.ScrollID != "" {
			scrollID = next.ScrollID
		}
		if len(next.Hits.Hits) == 0 {
			break
		}
		results = appendHits(results, next.Hits.Hits, o.forceID)
	}

	r.store.trace(ctx, op, index, len(results))
	return results, nil
}

func (r *Repository[T]) advance(ctx context.Context, scrollID string) (searchResult[T], error) {
	c := r.store.perform(ctx, http.MethodPost, "/_search/scroll", opensearchapi.ScrollRequest{
		Body: opensearchutil.NewJSONReader(map[string]any{
			"scroll":    lease(ScrollLease),
			"scroll_id": scrollID,
		}),
	})
	return decodeSearch[T](c)
}

// clearScroll releases a cursor. Failures are only logged: the lease expires on its own.
func (s *Store) clearScroll(ctx context.Context, scrollID string) {
	if scrollID == "" {
		return
	}
	c := s.perform(context.WithoutCancel(ctx), http.MethodDelete, "/_search/scroll", opensearchapi.ClearScrollRequest{
		Body: opensearchutil.NewJSONReader(map[string]any{"scroll_id": []string{scrollID}}),
	})
	if !c.ok() {
		s.logger.DebugContext(ctx, "scroll cursor not released", logger.Message(c.diagnostic()))
	}
}

func decodeSearch[T any](c call) (searchResult[T], error) {
	var page searchResult[T]
	if !c.ok() {
		return page, c.queryError()
	}
	if err := json.Unmarshal(c.body, &page); err != nil {
		return page, fmt.Errorf("%w: decode search response from %s %s: %v", ErrQueryFailed, c.method, c.path, err)
	}
	return page, nil
}

func (s *Store) trace(ctx context.Context, op, index string, n int) {
	s.logger.DebugContext(ctx, "opensearch query",
		logger.Operation(op),
		logger.Index(index),
		logger.Count(n),
	)
}

func (s *Store) fail(ctx context.Context, op, index string, err error) error {
	s.logger.WarnContext(ctx, "opensearch query failed",
		logger.Operation(op),
		logger.Index(index),
		logger.Error(err),
	)
	return err
}

// lease renders a duration in the engine's time unit syntax.
func lease(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
}

func intPtr(v int) *int { return &v }
