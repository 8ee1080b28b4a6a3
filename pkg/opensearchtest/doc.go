// Package opensearchtest provides an in-memory OpenSearch HTTP server for tests.
//
// The fake implements the subset of the REST API the searchkit packages use:
// ping and info, put-mapping, search with from/size and scroll cursors,
// scroll advance and clear, point get and delete, NDJSON bulk (index, create,
// update with upsert, delete) and delete-by-query. Queries support match_all,
// ids and match_phrase. Scroll ids rotate on every page and old ids are
// invalidated, so callers must always advance with the latest id.
//
//	srv := opensearchtest.New(t, opensearchtest.WithTLS())
//	srv.Put("products", "p-1", map[string]any{"name": "desk"})
//
//	cfg := opensearch.Config{Addresses: []string{srv.URL}}
//
// Every request is recorded and can be inspected with Requests.
package opensearchtest
