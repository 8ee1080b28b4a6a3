// Package docstore is a typed access layer over OpenSearch: CRUD, bulk writes
// and full index scans for caller-defined document types, without writing the
// query DSL by hand.
//
// A Store owns one health-checked client built by the opensearch package.
// Typed operations live on Repository[T]:
//
//	store, err := docstore.New(ctx, opensearch.Config{
//	    Addresses: []string{"https://localhost:9200"},
//	    Username:  "admin",
//	    Password:  "admin",
//	})
//	if err != nil {
//	    // errors.Is(err, opensearch.ErrConnectionFailed)
//	}
//	defer store.Close()
//
//	products := docstore.NewRepository[Product](store)
//	all, err := products.FindAll(ctx, "products", docstore.WithForceRetrieveID())
//	resp := products.UpsertMany(ctx, "products", all, docstore.WithSplitByID())
//	if !resp.Valid {
//	    log.Println(resp.Message)
//	}
//
// # Queries
//
// FindAll and FindWhere scan with a scroll cursor: the first search opens it
// (PageSize documents, InitialScrollLease) and every advance renews it for
// ScrollLease until an empty page comes back. Each call owns its cursor and
// advances it strictly in sequence. FindByListID and FindByID are single
// requests. Query failures are returned as errors wrapping ErrQueryFailed;
// empty results are empty slices, never nil.
//
// # Mutations
//
// InsertMany, UpsertMany, UpdateMany, DeleteMany, DeleteByID and DeleteWhere
// return a Response. It is valid only when the HTTP call succeeded and the
// engine accepted the payload. Reporting is batch-level: one failed bulk item
// invalidates the whole Response, and the diagnostic message only summarizes
// how many items failed. Send smaller batches when item precision matters.
//
// # Identifiers
//
// Documents expose their identifier through property.Identifiable or an
// attribute named ID (matched case-insensitively). WithForceRetrieveID stamps
// engine-assigned identifiers onto retrieved documents; documents without
// such an attribute are left unchanged.
//
// There is no retry or backoff. Every call runs under the configured request
// timeout and failures surface immediately.
package docstore
