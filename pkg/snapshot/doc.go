// Package snapshot exports the full content of an index as newline-delimited
// JSON, one document per line, to a local file or an S3 bucket.
//
// Export scans the index through a docstore.Repository with identifiers
// forced onto every document, so a snapshot can be re-imported with
// UpsertMany and reproduce the same identifiers.
//
//	repo := docstore.NewRepository[map[string]any](store)
//	res, err := snapshot.Export(ctx, repo, "products", snapshot.NewFileSink("products.ndjson"))
//
// S3 uploads go through NewS3Sink; S3Config can be read from SNAPSHOT_S3_*
// environment variables with LoadS3Config. Objects are named
// <prefix>/<index>/<UTC timestamp>-<uuid>.ndjson.
package snapshot
