package docstore

import "errors"

var (
	// ErrQueryFailed wraps transport and engine failures of find operations.
	ErrQueryFailed = errors.New("opensearch query failed")

	// ErrDocumentNotFound is returned by FindByID when the index has no such document.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrOperationRejected is returned by Response.Err for invalid responses.
	ErrOperationRejected = errors.New("opensearch operation rejected")

	// ErrInvalidRefreshPolicy is returned by New for refresh values other than "", "true", "false" and "wait_for".
	ErrInvalidRefreshPolicy = errors.New("invalid refresh policy")
)
