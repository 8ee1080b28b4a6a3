package snapshot

import "errors"

var (
	ErrExportFailed = errors.New("snapshot export failed")
	ErrWriteFailed  = errors.New("failed to write snapshot")

	// S3 errors
	ErrInvalidConfig      = errors.New("invalid snapshot storage configuration")
	ErrFailedToLoadConfig = errors.New("failed to load AWS config")
	ErrBucketNotFound     = errors.New("bucket not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
