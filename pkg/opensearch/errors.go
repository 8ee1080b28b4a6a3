package opensearch

import "errors"

var (
	// ErrConnectionFailed indicates the OpenSearch client could not be created
	// due to configuration or network issues. Use errors.Is() to check.
	ErrConnectionFailed = errors.New("opensearch connection failed")

	// ErrHealthcheckFailed indicates the cluster is unreachable or unhealthy.
	// Returned by both New() during initialization and Healthcheck() during monitoring.
	ErrHealthcheckFailed = errors.New("opensearch healthcheck failed")

	// Configuration errors
	ErrNoAddresses    = errors.New("opensearch addresses can not be empty")
	ErrInvalidAddress = errors.New("invalid opensearch address")
	ErrInvalidCACert  = errors.New("invalid certificate authority file")
	ErrParsingConfig  = errors.New("failed to parse opensearch config")

	// ErrUntrustedCertificate is returned by the verification callback when the
	// server chain does not lead to the configured authority.
	ErrUntrustedCertificate = errors.New("server certificate is not signed by the configured authority")
)
