package opensearch

import (
	"context"
	"errors"
	"fmt"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// Healthcheck returns a function suitable for liveness and readiness checks.
// The returned function pings the cluster (HEAD /) and treats both transport
// errors and non-2xx answers as unhealthy. It is safe for concurrent use.
func Healthcheck(client *opensearch.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		res, err := opensearchapi.PingRequest{}.Do(ctx, client)
		if err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		defer res.Body.Close()

		if res.IsError() {
			return errors.Join(ErrHealthcheckFailed, fmt.Errorf("ping returned %s", res.Status()))
		}
		return nil
	}
}
