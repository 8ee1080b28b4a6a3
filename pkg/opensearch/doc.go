// Package opensearch builds health-checked clients for an OpenSearch cluster.
//
// It wraps github.com/opensearch-project/opensearch-go/v2 with a declarative
// Config, a TLS policy and a pool strategy derived from the configuration.
// The package exposes four touch points:
//
//   - Config: connection settings that can be populated from OPENSEARCH_*
//     environment variables through LoadConfig.
//
//   - New: constructs a *Client, pings the cluster and fails fast when it is
//     unreachable.
//
//   - Healthcheck: returns a function suitable for liveness and readiness
//     checks.
//
//   - TLSConfig: the certificate policy applied to every connection.
//
// Errors specific to connectivity are exposed as ErrConnectionFailed and
// ErrHealthcheckFailed so that callers can distinguish infrastructure problems
// from business logic errors.
//
// # TLS
//
// Without Config.CACertPath every server certificate is accepted, which keeps
// self-signed development clusters working out of the box. Setting the path
// restricts trust to chains rooted at that authority. Host names are not
// verified in either mode.
//
// # Pool strategy
//
// One address yields PoolSingleNode. Several addresses yield PoolDiscovery,
// which re-reads the cluster topology every Config.DiscoverInterval until
// Client.Close is called.
//
// # Usage
//
//	client, err := opensearch.New(ctx, opensearch.Config{
//	    Addresses: []string{"https://localhost:9200"},
//	    Username:  "admin",
//	    Password:  "admin",
//	})
//	if err != nil {
//	    // use errors.Is(err, opensearch.ErrConnectionFailed)
//	}
//	defer client.Close()
//
// Environment-based configuration:
//
//	cfg, err := opensearch.LoadConfig()
//	if err != nil {
//	    return err
//	}
//	client, err := opensearch.New(ctx, cfg)
//
// Health check:
//
//	check := opensearch.Healthcheck(client.Client)
//	if err := check(ctx); err != nil {
//	    // errors.Is(err, opensearch.ErrHealthcheckFailed) == true
//	}
package opensearch
