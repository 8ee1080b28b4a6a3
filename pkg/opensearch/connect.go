package opensearch

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
)

// Client is a health-checked OpenSearch client together with the network
// resources it owns.
type Client struct {
	*opensearch.Client

	cfg       Config
	pool      PoolStrategy
	transport *http.Transport

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Pool reports the connection pool strategy chosen for the client.
func (c *Client) Pool() PoolStrategy { return c.pool }

// Config returns a copy of the configuration the client was built from.
func (c *Client) Config() Config { return c.cfg }

// Close stops node discovery and releases idle pooled connections.
// The client must not be used afterwards. Close is safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.wg.Wait()
	})
	c.transport.CloseIdleConnections()
	return nil
}

// discover refreshes the node list until the client is closed.
// A failed round keeps the previous node list; the next tick retries.
func (c *Client) discover(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			_ = c.Client.DiscoverNodes()
		}
	}
}

// New creates a new OpenSearch client and pings the cluster.
// Any build error or a failed ping is returned joined with ErrConnectionFailed;
// no client is returned in that case.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Join(ErrConnectionFailed, err)
	}
	cfg.Addresses = slices.Clone(cfg.Addresses)

	tlsCfg, err := TLSConfig(cfg)
	if err != nil {
		return nil, errors.Join(ErrConnectionFailed, err)
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		TLSClientConfig:       tlsCfg,
		ResponseHeaderTimeout: cfg.RequestTimeout(),
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
	}

	pool := PoolStrategyFor(cfg)
	ocfg := opensearch.Config{
		Addresses:    cfg.Addresses,
		Username:     cfg.Username,
		Password:     cfg.Password,
		Transport:    transport,
		DisableRetry: true,
	}

	client, err := opensearch.NewClient(ocfg)
	if err != nil {
		return nil, errors.Join(ErrConnectionFailed, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout())
	defer cancel()

	if err := Healthcheck(client)(pingCtx); err != nil {
		transport.CloseIdleConnections()
		return nil, errors.Join(ErrConnectionFailed, err)
	}

	c := &Client{
		Client:    client,
		cfg:       cfg,
		pool:      pool,
		transport: transport,
		done:      make(chan struct{}),
	}
	// discovery runs on our own ticker so Close can stop it
	if pool == PoolDiscovery {
		c.wg.Add(1)
		go c.discover(cfg.discoverInterval())
	}
	return c, nil
}
