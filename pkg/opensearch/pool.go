package opensearch

// PoolStrategy describes how the client spreads requests over cluster nodes.
type PoolStrategy int

const (
	// PoolSingleNode talks to exactly one node with no failover.
	PoolSingleNode PoolStrategy = iota + 1
	// PoolDiscovery starts from the seed addresses and periodically re-reads
	// the cluster topology from any reachable node.
	PoolDiscovery
)

func (p PoolStrategy) String() string {
	switch p {
	case PoolSingleNode:
		return "single-node"
	case PoolDiscovery:
		return "discovery"
	default:
		return "unknown"
	}
}

// PoolStrategyFor picks the pool for cfg: one address means a single node,
// anything more enables discovery.
func PoolStrategyFor(cfg Config) PoolStrategy {
	if len(cfg.Addresses) > 1 {
		return PoolDiscovery
	}
	return PoolSingleNode
}
