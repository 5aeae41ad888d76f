package api

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/encodeous/netsim/core"
	"github.com/encodeous/netsim/perf"
	"github.com/encodeous/netsim/state"
	"github.com/jellydator/ttlcache/v3"
)

// networkCache keeps converged networks keyed by topology fingerprint.
// Cached networks are shared between requests and must never be mutated.
type networkCache struct {
	cache   *ttlcache.Cache[string, *core.Network]
	maxIter int
	obs     core.Observer
	metrics *Metrics
}

func newNetworkCache(ttl time.Duration, size uint64, maxIter int, obs core.Observer, m *Metrics) *networkCache {
	opts := []ttlcache.Option[string, *core.Network]{
		ttlcache.WithTTL[string, *core.Network](ttl),
		ttlcache.WithDisableTouchOnHit[string, *core.Network](),
	}
	if size > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, *core.Network](size))
	}
	return &networkCache{
		cache:   ttlcache.New[string, *core.Network](opts...),
		maxIter: maxIter,
		obs:     obs,
		metrics: m,
	}
}

// fingerprint identifies a topology independent of the order its nodes and links were declared in.
func fingerprint(topo *state.Topology, maxIter int) string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "iter=%d;", maxIter)
	for _, id := range topo.NodeIds() {
		_, _ = fmt.Fprintf(h, "n=%s;", id)
	}
	for _, l := range topo.Links() {
		_, _ = fmt.Fprintf(h, "l=%s,%s,%d;", l.A, l.B, l.Weight)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the converged network for cfg, running the distance-vector exchange on a miss.
func (c *networkCache) Get(cfg state.TopologyCfg) (*core.Network, error) {
	topo, err := cfg.Topology()
	if err != nil {
		return nil, err
	}
	key := fingerprint(topo, c.maxIter)
	if item := c.cache.Get(key); item != nil {
		c.metrics.cacheLookups.WithLabelValues("hit").Inc()
		return item.Value(), nil
	}
	c.metrics.cacheLookups.WithLabelValues("miss").Inc()

	start := time.Now()
	n := core.NewNetwork(topo, c.obs)
	n.Converge(c.maxIter)
	perf.ObserveConvergence(n.Iterations, time.Since(start))
	c.metrics.convergenceRounds.Observe(float64(n.Iterations))

	c.cache.DeleteExpired()
	c.cache.Set(key, n, ttlcache.DefaultTTL)
	return n, nil
}

func (c *networkCache) Len() int {
	return c.cache.Len()
}
