package providers

// cacheWithMetrics decorates a cache with hit/miss counters.
type cacheWithMetrics struct {
	inner   CacheProviderInterface
	metrics MetricsProviderInterface
}

func NewCacheWithMetrics(inner CacheProviderInterface, metrics MetricsProviderInterface) CacheProviderInterface {
	return &cacheWithMetrics{inner: inner, metrics: metrics}
}

func (c *cacheWithMetrics) Get(key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	if ok {
		c.metrics.IncCacheHits()
	} else {
		c.metrics.IncCacheMisses()
	}
	return val, ok
}

func (c *cacheWithMetrics) Set(key string, value []byte) {
	c.inner.Set(key, value)
}

func (c *cacheWithMetrics) Del(key string) {
	c.inner.Del(key)
}
