package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/siadin-id/siadin/pkg/cache"
)

var cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "siadin_cache_requests_total",
	Help: "Cache lookups, by store name and result.",
}, []string{"cache", "result"})

type instrumentedStore struct {
	inner cache.Store
	name  string
}

// InstrumentCache wraps a store with hit/miss counters.
func InstrumentCache(name string, inner cache.Store) cache.Store {
	return &instrumentedStore{inner: inner, name: name}
}

func (s *instrumentedStore) Get(ctx context.Context, key string) ([]byte, bool) {
	value, ok := s.inner.Get(ctx, key)
	result := "miss"
	if ok {
		result = "hit"
	}
	cacheRequests.WithLabelValues(s.name, result).Inc()
	return value, ok
}

func (s *instrumentedStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	s.inner.Set(ctx, key, value, ttl)
}

func (s *instrumentedStore) Delete(ctx context.Context, keys ...string) {
	s.inner.Delete(ctx, keys...)
}

func (s *instrumentedStore) DeleteByPrefix(ctx context.Context, prefix string) {
	s.inner.DeleteByPrefix(ctx, prefix)
}
