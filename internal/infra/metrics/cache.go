package metrics

import "github.com/prometheus/client_golang/prometheus"

var cacheRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "commerce_cache_requests_total",
	Help: "Cache lookups by cache name and result (hit/miss).",
}, []string{"cache", "result"})

func init() {
	register(cacheRequestsTotal)
}

func IncCacheRequest(cache, result string) {
	cacheRequestsTotal.WithLabelValues(norm(cache), norm(result)).Inc()
}
