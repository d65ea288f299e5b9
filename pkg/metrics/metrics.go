// Package metrics provides the centralized Prometheus metrics registry.
// Metrics are defined in their owning packages (client, cache, ratelimit)
// via promauto; this package documents what is exported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registerer used by the service.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - ctgov_requests_total{status} (Counter): Upstream requests by HTTP status
//   - ctgov_request_duration_seconds (Histogram): Upstream request duration
//   - ctgov_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Cache Metrics (pkg/cache):
//   - ctgov_cache_hits_total (Counter): Upstream page cache hits
//   - ctgov_cache_misses_total (Counter): Upstream page cache misses
//   - ctgov_cache_errors_total{operation} (Counter): Cache operation errors
//
// Rate Limit Metrics (pkg/ratelimit):
//   - ctgov_request_budget_remaining (Gauge): Requests left in the current window
//   - ctgov_rate_limit_blocks_total (Counter): Requests blocked locally
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   rate(ctgov_cache_hits_total[5m]) /
//   (rate(ctgov_cache_hits_total[5m]) + rate(ctgov_cache_misses_total[5m]))
//
//   # Upstream Error Rate
//   rate(ctgov_errors_total[5m])
//
//   # P95 Upstream Latency
//   histogram_quantile(0.95, rate(ctgov_request_duration_seconds_bucket[5m]))
