// Package metrics exports hydra activity as Prometheus metrics.
//
// A Collector is a hydra.Observer: pass it to hydra.WithObserver and it
// counts matched heads, unmatched requests and assertion outcomes. The
// engine adds request counts and durations. Go runtime and process
// metrics are registered next to them.
//
//   - hydra_head_matches_total: heads that handled a request (labels: plugin, head)
//   - hydra_not_found_total: requests no head handled
//   - hydra_assertions_total: assertion outcomes (labels: plugin, test, result)
//   - hydra_requests_total: served requests (labels: method, status)
//   - hydra_request_duration_seconds: request latency (labels: method)
//   - hydra_uptime_seconds: time since the collector was created
//
// Usage:
//
//	m := metrics.New(prometheus.NewRegistry())
//	h := hydra.New(hydra.WithObserver(m))
//	http.Handle("/metrics", m.Handler())
package metrics
