package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/getmockd/hydra/pkg/hydra"
)

const namespace = "hydra"

// Assertion result label values.
const (
	ResultPass = "pass"
	ResultFail = "fail"
)

// Collector records hydra metrics.
type Collector struct {
	registry *prometheus.Registry

	headMatches     *prometheus.CounterVec
	notFound        prometheus.Counter
	assertions      *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

var _ hydra.Observer = (*Collector)(nil)

// New creates a Collector and registers it, with the Go runtime and process
// collectors, on reg. A nil reg gets a fresh registry.
func New(reg *prometheus.Registry) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	start := time.Now()

	c := &Collector{
		registry: reg,
		headMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "head_matches_total",
			Help:      "Heads that handled a request",
		}, []string{"plugin", "head"}),
		notFound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "not_found_total",
			Help:      "Requests no head handled",
		}),
		assertions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assertions_total",
			Help:      "Assertion outcomes by test",
		}, []string{"plugin", "test", "result"}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests served",
		}, []string{"method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Request latency",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"method"}),
	}

	reg.MustRegister(
		c.headMatches,
		c.notFound,
		c.assertions,
		c.requestsTotal,
		c.requestDuration,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Seconds since the server started",
		}, func() float64 { return time.Since(start).Seconds() }),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// HeadMatched counts a head handling a request.
func (c *Collector) HeadMatched(plugin, head string) {
	c.headMatches.WithLabelValues(plugin, head).Inc()
}

// NotFound counts a request no head handled.
func (c *Collector) NotFound(string) {
	c.notFound.Inc()
}

// AssertionRecorded counts an assertion outcome.
func (c *Collector) AssertionRecorded(test hydra.TestRef, passed bool) {
	result := ResultFail
	if passed {
		result = ResultPass
	}
	c.assertions.WithLabelValues(test.Plugin, test.Test, result).Inc()
}

// ObserveRequest records a served request.
func (c *Collector) ObserveRequest(method string, status int, d time.Duration) {
	c.requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// Registry returns the registry the metrics live in.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
