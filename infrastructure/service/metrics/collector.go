package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/complyance/governance/application/port/outbound"
)

const metricsNamespace = "governance"

// Collector is a prometheus.Collector for lifecycle transitions and HTTP
// traffic.
type Collector struct {
	transitions     *prometheus.CounterVec
	cascadeFailures *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

var _ outbound.LifecycleMetrics = (*Collector)(nil)

// NewCollector returns a new Collector.
func NewCollector() *Collector {
	return &Collector{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "lifecycle_transitions_total",
				Help:      "The number of completed lifecycle transitions.",
			}, []string{"entity", "action"},
		),
		cascadeFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "cascade_failures_total",
				Help:      "The number of cascades interrupted by a storage error.",
			}, []string{"entity", "action"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "The time taken to serve an HTTP request.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			}, []string{"method", "route", "status"},
		),
	}
}

func (c *Collector) ObserveTransition(entityType, action string) {
	c.transitions.WithLabelValues(entityType, action).Inc()
}

func (c *Collector) ObserveCascadeFailure(entityType, action string) {
	c.cascadeFailures.WithLabelValues(entityType, action).Inc()
}

// ObserveRequest records one served request. route is the matched route
// template, not the raw path.
func (c *Collector) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	c.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.transitions.Describe(ch)
	c.cascadeFailures.Describe(ch)
	c.requestDuration.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.transitions.Collect(ch)
	c.cascadeFailures.Collect(ch)
	c.requestDuration.Collect(ch)
}
