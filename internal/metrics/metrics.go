package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rvintel"

// Facade tiers, in the order requests are tried against them.
const (
	TierUnfiltered = "unfiltered"
	TierSnapshot   = "snapshot"
	TierComputed   = "computed"
)

// Build outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds every collector the service exports. Construct one per registry.
type Metrics struct {
	registry *prometheus.Registry

	BuildDuration       *prometheus.HistogramVec
	BuildsTotal         *prometheus.CounterVec
	GenerationRows      *prometheus.GaugeVec
	GenerationTimestamp prometheus.Gauge
	Snapshots           prometheus.Gauge
	JoinMissRows        *prometheus.GaugeVec
	UpstreamRequests    *prometheus.CounterVec
	FacadeRequests      *prometheus.CounterVec
}

// New registers the collectors on a fresh registry, together with the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return newWith(reg)
}

func newWith(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		BuildDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "build_duration_seconds",
			Help: `Wall time of a cache build, from the first fetch to the finished generation.

Builds that fail or time out are recorded with outcome="failure".`,
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 900},
		}, []string{"backend", "outcome"}),
		BuildsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "builds_total",
			Help:      `The cumulative number of cache builds, by backend and outcome.`,
		}, []string{"backend", "outcome"}),
		GenerationRows: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "generation_rows",
			Help:      `Rows held by the serving generation, by table.`,
		}, []string{"table"}),
		GenerationTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "generation_built_timestamp",
			Help:      `Seconds since the Unix epoch when the serving generation finished building.`,
		}),
		Snapshots: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "snapshots",
			Help:      `Single-filter snapshots precomputed in the serving generation.`,
		}),
		JoinMissRows: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "joiner",
			Name:      "missed_rows",
			Help: `Fact rows of the serving generation whose key had no dimension row.

A high value means aggregate totals are attributed to "Unknown" buckets.`,
		}, []string{"dimension"}),
		UpstreamRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "requests_total",
			Help:      `The cumulative number of requests made to a backend, including retries.`,
		}, []string{"backend", "operation", "outcome"}),
		FacadeRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "facade",
			Name:      "requests_total",
			Help: `The cumulative number of summary and velocity requests, by the tier that served them.

tier is one of unfiltered, snapshot or computed.`,
		}, []string{"endpoint", "tier"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Gatherer exposes the registry to tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}
