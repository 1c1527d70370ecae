package telemetry

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"stakeMetrics/internal/model"
)

const namespace = "stake_metrics"

// HTTP request metrics.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status_code"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// Poller metrics.
var (
	PollTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "poll",
		Name:      "total",
		Help:      "Total number of refresh attempts by outcome.",
	}, []string{"status"})

	PollDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "poll",
		Name:      "duration_seconds",
		Help:      "Duration of one snapshot fetch and aggregation.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})

	LastBlock = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "poll",
		Name:      "last_block",
		Help:      "Block number of the last processed snapshot.",
	})

	MissingInputs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "snapshot",
		Name:      "missing_inputs_total",
		Help:      "Snapshot inputs that were absent after a fetch.",
	}, []string{"input"})
)

// MetricValue exposes the latest derived value of every output field.
var MetricValue = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "business",
	Name:      "metric_value",
	Help:      "Latest derived staking metric, in whole units.",
}, []string{"metric_name"})

// scale gives the fixed-point exponent of a field's unit.
func scale(name string) int32 {
	switch {
	case strings.HasSuffix(name, "Apr"):
		return 2
	case strings.HasSuffix(name, "Usd"):
		return 30
	default:
		return 18
	}
}

// ObserveMetrics publishes every defined field of m. Undefined fields are
// removed so dashboards show a gap rather than a stale number.
func ObserveMetrics(m model.ProcessedMetrics) {
	for _, f := range m.Fields() {
		n, ok := f.Value.Int()
		if !ok {
			MetricValue.DeleteLabelValues(f.Name)
			continue
		}
		v, _ := decimal.NewFromBigInt(n, -scale(f.Name)).Float64()
		MetricValue.WithLabelValues(f.Name).Set(v)
	}
}
