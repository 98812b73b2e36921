package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics implements the Metrics interface using Prometheus.
// Each instance carries its own registry.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	tipHeight      prometheus.Gauge
	blocksAccepted prometheus.Counter
	blocksRejected *prometheus.CounterVec
	txsApplied     prometheus.Counter
	txsRejected    *prometheus.CounterVec
	accountCount   prometheus.Gauge
	submitDuration prometheus.Histogram
	blockSize      prometheus.Gauge
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance.
func NewPrometheusMetrics(namespace string) *PrometheusMetrics {
	registry := prometheus.NewRegistry()

	m := &PrometheusMetrics{
		registry: registry,

		tipHeight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tip_height",
				Help:      "Height of the current chain tip",
			},
		),
		blocksAccepted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "blocks_accepted_total",
				Help:      "Total number of blocks that extended the tip",
			},
		),
		blocksRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "blocks_rejected_total",
				Help:      "Total number of rejected blocks",
			},
			[]string{"reason"},
		),
		txsApplied: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "txs_applied_total",
				Help:      "Total number of transactions applied by accepted blocks",
			},
		),
		txsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "txs_rejected_total",
				Help:      "Total number of rejected transactions",
			},
			[]string{"reason"},
		),
		accountCount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "account_count",
				Help:      "Number of accounts with a non-zero balance or nonce",
			},
		),
		submitDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "submit_duration_seconds",
				Help:      "Wall time of block submission",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
		blockSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "block_size_bytes",
				Help:      "Canonical size of the latest accepted block in bytes",
			},
		),
	}

	m.registry.MustRegister(
		m.tipHeight,
		m.blocksAccepted,
		m.blocksRejected,
		m.txsApplied,
		m.txsRejected,
		m.accountCount,
		m.submitDuration,
		m.blockSize,
	)

	return m
}

func (m *PrometheusMetrics) SetTipHeight(height uint64) {
	m.tipHeight.Set(float64(height))
}

func (m *PrometheusMetrics) IncBlocksAccepted() {
	m.blocksAccepted.Inc()
}

func (m *PrometheusMetrics) IncBlocksRejected(reason string) {
	m.blocksRejected.WithLabelValues(reason).Inc()
}

func (m *PrometheusMetrics) AddTxsApplied(count int) {
	m.txsApplied.Add(float64(count))
}

func (m *PrometheusMetrics) IncTxsRejected(reason string) {
	m.txsRejected.WithLabelValues(reason).Inc()
}

func (m *PrometheusMetrics) SetAccountCount(count int) {
	m.accountCount.Set(float64(count))
}

func (m *PrometheusMetrics) ObserveSubmitDuration(d time.Duration) {
	m.submitDuration.Observe(d.Seconds())
}

func (m *PrometheusMetrics) SetBlockSize(size int) {
	m.blockSize.Set(float64(size))
}

// HTTPHandler returns an HTTP handler for serving metrics.
func (m *PrometheusMetrics) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry: m.registry,
	})
}

var _ Metrics = (*PrometheusMetrics)(nil)
