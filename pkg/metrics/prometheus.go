package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	batchesStored *prometheus.CounterVec
	ticksStored   *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		batchesStored: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinlake_batches_stored_total",
				Help: "Total number of tick batches flushed to a backend",
			},
			[]string{"backend", "product"},
		),
		ticksStored: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinlake_ticks_stored_total",
				Help: "Total number of ticks flushed to a backend",
			},
			[]string{"backend", "product"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinlake_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coinlake_last_price",
				Help: "Last observed price for a product",
			},
			[]string{"product"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinlake_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordBatchStored records one flushed batch and its tick count.
func (r *Recorder) RecordBatchStored(backend, product string, ticks int) {
	r.batchesStored.WithLabelValues(backend, product).Inc()
	r.ticksStored.WithLabelValues(backend, product).Add(float64(ticks))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a product.
func (r *Recorder) RecordLastPrice(product string, price float64) {
	r.lastPrice.WithLabelValues(product).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
