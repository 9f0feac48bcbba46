package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var totalEncodes atomic.Int64

var (
	EncodeDuration = promauto.NewSummary(prometheus.SummaryOpts{
		Name: "encoder_encode_duration_seconds",
		Help: "Duration of one full encoder pass",
	})

	EncodesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "encoder_encodes_total",
		Help: "The total number of encoder passes executed",
	})

	AccelOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "accel_ops_total",
		Help: "Operations dispatched to an accelerated provider",
	}, []string{"provider"})

	SelfTestFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parity_selftest_failures_total",
		Help: "Self-test mismatches between reference and active provider",
	}, []string{"provider"})

	ChecksumMismatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parity_checksum_mismatches_total",
		Help: "End-to-end checksums diverging from the software baseline",
	})

	ParityRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "parity_run_duration_seconds",
		Help:    "Histogram of full parity verification run times",
		Buckets: prometheus.DefBuckets,
	})
)

// RecordEncode tracks one completed encoder pass.
func RecordEncode(seconds float64) {
	totalEncodes.Add(1)
	EncodesTotal.Inc()
	EncodeDuration.Observe(seconds)
}

// TotalEncodes returns the process-lifetime encode count.
func TotalEncodes() int64 {
	return totalEncodes.Load()
}
