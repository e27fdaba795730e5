package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RecorderMetrics covers the settlement recording pipeline. A nil
// receiver is a no-op so usecases can run without a registry in tests.
type RecorderMetrics struct {
	RecordingsTotal        prometheus.CounterVec
	IdempotentReplaysTotal prometheus.CounterVec
	RecorderErrorsTotal    prometheus.CounterVec
	RewardsDistributed     prometheus.CounterVec
	ConfirmationWait       prometheus.Histogram
}

func NewRecorderMetrics() *RecorderMetrics {
	return &RecorderMetrics{
		RecordingsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recordings_total",
				Help: "Settlement records persisted, by record kind",
			},
			[]string{"kind"},
		),

		IdempotentReplaysTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "idempotent_replays_total",
				Help: "Recording requests answered from a completed idempotency record",
			},
			[]string{"kind"},
		),

		RecorderErrorsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recorder_errors_total",
				Help: "Recording failures by kind and error type",
			},
			[]string{"kind", "error_type"},
		),

		RewardsDistributed: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rewards_distributed_units_total",
				Help: "Reward credit units distributed, by merchant",
			},
			[]string{"merchant_id"},
		),

		ConfirmationWait: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "confirmation_wait_seconds",
				Help:    "Time spent waiting for ledger confirmation",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			},
		),
	}
}

func (m *RecorderMetrics) RecordSettled(kind string) {
	if m == nil {
		return
	}
	m.RecordingsTotal.WithLabelValues(kind).Inc()
}

func (m *RecorderMetrics) RecordReplay(kind string) {
	if m == nil {
		return
	}
	m.IdempotentReplaysTotal.WithLabelValues(kind).Inc()
}

func (m *RecorderMetrics) RecordError(kind, errorType string) {
	if m == nil {
		return
	}
	m.RecorderErrorsTotal.WithLabelValues(kind, errorType).Inc()
}

func (m *RecorderMetrics) RecordRewardDistributed(merchantID string, units uint64) {
	if m == nil {
		return
	}
	m.RewardsDistributed.WithLabelValues(merchantID).Add(float64(units))
}

func (m *RecorderMetrics) ObserveConfirmationWait(seconds float64) {
	if m == nil {
		return
	}
	m.ConfirmationWait.Observe(seconds)
}
