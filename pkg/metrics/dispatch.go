package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DispatchMetrics records delivery outcomes for the notification processor.
type DispatchMetrics struct {
	tickDuration prometheus.Histogram
	sent         *prometheus.CounterVec
	failed       *prometheus.CounterVec
	skippedTicks prometheus.Counter
}

// NewDispatchMetrics registers the dispatch metrics on the provided registerer.
func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	if reg == nil {
		return &DispatchMetrics{}
	}
	tickDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dispatch_tick_duration_seconds",
		Help:    "Duration of notification processing ticks in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_channel_sent",
		Help: "Successful channel deliveries.",
	}, []string{"channel"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_channel_failed",
		Help: "Failed channel delivery attempts.",
	}, []string{"channel"})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_ticks_skipped",
		Help: "Ticks skipped because a previous tick was still running.",
	})
	reg.MustRegister(tickDuration, sent, failed, skipped)
	return &DispatchMetrics{
		tickDuration: tickDuration,
		sent:         sent,
		failed:       failed,
		skippedTicks: skipped,
	}
}

// ObserveTick records the duration of one processing pass.
func (d *DispatchMetrics) ObserveTick(duration time.Duration) {
	if d == nil || d.tickDuration == nil {
		return
	}
	d.tickDuration.Observe(duration.Seconds())
}

// IncSent increments the delivery counter for the named channel.
func (d *DispatchMetrics) IncSent(channel string) {
	if d == nil || d.sent == nil {
		return
	}
	d.sent.WithLabelValues(normalizeLabel(channel)).Inc()
}

// IncFailed increments the failure counter for the named channel.
func (d *DispatchMetrics) IncFailed(channel string) {
	if d == nil || d.failed == nil {
		return
	}
	d.failed.WithLabelValues(normalizeLabel(channel)).Inc()
}

// IncSkippedTick counts an overlapping tick that exited early.
func (d *DispatchMetrics) IncSkippedTick() {
	if d == nil || d.skippedTicks == nil {
		return
	}
	d.skippedTicks.Inc()
}
