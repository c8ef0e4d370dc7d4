package simulation

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments the frame loop.
type Metrics struct {
	Frames        prometheus.Counter
	Propagations  *prometheus.CounterVec
	Failures      *prometheus.CounterVec
	FrameDuration prometheus.Histogram
	ElapsedDays   prometheus.Gauge
}

// NewMetrics creates the driver metrics and registers them with reg when reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orrery_frames_total",
			Help: "Total number of simulation frames stepped.",
		}),
		Propagations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orrery_propagations_total",
				Help: "Successful body propagations.",
			},
			[]string{"body"},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orrery_propagation_failures_total",
				Help: "Body updates skipped because propagation failed.",
			},
			[]string{"body"},
		),
		FrameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "orrery_frame_duration_seconds",
			Help:    "Wall time spent propagating one frame.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		ElapsedDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orrery_elapsed_days",
			Help: "Simulated days since the catalog epoch.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Frames, m.Propagations, m.Failures, m.FrameDuration, m.ElapsedDays)
	}
	return m
}
