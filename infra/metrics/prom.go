package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/mrapplexz/hack-digital-ambulance/core/metrics"
)

// PromSink records pipeline events in Prometheus metrics.
type PromSink struct {
	runs     *prometheus.CounterVec
	scoring  *prometheus.HistogramVec
	rows     prometheus.Gauge
	duration prometheus.Histogram
}

// NewPromSink registers pipeline metrics on the default Prometheus registerer.
// The Prometheus server should be started separately.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "forecast_runs_total",
		Help: "Total number of forecast pipeline runs",
	}, []string{"cache_hit"})
	scoring := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "forecast_scoring_duration_seconds",
		Help:    "Time spent scoring one substation",
		Buckets: prometheus.DefBuckets,
	}, []string{"substation"})
	rows := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "forecast_window_rows",
		Help: "Number of hourly rows in the computed window",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "forecast_run_duration_seconds",
		Help:    "Wall time of a full pipeline run",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	if err := reg.Register(runs); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			runs = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(scoring); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			scoring = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(rows); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			rows = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	return &PromSink{runs: runs, scoring: scoring, rows: rows, duration: duration}, nil
}

// RecordRun counts the run and observes its wall time.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.runs.WithLabelValues(strconv.FormatBool(ev.CacheHit)).Inc()
	s.rows.Set(float64(ev.Rows))
	s.duration.Observe(ev.Duration.Seconds())
	return nil
}

// RecordLocationScored observes the per-substation scoring duration.
func (s *PromSink) RecordLocationScored(ev coremetrics.LocationEvent) error {
	s.scoring.WithLabelValues(ev.Location).Observe(ev.Duration.Seconds())
	return nil
}
