// Package metrics defines the observability events the forecast pipeline
// emits and the sink interface infrastructure adapters implement.
package metrics

import "time"

// RunEvent summarizes one full pipeline computation.
type RunEvent struct {
	RunID     string
	Locations int
	Rows      int
	CacheHit  bool
	Duration  time.Duration
	Time      time.Time
}

// LocationEvent records the scoring of a single substation.
type LocationEvent struct {
	RunID    string
	Location string
	Rows     int
	Duration time.Duration
	Time     time.Time
}

// Sink records pipeline events for observability purposes.
type Sink interface {
	RecordRun(ev RunEvent) error
	RecordLocationScored(ev LocationEvent) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error                 { return nil }
func (NopSink) RecordLocationScored(LocationEvent) error { return nil }

// MultiSink fans events out to several sinks, returning the first error.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines the given sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) RecordRun(ev RunEvent) error {
	for _, s := range m.sinks {
		if err := s.RecordRun(ev); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiSink) RecordLocationScored(ev LocationEvent) error {
	for _, s := range m.sinks {
		if err := s.RecordLocationScored(ev); err != nil {
			return err
		}
	}
	return nil
}
