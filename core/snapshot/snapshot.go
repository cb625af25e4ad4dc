// Package snapshot defines the durable bundle of everything one pipeline run
// produces, plus the key that identifies it in the result cache.
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/mrapplexz/hack-digital-ambulance/core/aggregate"
	"github.com/mrapplexz/hack-digital-ambulance/core/engine"
	"github.com/mrapplexz/hack-digital-ambulance/core/features"
	"github.com/mrapplexz/hack-digital-ambulance/core/window"
)

// Snapshot is the full computed artifact set of one inference window.
type Snapshot struct {
	Key       string
	CreatedAt time.Time
	Window    window.Window

	Features     *features.Frame
	Predictions  *engine.Table
	Attributions map[string][][]float64
	Daily        []aggregate.DailyRow
	Hourly       []aggregate.HourlyRow
}

// Key derives the cache key for a window and artifact fingerprint. Changing
// either the window bounds or the loaded artifacts yields a different key, so
// a stale snapshot is a cache miss rather than silently reused.
func Key(win window.Window, fingerprint string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%d|%d|%s", win.From.Unix(), win.To.Unix(), int64(window.Step.Seconds()), fingerprint)
	return hex.EncodeToString(h.Sum(nil))
}

// New assembles a snapshot from a pipeline result and its derived views.
func New(win window.Window, fingerprint string, res *engine.Result, daily []aggregate.DailyRow, hourly []aggregate.HourlyRow) *Snapshot {
	return &Snapshot{
		Key:          Key(win, fingerprint),
		CreatedAt:    time.Now().UTC(),
		Window:       win,
		Features:     res.Features,
		Predictions:  res.Predictions,
		Attributions: res.Attributions,
		Daily:        daily,
		Hourly:       hourly,
	}
}

// FeatureWeight is one feature's contribution to a prediction.
type FeatureWeight struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
	Weight  float64 `json:"weight"`
}

// Explanation is the additive decomposition of a single prediction: the
// weights plus the bias sum to the raw score.
type Explanation struct {
	Substation string          `json:"substation"`
	Time       time.Time       `json:"time"`
	Raw        float64         `json:"raw"`
	Count      int             `json:"count"`
	Bias       float64         `json:"bias"`
	Features   []FeatureWeight `json:"features"`
}

// Explain returns the attribution of one (substation, timestamp) prediction.
func (s *Snapshot) Explain(location string, ts time.Time) (*Explanation, error) {
	attrs, ok := s.Attributions[location]
	if !ok {
		return nil, fmt.Errorf("snapshot: unknown substation %q", location)
	}
	row, ok := s.Predictions.RowIndex(ts)
	if !ok {
		return nil, fmt.Errorf("snapshot: timestamp %s outside window %s", ts.Format(time.RFC3339), s.Window)
	}
	col := -1
	for j, loc := range s.Predictions.Locations {
		if loc == location {
			col = j
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("snapshot: unknown substation %q", location)
	}
	attr := attrs[row]
	ex := &Explanation{
		Substation: location,
		Time:       ts,
		Raw:        s.Predictions.Raw[row][col],
		Count:      s.Predictions.Counts[row][col],
		Bias:       attr[len(attr)-1],
		Features:   make([]FeatureWeight, len(s.Features.Columns)),
	}
	for j, name := range s.Features.Columns {
		ex.Features[j] = FeatureWeight{Feature: name, Value: s.Features.Rows[row][j], Weight: attr[j]}
	}
	return ex, nil
}
