// Package window defines the hourly inference window the prediction
// pipeline is computed over.
package window

import (
	"fmt"
	"time"
)

// Step is the fixed distance between consecutive timestamps in a window.
const Step = time.Hour

// Window is a closed range [From, To] expanded into a contiguous hourly
// timestamp sequence.
type Window struct {
	From time.Time
	To   time.Time
}

// New validates the bounds and returns the window.
func New(from, to time.Time) (Window, error) {
	w := Window{From: from, To: to}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Validate checks that the bounds are set, ordered and aligned to whole hours.
func (w Window) Validate() error {
	if w.From.IsZero() || w.To.IsZero() {
		return fmt.Errorf("window bounds are required")
	}
	if w.To.Before(w.From) {
		return fmt.Errorf("window end %s precedes start %s", w.To.Format(time.RFC3339), w.From.Format(time.RFC3339))
	}
	if !w.From.Truncate(Step).Equal(w.From) || !w.To.Truncate(Step).Equal(w.To) {
		return fmt.Errorf("window bounds must align to whole hours")
	}
	return nil
}

// Hours expands the window into its strictly increasing hourly timestamp
// sequence, bounds inclusive.
func (w Window) Hours() []time.Time {
	n := int(w.To.Sub(w.From)/Step) + 1
	ts := make([]time.Time, 0, n)
	for t := w.From; !t.After(w.To); t = t.Add(Step) {
		ts = append(ts, t)
	}
	return ts
}

// Len returns the number of hourly timestamps the window covers.
func (w Window) Len() int {
	return int(w.To.Sub(w.From)/Step) + 1
}

func (w Window) String() string {
	return w.From.Format(time.RFC3339) + ".." + w.To.Format(time.RFC3339)
}
