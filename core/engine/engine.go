// Package engine orchestrates one feature-builder pass and per-substation
// model scoring over the inference window. Substations are independent, so
// scoring fans out over a bounded worker pool; row order within a substation
// always matches the window order.
package engine

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mrapplexz/hack-digital-ambulance/core/features"
	"github.com/mrapplexz/hack-digital-ambulance/core/logger"
	"github.com/mrapplexz/hack-digital-ambulance/core/metrics"
	"github.com/mrapplexz/hack-digital-ambulance/core/model"
	"github.com/mrapplexz/hack-digital-ambulance/core/window"
)

// Table is the wide prediction table: one row per window timestamp, one
// column per substation, in sorted substation order.
type Table struct {
	Timestamps []time.Time
	Locations  []string
	// Counts and Raw are indexed [row][location].
	Counts [][]int
	Raw    [][]float64
}

// Column returns the reported counts for one substation.
func (t *Table) Column(location string) ([]int, bool) {
	for j, loc := range t.Locations {
		if loc == location {
			col := make([]int, len(t.Counts))
			for i := range t.Counts {
				col[i] = t.Counts[i][j]
			}
			return col, true
		}
	}
	return nil, false
}

// RowIndex returns the row position of the timestamp.
func (t *Table) RowIndex(ts time.Time) (int, bool) {
	for i, v := range t.Timestamps {
		if v.Equal(ts) {
			return i, true
		}
	}
	return 0, false
}

// Result bundles the outputs of one pipeline computation.
type Result struct {
	RunID       string
	Features    *features.Frame
	Predictions *Table
	// Attributions maps substation -> per-row attribution vectors (one weight
	// per feature column plus a trailing bias).
	Attributions map[string][][]float64
}

// Engine runs the prediction pipeline against a loaded model registry.
type Engine struct {
	registry *model.Registry
	workers  int
	log      logger.Logger
	sink     metrics.Sink
}

// New creates an engine. workers <= 0 selects NumCPU. A nil sink disables
// metrics.
func New(registry *model.Registry, workers int, log logger.Logger, sink metrics.Sink) *Engine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Engine{registry: registry, workers: workers, log: log, sink: sink}
}

type locResult struct {
	scores model.Scores
	attrs  [][]float64
}

// Predict computes the full window: one feature pass, then every substation
// scored on the worker pool. Any scoring error cancels the remaining work and
// fails the whole run; a result never silently omits a substation.
func (e *Engine) Predict(ctx context.Context, win window.Window) (*Result, error) {
	if err := win.Validate(); err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	start := time.Now()

	frame, err := features.Build(win.Hours())
	if err != nil {
		return nil, err
	}
	locations := e.registry.Locations()
	e.log.Infof("run %s: scoring %d substations over %d rows with %d workers",
		runID, len(locations), frame.NumRows(), e.workers)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]locResult, len(locations))
	jobs := make(chan int)
	errCh := make(chan error, 1)
	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					return
				}
				loc := locations[idx]
				tm, _ := e.registry.Model(loc)
				t0 := time.Now()
				scores, attrs, err := tm.Score(frame)
				if err != nil {
					select {
					case errCh <- err:
					default:
					}
					cancel()
					return
				}
				results[idx] = locResult{scores: scores, attrs: attrs}
				if err := e.sink.RecordLocationScored(metrics.LocationEvent{
					RunID:    runID,
					Location: loc,
					Rows:     frame.NumRows(),
					Duration: time.Since(t0),
					Time:     time.Now(),
				}); err != nil {
					e.log.Warnf("run %s: metrics sink: %v", runID, err)
				}
			}
		}()
	}
feed:
	for idx := range locations {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	select {
	case err := <-errCh:
		return nil, err
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		RunID:        runID,
		Features:     frame,
		Predictions:  assemble(frame.Timestamps, locations, results),
		Attributions: make(map[string][][]float64, len(locations)),
	}
	for idx, loc := range locations {
		res.Attributions[loc] = results[idx].attrs
	}
	if err := e.sink.RecordRun(metrics.RunEvent{
		RunID:     runID,
		Locations: len(locations),
		Rows:      frame.NumRows(),
		Duration:  time.Since(start),
		Time:      time.Now(),
	}); err != nil {
		e.log.Warnf("run %s: metrics sink: %v", runID, err)
	}
	e.log.Infof("run %s: done in %s", runID, time.Since(start))
	return res, nil
}

func assemble(timestamps []time.Time, locations []string, results []locResult) *Table {
	t := &Table{
		Timestamps: append([]time.Time(nil), timestamps...),
		Locations:  append([]string(nil), locations...),
		Counts:     make([][]int, len(timestamps)),
		Raw:        make([][]float64, len(timestamps)),
	}
	for i := range timestamps {
		t.Counts[i] = make([]int, len(locations))
		t.Raw[i] = make([]float64, len(locations))
		for j := range locations {
			t.Counts[i][j] = results[j].scores.Counts[i]
			t.Raw[i][j] = results[j].scores.Raw[i]
		}
	}
	return t
}
