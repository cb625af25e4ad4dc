// Package features builds the fixed-schema numeric feature frame the target
// models are trained on. The schema is part of the model contract: column
// names, order and the approximate full-hours index must match training
// exactly, so everything here is deterministic and free of side effects.
package features

import (
	"fmt"
	"math"
	"time"
)

// Feature column names shared with the trained artifacts.
const (
	ColHour      = "hour"
	ColDay       = "day"
	ColMonth     = "month"
	ColDayOfWeek = "day_of_week"
	ColIsMorning = "is_morning"
	ColIsDay     = "is_day"
	ColIsEvening = "is_evening"
	ColIsNight   = "is_night"
	ColFullHours = "full_hours"
)

// originYear anchors the approximate full-hours index. Training used the same
// anchor, so it must never change.
const originYear = 2015

// generator is one periodic basis function applied to a calendar column.
type generator struct {
	name string
	fn   func(float64) float64
}

// generators returns the 30 basis functions in their canonical order:
// for i=1..5 the transforms sin(i*x), cos(i*x), tanh(i*x), sin(x/i),
// cos(x/i), tanh(x/i).
func generators() []generator {
	gens := make([]generator, 0, 30)
	for i := 1; i <= 5; i++ {
		k := float64(i)
		gens = append(gens,
			generator{fmt.Sprintf("sin(%d*x)", i), func(x float64) float64 { return math.Sin(k * x) }},
			generator{fmt.Sprintf("cos(%d*x)", i), func(x float64) float64 { return math.Cos(k * x) }},
			generator{fmt.Sprintf("tanh(%d*x)", i), func(x float64) float64 { return math.Tanh(k * x) }},
			generator{fmt.Sprintf("sin(x/%d)", i), func(x float64) float64 { return math.Sin(x / k) }},
			generator{fmt.Sprintf("cos(x/%d)", i), func(x float64) float64 { return math.Cos(x / k) }},
			generator{fmt.Sprintf("tanh(x/%d)", i), func(x float64) float64 { return math.Tanh(x / k) }},
		)
	}
	return gens
}

// generatorBases are the calendar columns every basis function is applied to.
var generatorBases = []string{ColHour, ColDay, ColMonth}

// Columns returns the full schema in order: the nine calendar columns followed
// by the 90 derived basis columns (generator-major, base-column-minor).
func Columns() []string {
	cols := []string{
		ColHour, ColDay, ColMonth, ColDayOfWeek,
		ColIsMorning, ColIsDay, ColIsEvening, ColIsNight,
		ColFullHours,
	}
	for _, g := range generators() {
		for _, base := range generatorBases {
			cols = append(cols, g.name+"_func_"+base)
		}
	}
	return cols
}

// CategoricalColumns lists the columns the base learners treat as categories.
func CategoricalColumns() []string {
	return []string{ColHour, ColDay, ColMonth, ColDayOfWeek}
}

// Frame is a feature table, one row per input timestamp. Rows share the
// Columns schema.
type Frame struct {
	Columns    []string
	Timestamps []time.Time
	Rows       [][]float64
}

// NumRows returns the number of rows in the frame.
func (f *Frame) NumRows() int { return len(f.Rows) }

// ColumnIndex returns the position of the named column.
func (f *Frame) ColumnIndex(name string) (int, bool) {
	for i, c := range f.Columns {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

// RowIndex returns the position of the row for the given timestamp.
func (f *Frame) RowIndex(ts time.Time) (int, bool) {
	for i, t := range f.Timestamps {
		if t.Equal(ts) {
			return i, true
		}
	}
	return 0, false
}

// SchemaError reports malformed input to the feature builder. The caller must
// fix the timestamp sequence; there is no recovery.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return "features: " + e.Reason
}

// FullHours computes the approximate elapsed-hours index for the timestamp.
// The 365-day year and 30-day month are deliberate: the index is an ordering
// key the trend and shrink models were trained against, not a calendar-exact
// hour count.
func FullHours(t time.Time) int {
	return ((t.Year()-originYear)*365+int(t.Month())*30+t.Day())*24 + t.Hour()
}

// Build converts an ordered, non-empty timestamp sequence into a feature
// frame. Calling it twice on the same input yields identical output.
func Build(timestamps []time.Time) (*Frame, error) {
	if len(timestamps) == 0 {
		return nil, &SchemaError{Reason: "empty timestamp sequence"}
	}
	for i := 1; i < len(timestamps); i++ {
		if !timestamps[i].After(timestamps[i-1]) {
			return nil, &SchemaError{Reason: fmt.Sprintf(
				"timestamps not strictly increasing at index %d (%s then %s)",
				i, timestamps[i-1].Format(time.RFC3339), timestamps[i].Format(time.RFC3339))}
		}
	}

	cols := Columns()
	gens := generators()
	frame := &Frame{
		Columns:    cols,
		Timestamps: append([]time.Time(nil), timestamps...),
		Rows:       make([][]float64, len(timestamps)),
	}
	for i, t := range timestamps {
		row := make([]float64, 0, len(cols))
		hour := float64(t.Hour())
		day := float64(t.Day())
		month := float64(int(t.Month()))

		row = append(row, hour, day, month, float64(dayOfWeek(t)))
		row = append(row,
			boolToFloat(t.Hour() >= 4 && t.Hour() <= 12),
			boolToFloat(t.Hour() >= 13 && t.Hour() <= 18),
			boolToFloat(t.Hour() >= 19),
			boolToFloat(t.Hour() < 4),
		)
		row = append(row, float64(FullHours(t)))
		for _, g := range gens {
			row = append(row, g.fn(hour), g.fn(day), g.fn(month))
		}
		frame.Rows[i] = row
	}
	return frame, nil
}

// dayOfWeek maps to the trained encoding: Monday=0 .. Sunday=6.
func dayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
