package features

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"
)

func hourRange(start time.Time, n int) []time.Time {
	ts := make([]time.Time, n)
	for i := range ts {
		ts[i] = start.Add(time.Duration(i) * time.Hour)
	}
	return ts
}

func TestBuildSchema(t *testing.T) {
	frame, err := Build(hourRange(time.Date(2022, 5, 25, 0, 0, 0, 0, time.UTC), 3))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(frame.Columns) != 99 {
		t.Fatalf("expected 99 columns, got %d", len(frame.Columns))
	}
	if frame.NumRows() != 3 {
		t.Fatalf("expected 3 rows, got %d", frame.NumRows())
	}
	for _, row := range frame.Rows {
		if len(row) != len(frame.Columns) {
			t.Fatalf("ragged row: %d columns", len(row))
		}
	}
	if frame.Columns[0] != ColHour || frame.Columns[8] != ColFullHours {
		t.Fatalf("unexpected leading columns: %v", frame.Columns[:9])
	}
	if frame.Columns[9] != "sin(1*x)_func_hour" {
		t.Fatalf("first derived column: got %q", frame.Columns[9])
	}
	if frame.Columns[98] != "tanh(x/5)_func_month" {
		t.Fatalf("last derived column: got %q", frame.Columns[98])
	}
}

func TestBuildCalendarRow(t *testing.T) {
	// 2022-05-25 00:00 is a Wednesday.
	frame, err := Build(hourRange(time.Date(2022, 5, 25, 0, 0, 0, 0, time.UTC), 1))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	row := frame.Rows[0]
	want := map[string]float64{
		ColHour:      0,
		ColDay:       25,
		ColMonth:     5,
		ColDayOfWeek: 2,
		ColIsMorning: 0,
		ColIsDay:     0,
		ColIsEvening: 0,
		ColIsNight:   1,
		ColFullHours: 65520,
	}
	for name, val := range want {
		idx, ok := frame.ColumnIndex(name)
		if !ok {
			t.Fatalf("missing column %q", name)
		}
		if row[idx] != val {
			t.Fatalf("%s: got %v, want %v", name, row[idx], val)
		}
	}
}

func TestTimeOfDayFlagsExclusive(t *testing.T) {
	frame, err := Build(hourRange(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), 24))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	flags := []string{ColIsMorning, ColIsDay, ColIsEvening, ColIsNight}
	for i, row := range frame.Rows {
		sum := 0.0
		for _, name := range flags {
			idx, _ := frame.ColumnIndex(name)
			sum += row[idx]
		}
		if sum != 1 {
			t.Fatalf("hour %d: time-of-day flags sum to %v", i, sum)
		}
	}
}

func TestDerivedColumns(t *testing.T) {
	frame, err := Build(hourRange(time.Date(2022, 5, 25, 7, 0, 0, 0, time.UTC), 1))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	row := frame.Rows[0]
	checks := map[string]float64{
		"sin(1*x)_func_hour":  math.Sin(7),
		"cos(2*x)_func_month": math.Cos(10),
		"tanh(3*x)_func_day":  math.Tanh(75),
		"sin(x/4)_func_hour":  math.Sin(7.0 / 4),
		"cos(x/5)_func_day":   math.Cos(25.0 / 5),
	}
	for name, want := range checks {
		idx, ok := frame.ColumnIndex(name)
		if !ok {
			t.Fatalf("missing column %q", name)
		}
		if math.Abs(row[idx]-want) > 1e-12 {
			t.Fatalf("%s: got %v, want %v", name, row[idx], want)
		}
	}
}

func TestDeterminism(t *testing.T) {
	ts := hourRange(time.Date(2022, 5, 25, 0, 0, 0, 0, time.UTC), 48)
	a, err := Build(ts)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	b, err := Build(ts)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("two builds of the same input differ")
	}
}

func TestFullHoursMonotonic(t *testing.T) {
	// Spans a month boundary, where the approximate calendar is most likely
	// to misbehave.
	frame, err := Build(hourRange(time.Date(2022, 5, 30, 0, 0, 0, 0, time.UTC), 24*5))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	idx, _ := frame.ColumnIndex(ColFullHours)
	for i := 1; i < frame.NumRows(); i++ {
		if frame.Rows[i][idx] <= frame.Rows[i-1][idx] {
			t.Fatalf("full_hours not strictly increasing at row %d: %v then %v",
				i, frame.Rows[i-1][idx], frame.Rows[i][idx])
		}
	}
}

func TestBuildRejectsBadInput(t *testing.T) {
	var schemaErr *SchemaError
	if _, err := Build(nil); !errors.As(err, &schemaErr) {
		t.Fatalf("empty input: expected SchemaError, got %v", err)
	}
	base := time.Date(2022, 5, 25, 0, 0, 0, 0, time.UTC)
	unsorted := []time.Time{base.Add(time.Hour), base}
	if _, err := Build(unsorted); !errors.As(err, &schemaErr) {
		t.Fatalf("unsorted input: expected SchemaError, got %v", err)
	}
	duplicated := []time.Time{base, base}
	if _, err := Build(duplicated); !errors.As(err, &schemaErr) {
		t.Fatalf("duplicate input: expected SchemaError, got %v", err)
	}
}
