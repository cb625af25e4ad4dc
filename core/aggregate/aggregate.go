// Package aggregate reshapes the wide prediction table into the long-format
// daily and hourly views the dashboard consumes, joined with substation
// coordinates. Substations without coordinates are excluded from these
// map-oriented views; they remain in the wide table.
package aggregate

import (
	"time"

	"github.com/mrapplexz/hack-digital-ambulance/core/engine"
	"github.com/mrapplexz/hack-digital-ambulance/core/substation"
)

// DailyRow is one (date, substation) pair with the summed daily call count.
type DailyRow struct {
	Date       time.Time
	Substation string
	Calls      int
	Lat        float64
	Lon        float64
}

// HourlyRow is one (timestamp, substation) pair, no aggregation applied.
type HourlyRow struct {
	Time       time.Time
	Substation string
	Calls      int
	Lat        float64
	Lon        float64
}

// Daily groups the wide table by calendar date, summing counts per
// substation. Rows come out ordered by date, then substation.
func Daily(t *engine.Table, subs *substation.Table) []DailyRow {
	var rows []DailyRow
	if len(t.Timestamps) == 0 {
		return rows
	}
	dayStart := 0
	flush := func(from, to int) {
		date := truncateDay(t.Timestamps[from])
		for j, loc := range t.Locations {
			entry, ok := subs.Lookup(loc)
			if !ok {
				continue
			}
			sum := 0
			for i := from; i < to; i++ {
				sum += t.Counts[i][j]
			}
			rows = append(rows, DailyRow{Date: date, Substation: loc, Calls: sum, Lat: entry.Lat, Lon: entry.Lon})
		}
	}
	for i := 1; i < len(t.Timestamps); i++ {
		if !truncateDay(t.Timestamps[i]).Equal(truncateDay(t.Timestamps[dayStart])) {
			flush(dayStart, i)
			dayStart = i
		}
	}
	flush(dayStart, len(t.Timestamps))
	return rows
}

// Hourly melts the wide table into long format, one row per (timestamp,
// substation), ordered by timestamp then substation.
func Hourly(t *engine.Table, subs *substation.Table) []HourlyRow {
	rows := make([]HourlyRow, 0, len(t.Timestamps)*len(t.Locations))
	for i, ts := range t.Timestamps {
		for j, loc := range t.Locations {
			entry, ok := subs.Lookup(loc)
			if !ok {
				continue
			}
			rows = append(rows, HourlyRow{Time: ts, Substation: loc, Calls: t.Counts[i][j], Lat: entry.Lat, Lon: entry.Lon})
		}
	}
	return rows
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
