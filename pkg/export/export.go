// Package export writes the derived prediction views to CSV or JSON for
// offline consumers.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/mrapplexz/hack-digital-ambulance/core/aggregate"
)

// WriteDailyJSON writes the daily view to w in JSON format.
func WriteDailyJSON(w io.Writer, rows []aggregate.DailyRow) error {
	enc := json.NewEncoder(w)
	return enc.Encode(rows)
}

// WriteHourlyJSON writes the hourly view to w in JSON format.
func WriteHourlyJSON(w io.Writer, rows []aggregate.HourlyRow) error {
	enc := json.NewEncoder(w)
	return enc.Encode(rows)
}

// WriteDailyCSV writes the daily view to w in CSV format.
func WriteDailyCSV(w io.Writer, rows []aggregate.DailyRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "substation", "calls", "lat", "lon"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Date.Format("2006-01-02"),
			r.Substation,
			strconv.Itoa(r.Calls),
			strconv.FormatFloat(r.Lat, 'f', -1, 64),
			strconv.FormatFloat(r.Lon, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteHourlyCSV writes the hourly view to w in CSV format.
func WriteHourlyCSV(w io.Writer, rows []aggregate.HourlyRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "substation", "calls", "lat", "lon"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Time.Format(time.RFC3339),
			r.Substation,
			strconv.Itoa(r.Calls),
			strconv.FormatFloat(r.Lat, 'f', -1, 64),
			strconv.FormatFloat(r.Lon, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
