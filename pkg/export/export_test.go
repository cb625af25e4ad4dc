package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mrapplexz/hack-digital-ambulance/core/aggregate"
)

func TestWriteDailyCSV(t *testing.T) {
	rows := []aggregate.DailyRow{
		{Date: time.Date(2022, 5, 25, 0, 0, 0, 0, time.UTC), Substation: "north", Calls: 42, Lat: 55.6, Lon: 43.4},
	}
	var buf bytes.Buffer
	if err := WriteDailyCSV(&buf, rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "date,substation,calls,lat,lon\n2022-05-25,north,42,55.6,43.4\n"
	if buf.String() != want {
		t.Fatalf("csv output:\n%s", buf.String())
	}
}

func TestWriteHourlyCSV(t *testing.T) {
	rows := []aggregate.HourlyRow{
		{Time: time.Date(2022, 5, 25, 14, 0, 0, 0, time.UTC), Substation: "north", Calls: 7, Lat: 55.6, Lon: 43.4},
	}
	var buf bytes.Buffer
	if err := WriteHourlyCSV(&buf, rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "2022-05-25T14:00:00Z,north,7,55.6,43.4") {
		t.Fatalf("csv output:\n%s", buf.String())
	}
}

func TestWriteDailyJSON(t *testing.T) {
	rows := []aggregate.DailyRow{
		{Date: time.Date(2022, 5, 25, 0, 0, 0, 0, time.UTC), Substation: "north", Calls: 42},
	}
	var buf bytes.Buffer
	if err := WriteDailyJSON(&buf, rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), `"Substation":"north"`) {
		t.Fatalf("json output:\n%s", buf.String())
	}
}
