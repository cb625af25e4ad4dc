package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/mrapplexz/hack-digital-ambulance/core/aggregate"
)

func TestInfluxExporter_ExportHourly(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	exp := NewInfluxExporter(srv.URL, "token", "org", "bucket")
	defer exp.Close()
	ts := time.Date(2022, 5, 25, 14, 0, 0, 0, time.UTC)
	row := aggregate.HourlyRow{Time: ts, Substation: "north", Calls: 7, Lat: 55.6, Lon: 43.4}

	if err := exp.ExportHourly(context.Background(), []aggregate.HourlyRow{row}); err != nil {
		t.Fatalf("export error: %v", err)
	}
	p := write.NewPointWithMeasurement("forecast_calls").
		AddTag("substation", "north").
		AddField("calls", 7).
		AddField("lat", 55.6).
		AddField("lon", 43.4).
		SetTime(ts)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if strings.TrimSpace(body) != expected {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestNewInfluxExporterWithFallback(t *testing.T) {
	// No server listening: the health check fails and a NopExporter is
	// returned instead.
	exp := NewInfluxExporterWithFallback("http://127.0.0.1:1", "token", "org", "bucket")
	if _, ok := exp.(NopExporter); !ok {
		t.Fatalf("expected NopExporter fallback, got %T", exp)
	}
}
