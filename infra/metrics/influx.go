package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/mrapplexz/hack-digital-ambulance/core/aggregate"
	"github.com/mrapplexz/hack-digital-ambulance/infra/logger"
)

// ForecastExporter ships the computed hourly forecast series to a time-series
// store for downstream dashboards.
type ForecastExporter interface {
	ExportHourly(ctx context.Context, rows []aggregate.HourlyRow) error
}

// InfluxExporter writes forecasts to an InfluxDB instance using the official client.
type InfluxExporter struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxExporter creates an exporter for the given InfluxDB endpoint.
func NewInfluxExporter(url, token, org, bucket string) *InfluxExporter {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxExporter{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-exporter"),
	}
}

// NewInfluxExporterWithFallback tries to ping the InfluxDB instance and
// returns a NopExporter if the health check fails.
func NewInfluxExporterWithFallback(url, token, org, bucket string) ForecastExporter {
	exp := NewInfluxExporter(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := exp.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			exp.log.Errorf("influx health check error: %v", err)
		} else {
			exp.log.Errorf("influx health status: %s", health.Status)
		}
		exp.client.Close()
		return NopExporter{}
	}
	return exp
}

// ExportHourly writes each (timestamp, substation) forecast as one point.
func (e *InfluxExporter) ExportHourly(ctx context.Context, rows []aggregate.HourlyRow) error {
	for _, r := range rows {
		p := write.NewPointWithMeasurement("forecast_calls").
			AddTag("substation", r.Substation).
			AddField("calls", r.Calls).
			AddField("lat", r.Lat).
			AddField("lon", r.Lon).
			SetTime(r.Time)
		if err := e.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close shuts down the underlying client.
func (e *InfluxExporter) Close() {
	e.client.Close()
}

// NopExporter discards forecasts.
type NopExporter struct{}

func (NopExporter) ExportHourly(context.Context, []aggregate.HourlyRow) error { return nil }
