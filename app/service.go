// Package app wires configuration, models, cache and the HTTP surface into a
// runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mrapplexz/hack-digital-ambulance/api"
	"github.com/mrapplexz/hack-digital-ambulance/config"
	"github.com/mrapplexz/hack-digital-ambulance/core/aggregate"
	"github.com/mrapplexz/hack-digital-ambulance/core/engine"
	coremetrics "github.com/mrapplexz/hack-digital-ambulance/core/metrics"
	"github.com/mrapplexz/hack-digital-ambulance/core/model"
	"github.com/mrapplexz/hack-digital-ambulance/core/snapshot"
	"github.com/mrapplexz/hack-digital-ambulance/core/substation"
	"github.com/mrapplexz/hack-digital-ambulance/core/window"
	"github.com/mrapplexz/hack-digital-ambulance/infra/cache"
	"github.com/mrapplexz/hack-digital-ambulance/infra/logger"
	"github.com/mrapplexz/hack-digital-ambulance/infra/metrics"
)

// Service owns the loaded registry, the cache handle and the computed
// snapshot.
type Service struct {
	cfg      *config.Config
	log      logger.Logger
	registry *model.Registry
	subs     *substation.Table
	store    *cache.Store
	sink     coremetrics.Sink
	exporter metrics.ForecastExporter
	win      window.Window
}

// New loads the model registry and substation lookup and opens the cache.
// Any artifact problem is fatal here: the service never starts partially.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	win, err := cfg.Window.Window()
	if err != nil {
		return nil, err
	}

	logg.Infof("loading artifacts from %s", cfg.Models.Dir)
	registry, err := model.LoadRegistry(cfg.Models.Dir)
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}

	subs, bad, err := substation.Load(cfg.Substations.Path)
	if err != nil {
		return nil, fmt.Errorf("load substations: %w", err)
	}
	for _, b := range bad {
		logg.Warnf("dropped from map views: %v", b)
	}

	store, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			if cerr := store.Close(); cerr != nil {
				logg.Errorf("cache close: %v", cerr)
			}
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	var sink coremetrics.Sink
	switch len(sinks) {
	case 0:
		sink = coremetrics.NopSink{}
	case 1:
		sink = sinks[0]
	default:
		sink = coremetrics.NewMultiSink(sinks...)
	}

	var exporter metrics.ForecastExporter = metrics.NopExporter{}
	if cfg.Metrics.InfluxEnabled {
		exporter = metrics.NewInfluxExporterWithFallback(
			cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket)
	}

	return &Service{
		cfg:      cfg,
		log:      logg,
		registry: registry,
		subs:     subs,
		store:    store,
		sink:     sink,
		exporter: exporter,
		win:      win,
	}, nil
}

// Substations exposes the coordinate lookup.
func (s *Service) Substations() *substation.Table { return s.subs }

// Snapshot returns the cached snapshot for the configured window, computing
// and storing it on a miss. Nothing is ever stored on a failed computation.
func (s *Service) Snapshot(ctx context.Context) (*snapshot.Snapshot, error) {
	key := snapshot.Key(s.win, s.registry.Fingerprint())
	start := time.Now()

	var snap *snapshot.Snapshot
	var err error
	if s.cfg.Cache.ReuseLatest {
		snap, err = s.store.LoadLatest(ctx)
	} else {
		snap, err = s.store.Load(ctx, key)
	}
	switch {
	case err == nil:
		s.log.Infof("snapshot cache hit (key %.8s..., created %s)", snap.Key, snap.CreatedAt.Format(time.RFC3339))
		if serr := s.sink.RecordRun(coremetrics.RunEvent{
			Locations: len(snap.Predictions.Locations),
			Rows:      len(snap.Predictions.Timestamps),
			CacheHit:  true,
			Duration:  time.Since(start),
			Time:      time.Now(),
		}); serr != nil {
			s.log.Warnf("metrics sink: %v", serr)
		}
		return snap, nil
	case errors.Is(err, cache.ErrNotFound):
		s.log.Infof("snapshot cache miss, computing window %s", s.win)
	default:
		return nil, fmt.Errorf("cache load: %w", err)
	}

	eng := engine.New(s.registry, s.cfg.Engine.Workers, s.log, s.sink)
	res, err := eng.Predict(ctx, s.win)
	if err != nil {
		return nil, err
	}
	daily := aggregate.Daily(res.Predictions, s.subs)
	hourly := aggregate.Hourly(res.Predictions, s.subs)
	snap = snapshot.New(s.win, s.registry.Fingerprint(), res, daily, hourly)

	if err := s.store.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("cache store: %w", err)
	}
	s.log.Infof("snapshot stored (key %.8s...)", snap.Key)

	if err := s.exporter.ExportHourly(ctx, hourly); err != nil {
		s.log.Errorf("forecast export: %v", err)
	}
	return snap, nil
}

// Run ensures the snapshot exists, then serves the API until the context is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}

	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{Addr: s.cfg.API.Addr, Handler: api.NewHandler(snap, s.subs)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}()
	s.log.Infof("serving predictions on %s", s.cfg.API.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	return s.store.Close()
}
