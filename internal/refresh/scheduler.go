// Package refresh drives the periodic regeneration of the synthetic
// catalogs. Each cycle is pure computation; a cycle that errors or
// panics logs and leaves the previous snapshot in place.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/msticdev/msmonitor/internal/metrics"
	"github.com/msticdev/msmonitor/internal/predict"
	"github.com/msticdev/msmonitor/internal/store"
	"github.com/msticdev/msmonitor/internal/synth"
)

// Publisher is the optional event-bus sink for freshly generated alerts.
type Publisher interface {
	PublishAlertSnapshot(snapshot *store.CatalogSnapshot) error
}

// Scheduler regenerates the catalog and prediction snapshots on their
// respective intervals.
type Scheduler struct {
	loader          *synth.Loader
	generator       *predict.Generator
	store           *store.MemoryStore
	metrics         *metrics.Metrics
	publisher       Publisher
	logger          *slog.Logger
	catalogEvery    time.Duration
	predictionEvery time.Duration
	manual          chan struct{}
}

// NewScheduler wires a scheduler. publisher may be nil.
func NewScheduler(
	loader *synth.Loader,
	generator *predict.Generator,
	st *store.MemoryStore,
	m *metrics.Metrics,
	publisher Publisher,
	logger *slog.Logger,
	catalogEvery, predictionEvery time.Duration,
) *Scheduler {
	if catalogEvery <= 0 {
		catalogEvery = 30 * time.Second
	}
	if predictionEvery <= 0 {
		predictionEvery = 5 * time.Minute
	}
	return &Scheduler{
		loader:          loader,
		generator:       generator,
		store:           st,
		metrics:         m,
		publisher:       publisher,
		logger:          logger.With("component", "refresh"),
		catalogEvery:    catalogEvery,
		predictionEvery: predictionEvery,
		manual:          make(chan struct{}, 1),
	}
}

// Run blocks until ctx is canceled, regenerating on every tick, on table
// reloads, and on manual triggers. The first cycle runs immediately so
// the API has data before the first tick.
func (s *Scheduler) Run(ctx context.Context) {
	s.RefreshCatalog()
	s.RefreshPredictions()

	catalogTicker := time.NewTicker(s.catalogEvery)
	defer catalogTicker.Stop()
	predictionTicker := time.NewTicker(s.predictionEvery)
	defer predictionTicker.Stop()

	reloads := s.loader.Subscribe()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Refresh scheduler stopped")
			return
		case <-catalogTicker.C:
			s.RefreshCatalog()
		case <-predictionTicker.C:
			s.RefreshPredictions()
		case <-reloads:
			s.logger.Info("Sources table reloaded, regenerating catalog")
			s.RefreshCatalog()
		case <-s.manual:
			s.RefreshCatalog()
			s.RefreshPredictions()
		}
	}
}

// TriggerManual requests an immediate refresh of both snapshots. It is
// non-blocking; a refresh already pending absorbs the request.
func (s *Scheduler) TriggerManual() {
	select {
	case s.manual <- struct{}{}:
	default:
	}
}

// RefreshCatalog regenerates pipelines and alerts once.
func (s *Scheduler) RefreshCatalog() {
	s.runCycle("catalog", func(now time.Time) error {
		table := s.loader.Table()
		if table == nil {
			return fmt.Errorf("no sources table loaded")
		}
		pipelines, err := synth.GeneratePipelines(table, now)
		if err != nil {
			return err
		}
		alerts := synth.DeriveAlerts(table, pipelines, now)

		s.store.ReplaceCatalog(pipelines, alerts, now)
		s.metrics.ObserveCatalog(pipelines, alerts)

		if s.publisher != nil {
			if err := s.publisher.PublishAlertSnapshot(s.store.Catalog()); err != nil {
				// Publishing is best-effort; the snapshot already landed.
				s.logger.Warn("Failed to publish alert snapshot", "error", err)
			}
		}

		s.logger.Info("Catalog refreshed",
			"pipelines", len(pipelines),
			"alerts", len(alerts))
		return nil
	})
}

// RefreshPredictions regenerates the threat prediction set once.
func (s *Scheduler) RefreshPredictions() {
	s.runCycle("predictions", func(now time.Time) error {
		cycle := predict.CycleToken(now, s.predictionEvery)
		preds, err := s.generator.GenerateAll(cycle, now)
		if err != nil {
			return err
		}
		s.store.ReplacePredictions(preds, cycle, now)
		s.metrics.ObservePredictions(preds)
		s.logger.Info("Predictions refreshed", "cycle", cycle, "users", len(preds))
		return nil
	})
}

// runCycle wraps one generation cycle with timing, metrics, and panic
// containment so a bad cycle can never corrupt the serving snapshot.
func (s *Scheduler) runCycle(kind string, fn func(now time.Time) error) {
	now := time.Now().UTC()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.metrics.RefreshFailures.WithLabelValues(kind).Inc()
			s.logger.Error("Refresh cycle panicked, keeping previous snapshot",
				"kind", kind, "panic", r)
		}
	}()

	s.metrics.RefreshTotal.WithLabelValues(kind).Inc()
	if err := fn(now); err != nil {
		s.metrics.RefreshFailures.WithLabelValues(kind).Inc()
		s.logger.Error("Refresh cycle failed, keeping previous snapshot",
			"kind", kind, "error", err)
		return
	}
	s.metrics.GenerationSeconds.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	s.metrics.LastRefreshUnix.WithLabelValues(kind).Set(float64(now.Unix()))
}
