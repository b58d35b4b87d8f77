// Package store holds the in-memory snapshots the HTTP API serves.
// Regeneration replaces a snapshot wholesale; a failed cycle simply never
// calls the setter, so readers always see the last good data.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/msticdev/msmonitor/internal/model"
)

// CatalogSnapshot is one generation of pipelines and their alerts.
type CatalogSnapshot struct {
	Pipelines   []model.Pipeline
	Alerts      []model.Alert
	GeneratedAt time.Time
	Version     int64
}

// PredictionSnapshot is one generation of threat predictions.
type PredictionSnapshot struct {
	Predictions []model.ThreatPrediction
	Cycle       string
	GeneratedAt time.Time
}

// MemoryStore provides thread-safe access to the current snapshots and
// the two operator mutations the dashboard supports: resolving an alert
// and restarting a pipeline.
type MemoryStore struct {
	mu          sync.RWMutex
	catalog     *CatalogSnapshot
	predictions *PredictionSnapshot
	version     int64
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// ReplaceCatalog swaps in a freshly generated catalog.
func (s *MemoryStore) ReplaceCatalog(pipelines []model.Pipeline, alerts []model.Alert, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	s.catalog = &CatalogSnapshot{
		Pipelines:   pipelines,
		Alerts:      alerts,
		GeneratedAt: at,
		Version:     s.version,
	}
}

// ReplacePredictions swaps in a freshly generated prediction set.
func (s *MemoryStore) ReplacePredictions(preds []model.ThreatPrediction, cycle string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.predictions = &PredictionSnapshot{
		Predictions: preds,
		Cycle:       cycle,
		GeneratedAt: at,
	}
}

// Catalog returns the current catalog snapshot, or an empty one before
// the first refresh completes.
func (s *MemoryStore) Catalog() *CatalogSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalog == nil {
		return &CatalogSnapshot{}
	}
	cp := &CatalogSnapshot{
		Pipelines:   make([]model.Pipeline, len(s.catalog.Pipelines)),
		Alerts:      make([]model.Alert, len(s.catalog.Alerts)),
		GeneratedAt: s.catalog.GeneratedAt,
		Version:     s.catalog.Version,
	}
	copy(cp.Pipelines, s.catalog.Pipelines)
	copy(cp.Alerts, s.catalog.Alerts)
	return cp
}

// Predictions returns the current prediction snapshot, or an empty one.
func (s *MemoryStore) Predictions() *PredictionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.predictions == nil {
		return &PredictionSnapshot{}
	}
	cp := &PredictionSnapshot{
		Predictions: make([]model.ThreatPrediction, len(s.predictions.Predictions)),
		Cycle:       s.predictions.Cycle,
		GeneratedAt: s.predictions.GeneratedAt,
	}
	copy(cp.Predictions, s.predictions.Predictions)
	return cp
}

// Ready reports whether both snapshots have been populated at least once.
func (s *MemoryStore) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog != nil && s.predictions != nil
}

// ResolveAlert marks an alert resolved in the current snapshot and
// returns the resolved alert.
func (s *MemoryStore) ResolveAlert(alertID string) (*model.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.catalog == nil {
		return nil, fmt.Errorf("no catalog loaded yet")
	}
	for i := range s.catalog.Alerts {
		if s.catalog.Alerts[i].ID == alertID {
			if s.catalog.Alerts[i].Resolved {
				return nil, fmt.Errorf("alert %s already resolved", alertID)
			}
			s.catalog.Alerts[i].Resolved = true
			resolved := s.catalog.Alerts[i]
			return &resolved, nil
		}
	}
	return nil, fmt.Errorf("alert %s not found", alertID)
}

// RestartPipeline simulates an operator restart: a warning or failed
// pipeline flips to processing in the current snapshot.
func (s *MemoryStore) RestartPipeline(pipelineID string) (*model.Pipeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.catalog == nil {
		return nil, fmt.Errorf("no catalog loaded yet")
	}
	for i := range s.catalog.Pipelines {
		p := &s.catalog.Pipelines[i]
		if p.ID != pipelineID {
			continue
		}
		if p.Status != model.StatusWarning && p.Status != model.StatusFailed {
			return nil, fmt.Errorf("pipeline %s is %s, nothing to restart", pipelineID, p.Status)
		}
		p.Status = model.StatusProcessing
		p.LastFailureReason = ""
		p.LastRunAt = time.Now().UTC()
		restarted := *p
		return &restarted, nil
	}
	return nil, fmt.Errorf("pipeline %s not found", pipelineID)
}

// TeamHealth aggregates the current catalog by owning team.
func (s *MemoryStore) TeamHealth() []model.TeamHealth {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalog == nil {
		return nil
	}

	byTeam := map[string]*model.TeamHealth{}
	var order []string
	for _, p := range s.catalog.Pipelines {
		th, ok := byTeam[p.OwnerTeam]
		if !ok {
			th = &model.TeamHealth{Team: p.OwnerTeam}
			byTeam[p.OwnerTeam] = th
			order = append(order, p.OwnerTeam)
		}
		th.PipelineCount++
		th.AvgFailurePct += p.FailureRatePct
		switch p.Status {
		case model.StatusHealthy:
			th.Healthy++
		case model.StatusWarning:
			th.Warning++
		case model.StatusFailed:
			th.Failed++
		case model.StatusProcessing:
			th.Processing++
		}
	}
	for _, a := range s.catalog.Alerts {
		if !a.Resolved {
			if th, ok := byTeam[a.PointOfContact.Team]; ok {
				th.OpenAlertCount++
			}
		}
	}

	out := make([]model.TeamHealth, 0, len(order))
	for _, team := range order {
		th := byTeam[team]
		if th.PipelineCount > 0 {
			th.AvgFailurePct /= float64(th.PipelineCount)
		}
		out = append(out, *th)
	}
	return out
}
