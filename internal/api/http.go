// Package api exposes the dashboard's HTTP surface: catalog reads,
// operator actions, predictions, team health, the mock query endpoint,
// and service health.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/msticdev/msmonitor/internal/kusto"
	"github.com/msticdev/msmonitor/internal/metrics"
	"github.com/msticdev/msmonitor/internal/model"
	"github.com/msticdev/msmonitor/internal/refresh"
	"github.com/msticdev/msmonitor/internal/store"
)

// Archiver persists alert resolutions. Nil disables archival.
type Archiver interface {
	RecordResolution(alert *model.Alert, resolvedBy string, at time.Time) error
}

// HTTPAPI wires the monitor's HTTP handlers.
type HTTPAPI struct {
	store     *store.MemoryStore
	scheduler *refresh.Scheduler
	kusto     *kusto.Client
	archive   Archiver
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewHTTPAPI creates the API. archive may be nil.
func NewHTTPAPI(
	st *store.MemoryStore,
	scheduler *refresh.Scheduler,
	kustoClient *kusto.Client,
	archive Archiver,
	m *metrics.Metrics,
	logger *slog.Logger,
) *HTTPAPI {
	return &HTTPAPI{
		store:     st,
		scheduler: scheduler,
		kusto:     kustoClient,
		archive:   archive,
		metrics:   m,
		logger:    logger.With("component", "api"),
	}
}

// Router builds the full route table with CORS applied.
func (api *HTTPAPI) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	r.HandleFunc("/pipelines", api.handlePipelines).Methods(http.MethodGet)
	r.HandleFunc("/pipelines/{id}", api.handlePipelineByID).Methods(http.MethodGet)
	r.HandleFunc("/pipelines/{id}/restart", api.handlePipelineRestart).Methods(http.MethodPost)
	r.HandleFunc("/alerts", api.handleAlerts).Methods(http.MethodGet)
	r.HandleFunc("/alerts/{id}/resolve", api.handleAlertResolve).Methods(http.MethodPost)
	r.HandleFunc("/predictions", api.handlePredictions).Methods(http.MethodGet)
	r.HandleFunc("/teams", api.handleTeams).Methods(http.MethodGet)
	r.HandleFunc("/query", api.handleQuery).Methods(http.MethodPost)
	r.HandleFunc("/refresh", api.handleRefresh).Methods(http.MethodPost)
	r.HandleFunc("/healthz", api.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", api.handleReady).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Preflight for the browser dashboard.
	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, r)
	})
}

func (api *HTTPAPI) handlePipelines(w http.ResponseWriter, r *http.Request) {
	snap := api.store.Catalog()

	source := r.URL.Query().Get("source")
	status := r.URL.Query().Get("status")
	team := r.URL.Query().Get("team")

	var pipelines []model.Pipeline
	for _, p := range snap.Pipelines {
		if source != "" && p.Source != source {
			continue
		}
		if status != "" && string(p.Status) != status {
			continue
		}
		if team != "" && p.OwnerTeam != team {
			continue
		}
		pipelines = append(pipelines, p)
	}
	pipelines = applyLimit(pipelines, r.URL.Query().Get("limit"))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pipelines":    pipelines,
		"count":        len(pipelines),
		"generated_at": snap.GeneratedAt,
		"version":      snap.Version,
	})
}

func (api *HTTPAPI) handlePipelineByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	for _, p := range api.store.Catalog().Pipelines {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeError(w, http.StatusNotFound, "pipeline not found")
}

func (api *HTTPAPI) handlePipelineRestart(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	restarted, err := api.store.RestartPipeline(id)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	api.logger.Info("Pipeline restarted", "pipeline_id", id)
	writeJSON(w, http.StatusOK, restarted)
}

func (api *HTTPAPI) handleAlerts(w http.ResponseWriter, r *http.Request) {
	snap := api.store.Catalog()

	severity := r.URL.Query().Get("severity")
	resolvedFilter := r.URL.Query().Get("resolved")

	var alerts []model.Alert
	for _, a := range snap.Alerts {
		if severity != "" && string(a.Severity) != severity {
			continue
		}
		if resolvedFilter != "" {
			want, err := strconv.ParseBool(resolvedFilter)
			if err == nil && a.Resolved != want {
				continue
			}
		}
		alerts = append(alerts, a)
	}
	alerts = applyLimit(alerts, r.URL.Query().Get("limit"))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"alerts":       alerts,
		"count":        len(alerts),
		"generated_at": snap.GeneratedAt,
	})
}

func (api *HTTPAPI) handleAlertResolve(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body struct {
		ResolvedBy string `json:"resolved_by"`
	}
	// Body is optional; an empty resolver is acceptable.
	_ = json.NewDecoder(r.Body).Decode(&body)

	resolved, err := api.store.ResolveAlert(id)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	if api.archive != nil {
		if err := api.archive.RecordResolution(resolved, body.ResolvedBy, time.Now().UTC()); err != nil {
			// Archival is best-effort; the in-memory resolution stands.
			api.logger.Warn("Failed to archive alert resolution", "alert_id", id, "error", err)
		}
	}

	api.logger.Info("Alert resolved", "alert_id", id, "resolved_by", body.ResolvedBy)
	writeJSON(w, http.StatusOK, resolved)
}

func (api *HTTPAPI) handlePredictions(w http.ResponseWriter, r *http.Request) {
	snap := api.store.Predictions()

	severity := r.URL.Query().Get("severity")
	threatType := r.URL.Query().Get("threat_type")
	minRisk := 0
	if v := r.URL.Query().Get("min_risk"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			minRisk = n
		}
	}

	var preds []model.ThreatPrediction
	for _, p := range snap.Predictions {
		if severity != "" && string(p.Severity) != severity {
			continue
		}
		if threatType != "" && string(p.ThreatType) != threatType {
			continue
		}
		if p.RiskScore < minRisk {
			continue
		}
		preds = append(preds, p)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"predictions":  preds,
		"count":        len(preds),
		"cycle":        snap.Cycle,
		"generated_at": snap.GeneratedAt,
	})
}

func (api *HTTPAPI) handleTeams(w http.ResponseWriter, r *http.Request) {
	teams := api.store.TeamHealth()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"teams": teams,
		"count": len(teams),
	})
}

func (api *HTTPAPI) handleQuery(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := api.kusto.ExecuteQuery(r.Context(), body.Query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	api.metrics.QueriesTotal.Inc()
	writeJSON(w, http.StatusOK, result)
}

func (api *HTTPAPI) handleRefresh(w http.ResponseWriter, r *http.Request) {
	api.scheduler.RefreshCatalog()
	api.scheduler.RefreshPredictions()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Refresh completed",
		"timestamp": time.Now().UTC(),
	})
}

func (api *HTTPAPI) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

func (api *HTTPAPI) handleReady(w http.ResponseWriter, r *http.Request) {
	if !api.store.Ready() {
		writeError(w, http.StatusServiceUnavailable, "snapshots not yet generated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ready"})
}

func applyLimit[T any](items []T, limitStr string) []T {
	if limitStr == "" {
		return items
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit >= len(items) {
		return items
	}
	return items[:limit]
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{"error": msg})
}
