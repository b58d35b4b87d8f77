// Package archive persists resolved alerts to Postgres. It is an
// optional add-on; the demo is fully functional in memory without it.
package archive

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/msticdev/msmonitor/internal/model"
)

// PostgresArchive writes resolved alerts to the monitor_alert_archive
// table.
type PostgresArchive struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresArchive opens the connection, verifies it, and ensures the
// archive table exists.
func NewPostgresArchive(host, port, user, password, dbname string, logger *slog.Logger) (*PostgresArchive, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	a := &PostgresArchive{db: db, logger: logger.With("component", "archive")}
	if err := a.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

// Close closes the database connection.
func (a *PostgresArchive) Close() error {
	return a.db.Close()
}

func (a *PostgresArchive) ensureSchema() error {
	_, err := a.db.Exec(`
		CREATE TABLE IF NOT EXISTS monitor_alert_archive (
			alert_id    TEXT PRIMARY KEY,
			pipeline_id TEXT NOT NULL,
			severity    TEXT NOT NULL,
			message     TEXT NOT NULL,
			resolved_by TEXT NOT NULL DEFAULT '',
			resolved_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure archive schema: %w", err)
	}
	return nil
}

// RecordResolution archives one resolved alert. Conflicts on alert id
// are ignored: resolution is idempotent from the archive's view.
func (a *PostgresArchive) RecordResolution(alert *model.Alert, resolvedBy string, at time.Time) error {
	_, err := a.db.Exec(`
		INSERT INTO monitor_alert_archive (alert_id, pipeline_id, severity, message, resolved_by, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (alert_id) DO NOTHING
	`, alert.ID, alert.PipelineID, string(alert.Severity), alert.Message, resolvedBy, at)
	if err != nil {
		return fmt.Errorf("failed to archive alert %s: %w", alert.ID, err)
	}
	a.logger.Debug("Alert archived", "alert_id", alert.ID, "severity", alert.Severity)
	return nil
}

// RecentResolutions returns the most recently archived alerts.
func (a *PostgresArchive) RecentResolutions(limit int) ([]ArchivedAlert, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := a.db.Query(`
		SELECT alert_id, pipeline_id, severity, message, resolved_by, resolved_at
		FROM monitor_alert_archive
		ORDER BY resolved_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query archive: %w", err)
	}
	defer rows.Close()

	var out []ArchivedAlert
	for rows.Next() {
		var rec ArchivedAlert
		if err := rows.Scan(&rec.AlertID, &rec.PipelineID, &rec.Severity, &rec.Message, &rec.ResolvedBy, &rec.ResolvedAt); err != nil {
			return nil, fmt.Errorf("failed to scan archive row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ArchivedAlert is one archived resolution record.
type ArchivedAlert struct {
	AlertID    string    `json:"alert_id"`
	PipelineID string    `json:"pipeline_id"`
	Severity   string    `json:"severity"`
	Message    string    `json:"message"`
	ResolvedBy string    `json:"resolved_by"`
	ResolvedAt time.Time `json:"resolved_at"`
}
