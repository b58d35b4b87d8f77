// Package bus publishes refreshed alert data to NATS for downstream
// consumers (pager bridges, archival, demo subscribers). The publisher is
// optional: without a configured NATS URL the monitor runs fully
// standalone.
package bus

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/msticdev/msmonitor/internal/metrics"
	"github.com/msticdev/msmonitor/internal/store"
)

const (
	// SnapshotSubject carries the whole alert set per refresh.
	SnapshotSubject = "monitor.alerts.snapshot"
	// alertSubjectPrefix fans individual alerts out by severity, e.g.
	// monitor.alerts.critical.
	alertSubjectPrefix = "monitor.alerts."
)

// Publisher sends alert snapshots over a NATS connection.
type Publisher struct {
	conn    *nats.Conn
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewPublisher connects to NATS and returns a ready publisher.
func NewPublisher(natsURL string, m *metrics.Metrics, logger *slog.Logger) (*Publisher, error) {
	conn, err := nats.Connect(natsURL,
		nats.MaxReconnects(10),
		nats.ReconnectWait(nats.DefaultReconnectWait),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	logger.Info("NATS publisher initialized", "url", natsURL)
	return &Publisher{
		conn:    conn,
		metrics: m,
		logger:  logger.With("component", "bus"),
	}, nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

// PublishAlertSnapshot publishes the full snapshot plus one message per
// unresolved alert on its severity subject.
func (p *Publisher) PublishAlertSnapshot(snapshot *store.CatalogSnapshot) error {
	payload, err := json.Marshal(map[string]interface{}{
		"version":      snapshot.Version,
		"generated_at": snapshot.GeneratedAt,
		"alerts":       snapshot.Alerts,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal alert snapshot: %w", err)
	}
	if err := p.conn.Publish(SnapshotSubject, payload); err != nil {
		return fmt.Errorf("failed to publish alert snapshot: %w", err)
	}

	for _, alert := range snapshot.Alerts {
		if alert.Resolved {
			continue
		}
		data, err := json.Marshal(alert)
		if err != nil {
			p.logger.Warn("Failed to marshal alert", "alert_id", alert.ID, "error", err)
			continue
		}
		subject := alertSubjectPrefix + string(alert.Severity)
		if err := p.conn.Publish(subject, data); err != nil {
			p.logger.Warn("Failed to publish alert", "alert_id", alert.ID, "subject", subject, "error", err)
			continue
		}
		p.metrics.AlertsPublished.Inc()
	}

	p.logger.Debug("Published alert snapshot",
		"version", snapshot.Version,
		"alerts", len(snapshot.Alerts))
	return nil
}
