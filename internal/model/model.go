// Package model defines the entities shared across the monitor services:
// synthetic pipelines, derived alerts, and behavioral threat predictions.
package model

import (
	"fmt"
	"time"
)

// PipelineStatus enumerates the health states a pipeline can report.
type PipelineStatus string

const (
	StatusHealthy    PipelineStatus = "healthy"
	StatusWarning    PipelineStatus = "warning"
	StatusFailed     PipelineStatus = "failed"
	StatusProcessing PipelineStatus = "processing"
)

// Severity is shared by alerts and threat predictions.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ThreatType is one of the eight fixed classification labels.
type ThreatType string

const (
	ThreatDataExfiltration    ThreatType = "data_exfiltration"
	ThreatLateralMovement     ThreatType = "lateral_movement"
	ThreatCredentialAbuse     ThreatType = "credential_abuse"
	ThreatSuspiciousLogin     ThreatType = "suspicious_login"
	ThreatPrivilegeEscalation ThreatType = "privilege_escalation"
	ThreatDataHoarding        ThreatType = "data_hoarding"
	ThreatInsiderThreat       ThreatType = "insider_threat"
	ThreatAnomalousAccess     ThreatType = "anomalous_access"
)

// Pipeline is one synthetic ingestion pipeline in the generated catalog.
type Pipeline struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	Source             string         `json:"source"`
	Status             PipelineStatus `json:"status"`
	OwnerTeam          string         `json:"owner_team"`
	DataType           string         `json:"data_type"`
	Process            string         `json:"process"`
	Region             string         `json:"region"`
	DataClassification string         `json:"data_classification"`
	SLARequirementMin  int            `json:"sla_requirement_min"`
	AvgProcessingMin   float64        `json:"avg_processing_min"`
	RecordsProcessed   int            `json:"records_processed"`
	FailureRatePct     float64        `json:"failure_rate_pct"`
	DependsOn          []string       `json:"depends_on,omitempty"`
	LastFailureReason  string         `json:"last_failure_reason,omitempty"`
	LastRunAt          time.Time      `json:"last_run_at"`
}

// Alert is derived from a pipeline in a warning or failed state.
type Alert struct {
	ID               string    `json:"id"`
	PipelineID       string    `json:"pipeline_id"`
	PipelineName     string    `json:"pipeline_name"`
	Severity         Severity  `json:"severity"`
	Message          string    `json:"message"`
	Description      string    `json:"description"`
	Timestamp        time.Time `json:"timestamp"`
	Resolved         bool      `json:"resolved"`
	PointOfContact   Contact   `json:"point_of_contact"`
	LogReferences    []string  `json:"log_references"`
	ImpactAssessment string    `json:"impact_assessment"`
	Troubleshooting  []string  `json:"troubleshooting"`
}

// Contact identifies the escalation path for an alert.
type Contact struct {
	Team    string `json:"team"`
	Email   string `json:"email"`
	Channel string `json:"channel"`
}

// SecurityFeatureVector is the fixed set of behavioral signals for one
// simulated user. Two instances exist per user: a stable baseline and a
// current vector that re-rolls each refresh cycle.
type SecurityFeatureVector struct {
	LoginFrequency           float64 `json:"login_frequency"`            // logins/day
	OffHoursActivity         float64 `json:"off_hours_activity"`         // 0-100 %
	DataAccessVolume         float64 `json:"data_access_volume"`         // GB
	UniqueResourcesAccessed  float64 `json:"unique_resources_accessed"`  // count
	GeographicAnomaly        float64 `json:"geographic_anomaly"`         // km from usual location
	PrivilegeLevel           float64 `json:"privilege_level"`            // ordinal 1-8
	AccountAge               float64 `json:"account_age"`                // days
	FailedLoginAttempts      float64 `json:"failed_login_attempts"`      // count/24h
	VPNUsage                 float64 `json:"vpn_usage"`                  // 0-100 %
	DeviceCount              float64 `json:"device_count"`               // count
}

// ThreatPrediction is the scored output for one monitored user.
type ThreatPrediction struct {
	UserID                string                `json:"user_id"`
	UserName              string                `json:"user_name"`
	Department            string                `json:"department"`
	Role                  string                `json:"role"`
	ThreatType            ThreatType            `json:"threat_type"`
	Severity              Severity              `json:"severity"`
	Confidence            float64               `json:"confidence"`
	RiskScore             int                   `json:"risk_score"`
	Reasoning             []string              `json:"reasoning"`
	Features              SecurityFeatureVector `json:"features"`
	RecommendedActions    []string              `json:"recommended_actions"`
	InvestigationPriority int                   `json:"investigation_priority"`
	GeneratedAt           time.Time             `json:"generated_at"`
}

// Validate checks the invariants a prediction must satisfy before it is
// published to consumers.
func (p *ThreatPrediction) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("prediction missing user_id")
	}
	if p.RiskScore < 0 || p.RiskScore > 100 {
		return fmt.Errorf("risk score %d out of range [0,100]", p.RiskScore)
	}
	if p.Confidence < 0.6 || p.Confidence > 0.95 {
		return fmt.Errorf("confidence %.3f out of range [0.6,0.95]", p.Confidence)
	}
	if p.InvestigationPriority < 1 || p.InvestigationPriority > 10 {
		return fmt.Errorf("investigation priority %d out of range [1,10]", p.InvestigationPriority)
	}
	return nil
}

// TeamHealth is the per-team aggregate computed over the current catalog.
type TeamHealth struct {
	Team           string  `json:"team"`
	PipelineCount  int     `json:"pipeline_count"`
	Healthy        int     `json:"healthy"`
	Warning        int     `json:"warning"`
	Failed         int     `json:"failed"`
	Processing     int     `json:"processing"`
	AvgFailurePct  float64 `json:"avg_failure_pct"`
	OpenAlertCount int     `json:"open_alert_count"`
}
