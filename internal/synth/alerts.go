package synth

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/msticdev/msmonitor/internal/model"
	"github.com/msticdev/msmonitor/internal/seed"
)

// DeriveAlerts produces exactly one alert for every pipeline currently in
// a warning or failed state. Severity maps from the pipeline status:
// failed escalates to critical or high, warning stays at medium or low.
func DeriveAlerts(table *Table, pipelines []model.Pipeline, now time.Time) []model.Alert {
	var alerts []model.Alert
	for _, p := range pipelines {
		if p.Status != model.StatusWarning && p.Status != model.StatusFailed {
			continue
		}
		alerts = append(alerts, buildAlert(table, p, now))
	}
	return alerts
}

func buildAlert(table *Table, p model.Pipeline, now time.Time) model.Alert {
	var severity model.Severity
	var message string

	switch p.Status {
	case model.StatusFailed:
		if seed.Chance(p.ID+"-alert-sev", 0.5) {
			severity = model.SeverityCritical
		} else {
			severity = model.SeverityHigh
		}
		if p.LastFailureReason != "" {
			message = fmt.Sprintf("%s failed: %s", p.Name, p.LastFailureReason)
		} else {
			message = fmt.Sprintf("%s failed with %.1f%% failure rate", p.Name, p.FailureRatePct)
		}
	default:
		if seed.Chance(p.ID+"-alert-sev", 0.5) {
			severity = model.SeverityMedium
		} else {
			severity = model.SeverityLow
		}
		message = fmt.Sprintf("%s degraded: failure rate at %.1f%% over the last hour", p.Name, p.FailureRatePct)
	}

	contact := table.ContactFor(p.OwnerTeam)

	return model.Alert{
		ID:           uuid.New().String(),
		PipelineID:   p.ID,
		PipelineName: p.Name,
		Severity:     severity,
		Message:      message,
		Description:  describeImpactedRun(p),
		Timestamp:    now,
		Resolved:     false,
		PointOfContact: model.Contact{
			Team:    p.OwnerTeam,
			Email:   contact.Email,
			Channel: contact.Channel,
		},
		LogReferences:    logReferences(p),
		ImpactAssessment: impactFor(p, severity),
		Troubleshooting:  troubleshootingFor(p),
	}
}

func describeImpactedRun(p model.Pipeline) string {
	return fmt.Sprintf(
		"Pipeline %s (%s, %s) last ran at %s processing ~%d records against a %d minute SLA.",
		p.ID, p.Source, p.Region, p.LastRunAt.UTC().Format(time.RFC3339),
		p.RecordsProcessed, p.SLARequirementMin)
}

func logReferences(p model.Pipeline) []string {
	return []string{
		fmt.Sprintf("https://monitor.mstic.example.com/logs/%s/%s", slugify(p.Source), p.ID),
		fmt.Sprintf("PipelineRuns | where PipelineId == '%s' | order by Timestamp desc", p.ID),
	}
}

func impactFor(p model.Pipeline, severity model.Severity) string {
	downstream := len(p.DependsOn)
	switch severity {
	case model.SeverityCritical:
		return fmt.Sprintf("Ingestion for %s halted; ~%d records/hour at risk. %d upstream dependencies in chain.",
			p.Source, p.RecordsProcessed, downstream)
	case model.SeverityHigh:
		return fmt.Sprintf("Elevated data loss risk for %s; SLA of %d minutes likely to breach.",
			p.Source, p.SLARequirementMin)
	case model.SeverityMedium:
		return fmt.Sprintf("Partial degradation for %s; monitoring for SLA impact.", p.Source)
	default:
		return "Minor degradation, no SLA impact expected."
	}
}

func troubleshootingFor(p model.Pipeline) []string {
	steps := []string{
		fmt.Sprintf("Check recent runs: PipelineRuns | where PipelineId == '%s'", p.ID),
		"Verify upstream source availability and credentials",
	}
	if p.LastFailureReason != "" {
		steps = append(steps, fmt.Sprintf("Last recorded failure: %s", p.LastFailureReason))
	}
	if len(p.DependsOn) > 0 {
		steps = append(steps, fmt.Sprintf("Inspect upstream pipelines first: %v", p.DependsOn))
	}
	return steps
}
