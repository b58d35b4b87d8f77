package predict

import (
	"math"

	"github.com/msticdev/msmonitor/internal/model"
)

// ClassifyThreatType evaluates the fixed decision list against the
// current feature vector and the anomaly score. First match wins; the
// list order is part of the contract.
func ClassifyThreatType(current model.SecurityFeatureVector, score float64) model.ThreatType {
	switch {
	case current.DataAccessVolume > 50 && current.OffHoursActivity > 70:
		return model.ThreatDataExfiltration
	case current.UniqueResourcesAccessed > 100 && current.PrivilegeLevel > 6:
		return model.ThreatLateralMovement
	case current.FailedLoginAttempts > 10:
		return model.ThreatCredentialAbuse
	case current.GeographicAnomaly > 1000:
		return model.ThreatSuspiciousLogin
	case current.PrivilegeLevel > 8 && score > 70:
		return model.ThreatPrivilegeEscalation
	case current.DataAccessVolume > 30 && current.DeviceCount > 5:
		return model.ThreatDataHoarding
	case score > 60:
		return model.ThreatInsiderThreat
	default:
		return model.ThreatAnomalousAccess
	}
}

// ClassifySeverity maps the score and threat type to a severity band.
// The type sets can force an escalation above the numeric band: an
// exfiltration pattern is critical even at a moderate score.
func ClassifySeverity(score float64, threatType model.ThreatType) model.Severity {
	switch {
	case score > 80 ||
		threatType == model.ThreatDataExfiltration ||
		threatType == model.ThreatPrivilegeEscalation:
		return model.SeverityCritical
	case score > 60 ||
		threatType == model.ThreatInsiderThreat ||
		threatType == model.ThreatLateralMovement ||
		threatType == model.ThreatCredentialAbuse:
		return model.SeverityHigh
	case score > 30:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

// Confidence is monotonic in the score and bounded to [0.6, 0.95].
func Confidence(score float64) float64 {
	return math.Min(0.95, 0.6+(score/100)*0.35)
}

// InvestigationPriority maps the score onto the 1-10 triage scale.
func InvestigationPriority(score float64) int {
	p := int(math.Round(score / 10))
	if p < 1 {
		p = 1
	}
	if p > 10 {
		p = 10
	}
	return p
}
