package predict

import (
	"fmt"

	"github.com/msticdev/msmonitor/internal/model"
)

// typeClosing is the threat-type-specific sentence appended to the
// reasoning list.
var typeClosing = map[model.ThreatType]string{
	model.ThreatDataExfiltration:    "Combined volume and off-hours pattern is consistent with staged data exfiltration.",
	model.ThreatLateralMovement:     "Broad resource access at elevated privilege suggests lateral movement across the estate.",
	model.ThreatCredentialAbuse:     "Repeated authentication failures indicate possible credential stuffing or abuse.",
	model.ThreatSuspiciousLogin:     "Sign-in distance from the usual location is outside any plausible travel window.",
	model.ThreatPrivilegeEscalation: "High privilege combined with anomalous behavior points to privilege escalation activity.",
	model.ThreatDataHoarding:        "Sustained accumulation across multiple devices matches a data hoarding pattern.",
	model.ThreatInsiderThreat:       "The aggregate deviation from baseline matches known insider threat precursors.",
	model.ThreatAnomalousAccess:     "Activity deviates from baseline without matching a specific threat pattern.",
}

// severityActions are prepended to the recommendation list.
var severityActions = map[model.Severity][]string{
	model.SeverityCritical: {
		"Initiate incident response and notify the SOC immediately",
		"Suspend active sessions pending investigation",
	},
	model.SeverityHigh: {
		"Escalate to the insider risk team within 4 hours",
		"Enable enhanced session monitoring for this account",
	},
	model.SeverityMedium: {
		"Queue for analyst review within 24 hours",
	},
	model.SeverityLow: {
		"Track in the weekly behavioral review",
	},
}

// baseActions apply to every prediction regardless of severity or type.
var baseActions = []string{
	"Review sign-in and resource access logs for the scored window",
	"Compare activity against the user's 30-day baseline",
}

// typeActions are appended per threat type.
var typeActions = map[model.ThreatType][]string{
	model.ThreatDataExfiltration: {
		"Audit outbound transfers and cloud storage sync for this account",
		"Apply DLP hold on recent large downloads",
	},
	model.ThreatLateralMovement: {
		"Map recently accessed resources against the user's role profile",
		"Check for new service principal or group membership changes",
	},
	model.ThreatCredentialAbuse: {
		"Force credential reset and revoke refresh tokens",
		"Verify MFA enrollment and recent MFA challenges",
	},
	model.ThreatSuspiciousLogin: {
		"Confirm travel with the user's manager before clearing",
		"Block the originating IP range pending verification",
	},
	model.ThreatPrivilegeEscalation: {
		"Review recent role assignments and PIM activations",
		"Diff current entitlements against the approved access package",
	},
	model.ThreatDataHoarding: {
		"Inventory local copies across the user's registered devices",
		"Confirm business justification for bulk access",
	},
	model.ThreatInsiderThreat: {
		"Open a confidential insider risk case",
		"Correlate with HR signals per policy",
	},
	model.ThreatAnomalousAccess: {
		"Annotate the anomaly for baseline tuning",
	},
}

// Reasoning renders one sentence per triggered factor, in factor order,
// followed by the threat-type closing sentence. The thresholds quoted in
// the sentences are the scoring triggers, not independent ones.
func Reasoning(baseline, current model.SecurityFeatureVector, hits []Contribution, threatType model.ThreatType) []string {
	var out []string
	for _, h := range hits {
		switch h.Factor {
		case FactorLoginFrequency:
			out = append(out, fmt.Sprintf(
				"Login frequency shifted from %.1f to %.1f per day, beyond the 50%% change threshold.",
				baseline.LoginFrequency, current.LoginFrequency))
		case FactorOffHours:
			out = append(out, fmt.Sprintf(
				"Off-hours activity rose from %.0f%% to %.0f%%, more than 20 points above baseline.",
				baseline.OffHoursActivity, current.OffHoursActivity))
		case FactorDataVolume:
			out = append(out, fmt.Sprintf(
				"Data access volume moved from %.1f GB to %.1f GB, beyond the 80%% change threshold.",
				baseline.DataAccessVolume, current.DataAccessVolume))
		case FactorGeographic:
			out = append(out, fmt.Sprintf(
				"Sign-in observed %.0f km from the usual location, past the 500 km threshold.",
				current.GeographicAnomaly))
		case FactorFailedLogins:
			out = append(out, fmt.Sprintf(
				"%.0f failed login attempts in 24 hours, above the threshold of 5.",
				current.FailedLoginAttempts))
		case FactorResourceAccess:
			out = append(out, fmt.Sprintf(
				"Unique resources accessed changed from %.0f to %.0f, beyond the 70%% change threshold.",
				baseline.UniqueResourcesAccessed, current.UniqueResourcesAccessed))
		case FactorDeviceCount:
			out = append(out, fmt.Sprintf(
				"Device count grew from %.0f to %.0f, more than two new devices.",
				baseline.DeviceCount, current.DeviceCount))
		}
	}
	if len(out) == 0 {
		out = append(out, "No single factor crossed its trigger; flagged on subtle cumulative deviation from baseline.")
	}
	out = append(out, typeClosing[threatType])
	return out
}

// RecommendedActions concatenates severity actions, base actions, and
// type-specific actions, in that fixed order.
func RecommendedActions(severity model.Severity, threatType model.ThreatType) []string {
	var out []string
	out = append(out, severityActions[severity]...)
	out = append(out, baseActions...)
	out = append(out, typeActions[threatType]...)
	return out
}
