package predict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msticdev/msmonitor/internal/model"
)

func TestReasoning_OneSentencePerHitPlusClosing(t *testing.T) {
	b := quietBaseline()
	cur := b
	cur.DataAccessVolume = 55
	cur.OffHoursActivity = 75

	_, hits := Score(b, cur)
	require.Len(t, hits, 2)

	reasoning := Reasoning(b, cur, hits, model.ThreatDataExfiltration)
	require.Len(t, reasoning, 3)
	assert.Contains(t, reasoning[0], "Off-hours activity")
	assert.Contains(t, reasoning[1], "Data access volume")
	assert.Equal(t, typeClosing[model.ThreatDataExfiltration], reasoning[2])
}

func TestReasoning_FallbackWhenNothingTriggered(t *testing.T) {
	b := quietBaseline()
	reasoning := Reasoning(b, b, nil, model.ThreatAnomalousAccess)
	require.Len(t, reasoning, 2)
	assert.Contains(t, reasoning[0], "subtle")
	assert.Equal(t, typeClosing[model.ThreatAnomalousAccess], reasoning[1])
}

func TestReasoning_StableOrder(t *testing.T) {
	b := quietBaseline()
	cur := b
	cur.LoginFrequency = 15
	cur.GeographicAnomaly = 2000
	cur.DeviceCount = 8

	_, hits := Score(b, cur)
	first := Reasoning(b, cur, hits, model.ThreatSuspiciousLogin)
	second := Reasoning(b, cur, hits, model.ThreatSuspiciousLogin)
	assert.Equal(t, first, second)

	// Factor order, not magnitude order.
	assert.Contains(t, first[0], "Login frequency")
	assert.Contains(t, first[1], "km")
	assert.Contains(t, first[2], "Device count")
}

func TestRecommendedActions_FixedConcatenationOrder(t *testing.T) {
	actions := RecommendedActions(model.SeverityCritical, model.ThreatDataExfiltration)

	var want []string
	want = append(want, severityActions[model.SeverityCritical]...)
	want = append(want, baseActions...)
	want = append(want, typeActions[model.ThreatDataExfiltration]...)
	assert.Equal(t, want, actions)
}

func TestRecommendedActions_AllEnumValuesCovered(t *testing.T) {
	severities := []model.Severity{
		model.SeverityLow, model.SeverityMedium, model.SeverityHigh, model.SeverityCritical,
	}
	types := []model.ThreatType{
		model.ThreatDataExfiltration, model.ThreatLateralMovement, model.ThreatCredentialAbuse,
		model.ThreatSuspiciousLogin, model.ThreatPrivilegeEscalation, model.ThreatDataHoarding,
		model.ThreatInsiderThreat, model.ThreatAnomalousAccess,
	}
	for _, s := range severities {
		assert.NotEmpty(t, severityActions[s], "severity %s", s)
		for _, tt := range types {
			assert.NotEmpty(t, RecommendedActions(s, tt))
		}
	}
	for _, tt := range types {
		assert.NotEmpty(t, typeActions[tt], "type %s", tt)
		assert.NotEmpty(t, typeClosing[tt], "type %s", tt)
	}
}
