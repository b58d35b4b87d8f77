package predict

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msticdev/msmonitor/internal/model"
)

// quietBaseline is a mid-range profile that triggers nothing when the
// current vector equals it.
func quietBaseline() model.SecurityFeatureVector {
	return model.SecurityFeatureVector{
		LoginFrequency:          6,
		OffHoursActivity:        20,
		DataAccessVolume:        10,
		UniqueResourcesAccessed: 20,
		GeographicAnomaly:       0,
		PrivilegeLevel:          4,
		AccountAge:              500,
		FailedLoginAttempts:     1,
		VPNUsage:                30,
		DeviceCount:             2,
	}
}

func TestScore_QuietUserScoresZero(t *testing.T) {
	b := quietBaseline()
	score, hits := Score(b, b)
	assert.Zero(t, score)
	assert.Empty(t, hits)
}

func TestScore_ExfiltrationScenario(t *testing.T) {
	// Documented end-to-end case: baseline data volume 10 -> 55 gives a
	// relative change of 4.5 (contributes the 25 cap); off-hours 20 ->
	// 75 gives a delta of 55 (contributes the 20 cap). Score is 45 and
	// the classification chain must land on critical data_exfiltration
	// despite the score being under 80.
	b := quietBaseline()
	cur := b
	cur.DataAccessVolume = 55
	cur.OffHoursActivity = 75

	score, hits := Score(b, cur)
	require.Len(t, hits, 2)
	assert.Equal(t, FactorOffHours, hits[0].Factor)
	assert.InDelta(t, 20, hits[0].Points, 1e-9)
	assert.Equal(t, FactorDataVolume, hits[1].Factor)
	assert.InDelta(t, 25, hits[1].Points, 1e-9)
	assert.InDelta(t, 45, score, 1e-9)

	threatType := ClassifyThreatType(cur, score)
	assert.Equal(t, model.ThreatDataExfiltration, threatType)
	assert.Equal(t, model.SeverityCritical, ClassifySeverity(score, threatType))
}

func TestScore_FactorTriggers(t *testing.T) {
	b := quietBaseline()

	tests := []struct {
		name     string
		mutate   func(*model.SecurityFeatureVector)
		factor   Factor
		expected float64
	}{
		{
			name:     "login frequency over 50 percent",
			mutate:   func(v *model.SecurityFeatureVector) { v.LoginFrequency = 12 }, // relChange 1.0
			factor:   FactorLoginFrequency,
			expected: 15, // min(15, 1.0*20)
		},
		{
			name:     "off hours increase over 20 points",
			mutate:   func(v *model.SecurityFeatureVector) { v.OffHoursActivity = 45 }, // delta 25
			factor:   FactorOffHours,
			expected: 20, // min(20, 25*0.8)
		},
		{
			name:     "geographic anomaly over 500km",
			mutate:   func(v *model.SecurityFeatureVector) { v.GeographicAnomaly = 600 },
			factor:   FactorGeographic,
			expected: 12, // min(15, 600/500*10)
		},
		{
			name:     "failed logins over 5",
			mutate:   func(v *model.SecurityFeatureVector) { v.FailedLoginAttempts = 6 },
			factor:   FactorFailedLogins,
			expected: 9, // min(10, 6*1.5)
		},
		{
			name:     "resource access over 70 percent",
			mutate:   func(v *model.SecurityFeatureVector) { v.UniqueResourcesAccessed = 36 }, // relChange 0.8
			factor:   FactorResourceAccess,
			expected: 8, // min(10, 0.8*10)
		},
		{
			name:     "device count beyond baseline plus two",
			mutate:   func(v *model.SecurityFeatureVector) { v.DeviceCount = 4.5 }, // +2.5
			factor:   FactorDeviceCount,
			expected: 5, // min(5, 2.5*2)
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur := b
			tt.mutate(&cur)
			score, hits := Score(b, cur)
			require.Len(t, hits, 1)
			assert.Equal(t, tt.factor, hits[0].Factor)
			assert.InDelta(t, tt.expected, hits[0].Points, 1e-9)
			assert.InDelta(t, tt.expected, score, 1e-9)
		})
	}
}

func TestScore_BelowTriggersContributeNothing(t *testing.T) {
	b := quietBaseline()
	cur := b
	cur.LoginFrequency = 8         // relChange ~0.33, under 0.5
	cur.OffHoursActivity = 38      // delta 18, under 20
	cur.DataAccessVolume = 17      // relChange 0.7, under 0.8
	cur.GeographicAnomaly = 499    // under 500
	cur.FailedLoginAttempts = 5    // not over 5
	cur.UniqueResourcesAccessed = 33 // relChange 0.65, under 0.7
	cur.DeviceCount = 4            // baseline+2, not over

	score, hits := Score(b, cur)
	assert.Zero(t, score)
	assert.Empty(t, hits)
}

func TestScore_HardCapAt100(t *testing.T) {
	b := quietBaseline()
	cur := model.SecurityFeatureVector{
		LoginFrequency:          100,
		OffHoursActivity:        100,
		DataAccessVolume:        500,
		UniqueResourcesAccessed: 500,
		GeographicAnomaly:       10000,
		PrivilegeLevel:          b.PrivilegeLevel,
		AccountAge:              b.AccountAge,
		FailedLoginAttempts:     50,
		VPNUsage:                100,
		DeviceCount:             20,
	}
	score, hits := Score(b, cur)
	assert.Equal(t, 100.0, score)
	assert.Len(t, hits, 7)
}

func TestScore_ZeroBaselineDenominatorFloored(t *testing.T) {
	// A zero baseline must not divide by zero; the denominator floors
	// at 1 so the relative change equals the absolute change.
	b := quietBaseline()
	b.DataAccessVolume = 0
	cur := b
	cur.DataAccessVolume = 0.9 // relChange 0.9 with floored denominator

	score, hits := Score(b, cur)
	require.Len(t, hits, 1)
	assert.Equal(t, FactorDataVolume, hits[0].Factor)
	assert.InDelta(t, 18, score, 1e-9) // min(25, 0.9*20)
}

func TestScore_MonotonicInDeviation(t *testing.T) {
	// For every factor, a strictly larger triggered deviation never
	// lowers the score.
	b := quietBaseline()
	for i := 0; i < 50; i++ {
		smaller := b
		larger := b
		smaller.DataAccessVolume = 20 + float64(i)
		larger.DataAccessVolume = 20 + float64(i) + 5
		smaller.GeographicAnomaly = 500 + float64(i*20)
		larger.GeographicAnomaly = 500 + float64(i*20) + 100

		sSmall, _ := Score(b, smaller)
		sLarge, _ := Score(b, larger)
		assert.GreaterOrEqual(t, sLarge, sSmall, "iteration %d", i)
	}
}

func TestScore_AlwaysInRange(t *testing.T) {
	b := quietBaseline()
	for i := 0; i < 300; i++ {
		cur := CurrentFeatures(fmt.Sprintf("fuzz-user-%d", i), "cycle-1", b)
		score, _ := Score(b, cur)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 100.0)
	}
}
