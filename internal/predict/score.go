package predict

import (
	"math"

	"github.com/msticdev/msmonitor/internal/model"
)

// Factor identifies one contributor in the anomaly model. Factors are
// evaluated and reported in this fixed order.
type Factor int

const (
	FactorLoginFrequency Factor = iota
	FactorOffHours
	FactorDataVolume
	FactorGeographic
	FactorFailedLogins
	FactorResourceAccess
	FactorDeviceCount
)

// Contribution records one triggered factor and the points it added.
type Contribution struct {
	Factor Factor
	Points float64
}

// Score computes the 0-100 anomaly score for a user. The model is a
// threshold-gated accumulator: a factor contributes only when its
// deviation clears the trigger, each factor is capped, and the total is
// hard-capped at 100. Trigger thresholds and caps are load-bearing for
// the classification boundaries downstream and must not be retuned
// casually.
func Score(baseline, current model.SecurityFeatureVector) (float64, []Contribution) {
	var total float64
	var hits []Contribution

	add := func(f Factor, points float64) {
		total += points
		hits = append(hits, Contribution{Factor: f, Points: points})
	}

	// Login frequency: relative change beyond 50%.
	if rc := relChange(baseline.LoginFrequency, current.LoginFrequency); rc > 0.5 {
		add(FactorLoginFrequency, math.Min(15, rc*20))
	}

	// Off-hours activity: absolute increase beyond 20 points.
	if delta := current.OffHoursActivity - baseline.OffHoursActivity; delta > 20 {
		add(FactorOffHours, math.Min(20, delta*0.8))
	}

	// Data access volume: relative change beyond 80%.
	if rc := relChange(baseline.DataAccessVolume, current.DataAccessVolume); rc > 0.8 {
		add(FactorDataVolume, math.Min(25, rc*20))
	}

	// Geographic anomaly: current location beyond 500 km of usual.
	if current.GeographicAnomaly > 500 {
		add(FactorGeographic, math.Min(15, current.GeographicAnomaly/500*10))
	}

	// Failed logins: more than 5 in 24h.
	if current.FailedLoginAttempts > 5 {
		add(FactorFailedLogins, math.Min(10, current.FailedLoginAttempts*1.5))
	}

	// Resource access: relative change beyond 70%.
	if rc := relChange(baseline.UniqueResourcesAccessed, current.UniqueResourcesAccessed); rc > 0.7 {
		add(FactorResourceAccess, math.Min(10, rc*10))
	}

	// Device count: more than two new devices.
	if current.DeviceCount > baseline.DeviceCount+2 {
		add(FactorDeviceCount, math.Min(5, (current.DeviceCount-baseline.DeviceCount)*2))
	}

	return math.Min(100, total), hits
}

// relChange is the absolute relative change with the denominator floored
// at 1 so a near-zero baseline cannot blow up the division.
func relChange(baseline, current float64) float64 {
	return math.Abs(current-baseline) / math.Max(baseline, 1)
}
