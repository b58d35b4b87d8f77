package predict

import (
	"math"

	"github.com/msticdev/msmonitor/internal/model"
	"github.com/msticdev/msmonitor/internal/seed"
)

// BaselineFeatures synthesizes the stable "normal" profile for a user.
// Baseline seeds carry no cycle token, so the profile never drifts
// between refreshes. Geographic anomaly baseline is always zero: the
// baseline is by definition the usual location.
func BaselineFeatures(userID string) model.SecurityFeatureVector {
	return model.SecurityFeatureVector{
		LoginFrequency:          seed.Range(userID+"-login-base", 2, 10),
		OffHoursActivity:        seed.Range(userID+"-offhours-base", 5, 25),
		DataAccessVolume:        seed.Range(userID+"-data-base", 1, 20),
		UniqueResourcesAccessed: seed.Range(userID+"-resources-base", 5, 40),
		GeographicAnomaly:       0,
		PrivilegeLevel:          float64(seed.IntBetween(userID+"-privilege", 1, 8)),
		AccountAge:              float64(seed.IntBetween(userID+"-age", 30, 2000)),
		FailedLoginAttempts:     float64(seed.IntBetween(userID+"-failed-base", 0, 2)),
		VPNUsage:                seed.Range(userID+"-vpn-base", 10, 60),
		DeviceCount:             float64(seed.IntBetween(userID+"-devices-base", 1, 3)),
	}
}

// CurrentFeatures synthesizes the possibly-anomalous vector for the
// current cycle. The cycle token folds into every seed so the vector
// re-rolls each refresh while staying deterministic within one cycle.
// Roughly a third of users draw an anomalous episode; the rest jitter
// around their baseline.
func CurrentFeatures(userID, cycle string, baseline model.SecurityFeatureVector) model.SecurityFeatureVector {
	key := userID + "-" + cycle
	anomalous := seed.Chance(key+"-episode", 0.35)

	cur := model.SecurityFeatureVector{
		LoginFrequency:          jitter(key+"-login", baseline.LoginFrequency, 0.3),
		OffHoursActivity:        jitter(key+"-offhours", baseline.OffHoursActivity, 0.3),
		DataAccessVolume:        jitter(key+"-data", baseline.DataAccessVolume, 0.4),
		UniqueResourcesAccessed: jitter(key+"-resources", baseline.UniqueResourcesAccessed, 0.3),
		GeographicAnomaly:       seed.Range(key+"-geo", 0, 50),
		PrivilegeLevel:          baseline.PrivilegeLevel,
		AccountAge:              baseline.AccountAge,
		FailedLoginAttempts:     float64(seed.IntBetween(key+"-failed", 0, 3)),
		VPNUsage:                jitter(key+"-vpn", baseline.VPNUsage, 0.3),
		DeviceCount:             baseline.DeviceCount,
	}

	if !anomalous {
		return cur
	}

	// One or more anomaly shapes layer onto the jittered vector. Each
	// shape is independently seeded so different users light up
	// different factors.
	if seed.Chance(key+"-shape-exfil", 0.35) {
		cur.DataAccessVolume = baseline.DataAccessVolume * seed.Range(key+"-exfil-mult", 3, 8)
		cur.OffHoursActivity = seed.Range(key+"-exfil-offhours", 60, 95)
	}
	if seed.Chance(key+"-shape-lateral", 0.25) {
		cur.UniqueResourcesAccessed = baseline.UniqueResourcesAccessed * seed.Range(key+"-lateral-mult", 2.5, 6)
	}
	if seed.Chance(key+"-shape-creds", 0.25) {
		cur.FailedLoginAttempts = float64(seed.IntBetween(key+"-creds-count", 6, 25))
	}
	if seed.Chance(key+"-shape-travel", 0.25) {
		cur.GeographicAnomaly = seed.Range(key+"-travel-km", 500, 9000)
	}
	if seed.Chance(key+"-shape-devices", 0.2) {
		cur.DeviceCount = baseline.DeviceCount + float64(seed.IntBetween(key+"-devices-extra", 3, 7))
	}
	if seed.Chance(key+"-shape-hours", 0.3) {
		cur.OffHoursActivity = math.Min(100, baseline.OffHoursActivity+seed.Range(key+"-hours-delta", 25, 70))
	}
	if seed.Chance(key+"-shape-logins", 0.25) {
		cur.LoginFrequency = baseline.LoginFrequency * seed.Range(key+"-logins-mult", 1.8, 4)
	}
	return cur
}

// jitter perturbs a baseline value by at most +/- spread (fractional).
func jitter(key string, base, spread float64) float64 {
	factor := 1 + seed.Range(key, -spread, spread)
	v := base * factor
	if v < 0 {
		return 0
	}
	return v
}
