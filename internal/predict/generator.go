package predict

import (
	"fmt"
	"math"
	"time"

	"github.com/msticdev/msmonitor/internal/model"
)

// Generator produces the full prediction set for a roster. It holds no
// state beyond the roster itself; every output is a pure function of
// (roster, cycle token).
type Generator struct {
	roster []User
}

// NewGenerator creates a generator over the given roster. A nil or empty
// roster falls back to the default one.
func NewGenerator(roster []User) *Generator {
	if len(roster) == 0 {
		roster = DefaultRoster
	}
	return &Generator{roster: roster}
}

// Predict scores a single user for the given cycle token.
func (g *Generator) Predict(u User, cycle string, now time.Time) (*model.ThreatPrediction, error) {
	baseline := BaselineFeatures(u.ID)
	current := CurrentFeatures(u.ID, cycle, baseline)

	score, hits := Score(baseline, current)
	threatType := ClassifyThreatType(current, score)
	severity := ClassifySeverity(score, threatType)

	p := &model.ThreatPrediction{
		UserID:                u.ID,
		UserName:              u.Name,
		Department:            u.Department,
		Role:                  u.Role,
		ThreatType:            threatType,
		Severity:              severity,
		Confidence:            Confidence(score),
		RiskScore:             int(math.Round(score)),
		Reasoning:             Reasoning(baseline, current, hits, threatType),
		Features:              current,
		RecommendedActions:    RecommendedActions(severity, threatType),
		InvestigationPriority: InvestigationPriority(score),
		GeneratedAt:           now,
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("generated invalid prediction for %s: %w", u.ID, err)
	}
	return p, nil
}

// GenerateAll scores the whole roster for one refresh cycle. Output
// order follows roster order so the result is deterministic per cycle.
func (g *Generator) GenerateAll(cycle string, now time.Time) ([]model.ThreatPrediction, error) {
	out := make([]model.ThreatPrediction, 0, len(g.roster))
	for _, u := range g.roster {
		p, err := g.Predict(u, cycle, now)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

// CycleToken derives the cycle token from a wall-clock instant and the
// prediction refresh interval. All vectors within one interval share a
// token, so repeated reads between refreshes are identical.
func CycleToken(now time.Time, interval time.Duration) string {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return fmt.Sprintf("cycle-%d", now.Unix()/int64(interval.Seconds()))
}
