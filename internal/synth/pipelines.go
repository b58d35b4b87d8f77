// Package synth generates the synthetic pipeline catalog and its derived
// alerts. Everything here is a pure function of the source configuration
// table and the seeded hash, so a given table always expands to the same
// catalog.
package synth

import (
	"fmt"
	"strings"
	"time"

	"github.com/msticdev/msmonitor/internal/model"
	"github.com/msticdev/msmonitor/internal/seed"
)

// failureReasons is the fixed pool a failed pipeline draws its last
// failure from.
var failureReasons = []string{
	"Upstream API rate limit exceeded",
	"Authentication token expired",
	"Schema drift detected in source payload",
	"Ingestion queue backpressure timeout",
	"Partition rebalance interrupted batch commit",
	"Downstream storage throttling (429)",
	"Malformed records exceeded rejection threshold",
	"Network timeout connecting to source endpoint",
}

// GeneratePipelines expands the configuration table into the pipeline
// catalog. Iteration order is deterministic (config order, then data
// type, process, region), which is what makes the dependency rule safe:
// a pipeline may only depend on pipelines at an earlier index.
func GeneratePipelines(table *Table, now time.Time) ([]model.Pipeline, error) {
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to generate from invalid table: %w", err)
	}

	var pipelines []model.Pipeline
	for si, src := range table.Sources {
		for di, dataType := range src.DataTypes {
			for pi, process := range src.Processes {
				for ri, region := range src.Regions {
					p := buildPipeline(src, si, di, pi, ri, dataType, process, region, now)
					attachDependencies(&p, pipelines)
					pipelines = append(pipelines, p)
				}
			}
		}
	}
	return pipelines, nil
}

func buildPipeline(src SourceConfig, si, di, pi, ri int, dataType, process, region string, now time.Time) model.Pipeline {
	id := fmt.Sprintf("%s-%s-%s-%s",
		slugify(src.Name), slugify(dataType), slugify(process), slugify(region))
	name := fmt.Sprintf("%s %s %s - %s", src.Name, dataType, process, region)

	// Round-robin across eligible teams. Pure random selection clusters
	// badly at this catalog size and skews the team health views.
	team := src.Teams[(si+di+pi+ri)%len(src.Teams)]

	status := statusFor(id)
	sla := src.SLAMinutes
	if sla == 0 {
		sla = 60
	}

	p := model.Pipeline{
		ID:                 id,
		Name:               name,
		Source:             src.Name,
		Status:             status,
		OwnerTeam:          team,
		DataType:           dataType,
		Process:            process,
		Region:             region,
		DataClassification: classificationOr(src.DataClassification),
		SLARequirementMin:  sla,
		AvgProcessingMin:   seed.Range(id+"-proctime", 1, float64(sla)*1.2),
		RecordsProcessed:   seed.IntBetween(id+"-records", 50_000, 5_000_000),
		FailureRatePct:     failureRateFor(id, status),
		LastRunAt:          now.Add(-time.Duration(seed.IntBetween(id+"-lastrun", 1, 120)) * time.Minute),
	}
	if status == model.StatusFailed {
		p.LastFailureReason = seed.Pick(id+"-failreason", failureReasons)
	}
	return p
}

// statusFor maps the pipeline's status seed onto the health distribution:
// most pipelines healthy, a thin tail of warnings and failures.
func statusFor(id string) model.PipelineStatus {
	v := seed.Value(id + "-status")
	switch {
	case v < 0.68:
		return model.StatusHealthy
	case v < 0.78:
		return model.StatusProcessing
	case v < 0.90:
		return model.StatusWarning
	default:
		return model.StatusFailed
	}
}

func failureRateFor(id string, status model.PipelineStatus) float64 {
	switch status {
	case model.StatusFailed:
		return seed.Range(id+"-failrate", 8, 25)
	case model.StatusWarning:
		return seed.Range(id+"-failrate", 2, 8)
	case model.StatusProcessing:
		return seed.Range(id+"-failrate", 0, 3)
	default:
		return seed.Range(id+"-failrate", 0, 2)
	}
}

// attachDependencies wires a pipeline to earlier catalog entries only,
// so dependency chains can never dangle or cycle.
func attachDependencies(p *model.Pipeline, earlier []model.Pipeline) {
	if len(earlier) == 0 || !seed.Chance(p.ID+"-dep", 0.3) {
		return
	}
	count := seed.IntBetween(p.ID+"-dep-count", 1, 2)
	picked := make(map[string]bool, count)
	for i := 0; i < count; i++ {
		idx := seed.IntBetween(fmt.Sprintf("%s-dep-%d", p.ID, i), 0, len(earlier)-1)
		dep := earlier[idx].ID
		if !picked[dep] {
			picked[dep] = true
			p.DependsOn = append(p.DependsOn, dep)
		}
	}
}

func classificationOr(c string) string {
	if c == "" {
		return "Confidential"
	}
	return c
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	return s
}
