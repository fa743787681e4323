package pipeline

import (
	"sort"
	"time"

	"github.com/agrovista/fieldops/pkg/types"
)

// Forecast holds the portfolio-level aggregates computed over one snapshot
// of the opportunity set. All values are recomputed on every call; nothing
// is cached.
type Forecast struct {
	TotalPipelineValue  float64        `json:"total_pipeline_value"`
	WeightedValue       float64        `json:"weighted_value"`
	HighConfidenceCount int            `json:"high_confidence_count"`
	AverageProbability  float64        `json:"average_probability"`
	PerStage            []StageSummary `json:"per_stage"`
}

// StageSummary groups opportunity value and count by stage, in funnel order.
type StageSummary struct {
	StageID       string  `json:"stage_id"`
	Title         string  `json:"title"`
	Count         int     `json:"count"`
	TotalValue    float64 `json:"total_value"`
	WeightedValue float64 `json:"weighted_value"`
}

// Compute aggregates a (stages, opportunities) snapshot. It performs no
// mutation and no I/O; an empty portfolio yields all-zero aggregates rather
// than a division fault.
func Compute(stages []*types.Stage, opps []*types.Opportunity) Forecast {
	f := Forecast{}

	// Index into PerStage for in-place accumulation.
	idx := make(map[string]int, len(stages))
	for i, s := range stages {
		f.PerStage = append(f.PerStage, StageSummary{StageID: s.StageID, Title: s.Title})
		idx[s.StageID] = i
	}

	probabilitySum := 0
	for _, o := range opps {
		f.TotalPipelineValue += o.TotalValue
		f.WeightedValue += o.TotalValue * float64(o.ClosingProbability) / 100
		probabilitySum += o.ClosingProbability
		if o.ClosingProbability >= 80 {
			f.HighConfidenceCount++
		}
		if i, ok := idx[o.StageID]; ok {
			f.PerStage[i].Count++
			f.PerStage[i].TotalValue += o.TotalValue
			f.PerStage[i].WeightedValue += o.TotalValue * float64(o.ClosingProbability) / 100
		}
	}
	if len(opps) > 0 {
		f.AverageProbability = float64(probabilitySum) / float64(len(opps))
	}
	return f
}

// DueFollowUps returns the opportunities whose scheduled next contact is due
// on or before today, sorted ascending by next-contact date.
func DueFollowUps(opps []*types.Opportunity, today time.Time) []*types.Opportunity {
	due := []*types.Opportunity{}
	for _, o := range opps {
		if o.NextContactDue(today) {
			due = append(due, o)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].NextContactDate.Before(due[j].NextContactDate)
	})
	return due
}

// UpcomingHighConfidence returns opportunities with closing probability of
// at least 80 whose expected closing date is set and not in the past,
// sorted ascending by expected closing date.
func UpcomingHighConfidence(opps []*types.Opportunity, today time.Time) []*types.Opportunity {
	day := today.UTC().Truncate(24 * time.Hour)
	upcoming := []*types.Opportunity{}
	for _, o := range opps {
		if o.ClosingProbability < 80 || o.ExpectedClosingDate.IsZero() {
			continue
		}
		if o.ExpectedClosingDate.UTC().Truncate(24 * time.Hour).Before(day) {
			continue
		}
		upcoming = append(upcoming, o)
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].ExpectedClosingDate.Before(upcoming[j].ExpectedClosingDate)
	})
	return upcoming
}
