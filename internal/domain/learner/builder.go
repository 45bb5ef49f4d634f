package learner

import (
	"fmt"
	"sort"
	"time"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE BUILDER
// Pure aggregation: history in, profile out. The only side effect anywhere
// near this code is the snapshot upsert, and that belongs to the caller.
// ══════════════════════════════════════════════════════════════════════════════

// Builder thresholds and windows.
const (
	// historyWindow caps how many completions the builder examines.
	historyWindow = 20

	// strengthFloor and maxStrengths: criteria averaging at least 3.0,
	// top three.
	strengthFloor = 3.0
	maxStrengths  = 3

	// growthCeiling and maxGrowthAreas: criteria averaging under 2.5,
	// bottom two.
	growthCeiling  = 2.5
	maxGrowthAreas = 2

	// trendWindow and trendDeadband: last three completions against the
	// previous three, differences within ±0.3 read as stable.
	trendWindow   = 3
	trendDeadband = 0.3

	// hintDeadband is the stable band for mean hints per lesson.
	hintDeadband = 0.5

	// staminaDeadband is the stable band for mean writing seconds.
	staminaDeadband = 60.0

	// Engagement buckets over the recent mean overall score.
	engagementHighFloor     = 3.0
	engagementModerateFloor = 2.0

	maxConnectionPoints = 3
)

// CompletionRecord is one finished lesson's contribution to the profile,
// most recent first in the input slice.
type CompletionRecord struct {
	OverallScore float64
	Scores       map[string]float64
	WritingType  shared.WritingType
	HintsGiven   int
	TimeSpentSec int
	WordCount    int
	CompletedAt  time.Time
}

// Builder computes learner profiles.
type Builder struct{}

// NewBuilder creates the profile builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build computes a profile from completion history, most recent first.
// An empty history still yields a valid, neutral profile.
func (b *Builder) Build(childID shared.ChildID, history []CompletionRecord, now time.Time) *Profile {
	if len(history) > historyWindow {
		history = history[:historyWindow]
	}

	averages := criterionAverages(history)
	recentMean := meanOverall(history, trendWindow)

	p := &Profile{
		ChildID:        childID,
		Strengths:      topStrengths(averages),
		GrowthAreas:    worstGrowthAreas(averages),
		Trajectory:     scoreTrend(history),
		Scaffolding:    scaffoldingTrend(history),
		Engagement:     engagementFor(recentMean, len(history)),
		WritingStamina: staminaTrend(history),
		SampleCount:    len(history),
		BuiltAt:        now,
	}
	p.ConnectionPoints = connectionPoints(p)
	return p
}

// criterionAverages folds every assessment's score map into per-criterion
// running averages.
func criterionAverages(history []CompletionRecord) []CriterionAverage {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, rec := range history {
		for name, score := range rec.Scores {
			sums[name] += score
			counts[name]++
		}
	}
	out := make([]CriterionAverage, 0, len(sums))
	for name, sum := range sums {
		out = append(out, CriterionAverage{
			Criterion: name,
			Average:   sum / float64(counts[name]),
			Samples:   counts[name],
		})
	}
	// Deterministic order before ranking: name breaks average ties.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Average != out[j].Average {
			return out[i].Average > out[j].Average
		}
		return out[i].Criterion < out[j].Criterion
	})
	return out
}

func topStrengths(averages []CriterionAverage) []CriterionAverage {
	var out []CriterionAverage
	for _, a := range averages {
		if a.Average >= strengthFloor {
			out = append(out, a)
			if len(out) == maxStrengths {
				break
			}
		}
	}
	return out
}

func worstGrowthAreas(averages []CriterionAverage) []CriterionAverage {
	var out []CriterionAverage
	for i := len(averages) - 1; i >= 0; i-- {
		if averages[i].Average < growthCeiling {
			out = append(out, averages[i])
			if len(out) == maxGrowthAreas {
				break
			}
		}
	}
	return out
}

// meanOverall averages the overall score of up to n most recent records.
func meanOverall(history []CompletionRecord, n int) float64 {
	if len(history) == 0 {
		return 0
	}
	if n > len(history) {
		n = len(history)
	}
	var sum float64
	for _, rec := range history[:n] {
		sum += rec.OverallScore
	}
	return sum / float64(n)
}

// windowMeans returns the mean of a metric over the last trendWindow
// records and the trendWindow before that. ok is false when history is
// too short for a comparison.
func windowMeans(history []CompletionRecord, metric func(CompletionRecord) float64) (recent, prior float64, ok bool) {
	if len(history) < 2*trendWindow {
		return 0, 0, false
	}
	var recentSum, priorSum float64
	for _, rec := range history[:trendWindow] {
		recentSum += metric(rec)
	}
	for _, rec := range history[trendWindow : 2*trendWindow] {
		priorSum += metric(rec)
	}
	return recentSum / trendWindow, priorSum / trendWindow, true
}

func scoreTrend(history []CompletionRecord) Trend {
	recent, prior, ok := windowMeans(history, func(r CompletionRecord) float64 { return r.OverallScore })
	if !ok {
		return TrendStable
	}
	switch {
	case recent-prior > trendDeadband:
		return TrendImproving
	case prior-recent > trendDeadband:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func scaffoldingTrend(history []CompletionRecord) ScaffoldingTrend {
	recent, prior, ok := windowMeans(history, func(r CompletionRecord) float64 { return float64(r.HintsGiven) })
	if !ok {
		return ScaffoldingStable
	}
	switch {
	case recent-prior > hintDeadband:
		return ScaffoldingIncreasing
	case prior-recent > hintDeadband:
		return ScaffoldingDecreasing
	default:
		return ScaffoldingStable
	}
}

func staminaTrend(history []CompletionRecord) Trend {
	recent, prior, ok := windowMeans(history, func(r CompletionRecord) float64 { return float64(r.TimeSpentSec) })
	if !ok {
		return TrendStable
	}
	switch {
	case recent-prior > staminaDeadband:
		return TrendImproving
	case prior-recent > staminaDeadband:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func engagementFor(recentMean float64, samples int) EngagementLevel {
	if samples == 0 {
		return EngagementModerate
	}
	switch {
	case recentMean >= engagementHighFloor:
		return EngagementHigh
	case recentMean >= engagementModerateFloor:
		return EngagementModerate
	default:
		return EngagementLow
	}
}

// connectionPoints turns the profile into at most three short, actionable
// strategies for the coach prompt.
func connectionPoints(p *Profile) []string {
	var points []string

	if len(p.Strengths) > 0 {
		points = append(points, fmt.Sprintf(
			"Praise their %s specifically; it is their strongest area.", p.Strengths[0].Criterion))
	}
	if len(p.GrowthAreas) > 0 {
		points = append(points, fmt.Sprintf(
			"Work one small %s improvement into each exercise.", p.GrowthAreas[0].Criterion))
	}
	if p.Scaffolding == ScaffoldingIncreasing {
		points = append(points, "They are leaning on hints more lately; prompt them to try before helping.")
	} else if p.Trajectory == TrendDeclining {
		points = append(points, "Scores have dipped recently; keep tasks short and celebrate effort.")
	} else if p.Trajectory == TrendImproving {
		points = append(points, "They are on an upswing; name the progress out loud.")
	}

	if len(points) > maxConnectionPoints {
		points = points[:maxConnectionPoints]
	}
	return points
}
