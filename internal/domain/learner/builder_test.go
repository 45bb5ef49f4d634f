package learner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

const testChildID = shared.ChildID("11111111-2222-3333-4444-555555555555")

func rec(overall float64, scores map[string]float64) CompletionRecord {
	return CompletionRecord{OverallScore: overall, Scores: scores, WritingType: shared.WritingNarrative}
}

func TestBuild_EmptyHistoryNeutralProfile(t *testing.T) {
	b := NewBuilder()
	p := b.Build(testChildID, nil, time.Now())

	require.NotNil(t, p)
	assert.Empty(t, p.Strengths)
	assert.Empty(t, p.GrowthAreas)
	assert.Equal(t, TrendStable, p.Trajectory)
	assert.Equal(t, ScaffoldingStable, p.Scaffolding)
	assert.Equal(t, EngagementModerate, p.Engagement)
	assert.Equal(t, 0, p.SampleCount)
}

func TestBuild_StrengthsAndGrowthAreas(t *testing.T) {
	b := NewBuilder()
	history := []CompletionRecord{
		rec(2.5, map[string]float64{"organization": 3.5, "ideas": 3.2, "word_choice": 2.0, "conventions": 1.5}),
		rec(2.5, map[string]float64{"organization": 3.7, "ideas": 3.0, "word_choice": 2.2, "conventions": 1.9}),
	}

	p := b.Build(testChildID, history, time.Now())

	// organization (3.6) and ideas (3.1) qualify as strengths, best first.
	require.Len(t, p.Strengths, 2)
	assert.Equal(t, "organization", p.Strengths[0].Criterion)
	assert.InDelta(t, 3.6, p.Strengths[0].Average, 1e-9)
	assert.Equal(t, "ideas", p.Strengths[1].Criterion)

	// conventions (1.7) and word_choice (2.1) are growth areas, worst first.
	require.Len(t, p.GrowthAreas, 2)
	assert.Equal(t, "conventions", p.GrowthAreas[0].Criterion)
	assert.InDelta(t, 1.7, p.GrowthAreas[0].Average, 1e-9)
	assert.Equal(t, "word_choice", p.GrowthAreas[1].Criterion)
}

func TestBuild_StrengthsCappedAtThree(t *testing.T) {
	b := NewBuilder()
	history := []CompletionRecord{
		rec(3.5, map[string]float64{"a": 3.9, "b": 3.8, "c": 3.7, "d": 3.6}),
	}
	p := b.Build(testChildID, history, time.Now())
	require.Len(t, p.Strengths, 3)
	assert.Equal(t, []string{"a", "b", "c"},
		[]string{p.Strengths[0].Criterion, p.Strengths[1].Criterion, p.Strengths[2].Criterion})
}

func TestBuild_TrajectoryDeadband(t *testing.T) {
	b := NewBuilder()

	// Recent mean 3.0 vs prior mean 2.8: inside the ±0.3 band.
	stable := []CompletionRecord{
		rec(3.0, nil), rec(3.0, nil), rec(3.0, nil),
		rec(2.8, nil), rec(2.8, nil), rec(2.8, nil),
	}
	assert.Equal(t, TrendStable, b.Build(testChildID, stable, time.Now()).Trajectory)

	// Recent 3.3 vs prior 2.8: improving.
	improving := []CompletionRecord{
		rec(3.3, nil), rec(3.3, nil), rec(3.3, nil),
		rec(2.8, nil), rec(2.8, nil), rec(2.8, nil),
	}
	assert.Equal(t, TrendImproving, b.Build(testChildID, improving, time.Now()).Trajectory)

	// Recent 2.0 vs prior 2.8: declining.
	declining := []CompletionRecord{
		rec(2.0, nil), rec(2.0, nil), rec(2.0, nil),
		rec(2.8, nil), rec(2.8, nil), rec(2.8, nil),
	}
	assert.Equal(t, TrendDeclining, b.Build(testChildID, declining, time.Now()).Trajectory)
}

func TestBuild_TrajectoryNeedsSixSamples(t *testing.T) {
	b := NewBuilder()
	history := []CompletionRecord{rec(4.0, nil), rec(4.0, nil), rec(4.0, nil), rec(1.0, nil)}
	assert.Equal(t, TrendStable, b.Build(testChildID, history, time.Now()).Trajectory)
}

func TestBuild_ScaffoldingInverted(t *testing.T) {
	b := NewBuilder()

	withHints := func(hints int) CompletionRecord {
		return CompletionRecord{OverallScore: 2.5, HintsGiven: hints}
	}
	// More hints recently: increasing support, flagged as worsening.
	history := []CompletionRecord{
		withHints(3), withHints(4), withHints(3),
		withHints(1), withHints(0), withHints(1),
	}
	p := b.Build(testChildID, history, time.Now())
	assert.Equal(t, ScaffoldingIncreasing, p.Scaffolding)

	// Fewer hints recently: decreasing.
	history = []CompletionRecord{
		withHints(0), withHints(1), withHints(0),
		withHints(3), withHints(2), withHints(3),
	}
	p = b.Build(testChildID, history, time.Now())
	assert.Equal(t, ScaffoldingDecreasing, p.Scaffolding)
}

func TestBuild_EngagementBuckets(t *testing.T) {
	b := NewBuilder()

	high := []CompletionRecord{rec(3.5, nil), rec(3.2, nil), rec(3.4, nil)}
	assert.Equal(t, EngagementHigh, b.Build(testChildID, high, time.Now()).Engagement)

	moderate := []CompletionRecord{rec(2.5, nil), rec(2.2, nil), rec(2.4, nil)}
	assert.Equal(t, EngagementModerate, b.Build(testChildID, moderate, time.Now()).Engagement)

	low := []CompletionRecord{rec(1.5, nil), rec(1.2, nil), rec(1.4, nil)}
	assert.Equal(t, EngagementLow, b.Build(testChildID, low, time.Now()).Engagement)
}

func TestBuild_ConnectionPointsCapped(t *testing.T) {
	b := NewBuilder()
	history := []CompletionRecord{
		rec(2.0, map[string]float64{"organization": 3.5, "conventions": 1.5}),
		rec(2.0, map[string]float64{"organization": 3.5, "conventions": 1.5}),
		rec(2.0, map[string]float64{"organization": 3.5, "conventions": 1.5}),
		rec(3.0, map[string]float64{"organization": 3.5, "conventions": 1.5}),
		rec(3.0, map[string]float64{"organization": 3.5, "conventions": 1.5}),
		rec(3.0, map[string]float64{"organization": 3.5, "conventions": 1.5}),
	}
	p := b.Build(testChildID, history, time.Now())
	require.NotEmpty(t, p.ConnectionPoints)
	assert.LessOrEqual(t, len(p.ConnectionPoints), 3)
	assert.Contains(t, p.ConnectionPoints[0], "organization")
}

func TestBuild_WindowCappedAtTwenty(t *testing.T) {
	b := NewBuilder()
	history := make([]CompletionRecord, 30)
	for i := range history {
		history[i] = rec(2.0, nil)
	}
	p := b.Build(testChildID, history, time.Now())
	assert.Equal(t, 20, p.SampleCount)
}
