// Package learner builds the per-child learner profile: a pure aggregation
// over recent assessment history that yields strengths, growth areas,
// trend lines, and short coaching strategies for prompt injection.
package learner

import (
	"time"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE
// ══════════════════════════════════════════════════════════════════════════════

// Trend is a coarse direction over recent history.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// ScaffoldingTrend tracks hint usage. Direction is inverted relative to
// Trend: more hints reads as increasing support, i.e. worsening.
type ScaffoldingTrend string

const (
	ScaffoldingIncreasing ScaffoldingTrend = "increasing"
	ScaffoldingDecreasing ScaffoldingTrend = "decreasing"
	ScaffoldingStable     ScaffoldingTrend = "stable"
)

// EngagementLevel is bucketed from the recent mean overall score.
type EngagementLevel string

const (
	EngagementHigh     EngagementLevel = "high"
	EngagementModerate EngagementLevel = "moderate"
	EngagementLow      EngagementLevel = "low"
)

// CriterionAverage is one scored criterion's running average.
type CriterionAverage struct {
	Criterion string  `json:"criterion"`
	Average   float64 `json:"average"`
	Samples   int     `json:"samples"`
}

// Profile is the persisted snapshot of a child's learning picture.
type Profile struct {
	ChildID shared.ChildID

	// Strengths are the top criteria averaging 3.0 or higher, best first.
	Strengths []CriterionAverage `json:"strengths"`

	// GrowthAreas are the weakest criteria averaging under 2.5, worst first.
	GrowthAreas []CriterionAverage `json:"growth_areas"`

	// Trajectory compares the last three completions to the previous three.
	Trajectory Trend `json:"trajectory"`

	// Scaffolding tracks whether the child is leaning on hints more or less.
	Scaffolding ScaffoldingTrend `json:"scaffolding"`

	// Engagement buckets the recent mean overall score.
	Engagement EngagementLevel `json:"engagement"`

	// WritingStamina tracks time spent writing as a length proxy.
	WritingStamina Trend `json:"writing_stamina"`

	// ConnectionPoints are up to three short coaching strategies injected
	// into the coach prompt.
	ConnectionPoints []string `json:"connection_points"`

	// SampleCount is how many completions fed this snapshot.
	SampleCount int `json:"sample_count"`

	BuiltAt time.Time `json:"built_at"`
}
