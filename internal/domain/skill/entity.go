// Package skill tracks per-child writing skill progress. Each assessment
// folds its overall score into a rolling per-skill score which is then
// bucketed into a mastery level.
package skill

import (
	"time"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEVEL
// ══════════════════════════════════════════════════════════════════════════════

// Level is a mastery band derived from the rolling score.
type Level string

const (
	LevelEmerging   Level = "EMERGING"
	LevelDeveloping Level = "DEVELOPING"
	LevelProficient Level = "PROFICIENT"
	LevelAdvanced   Level = "ADVANCED"
)

// Level thresholds on the 0-4 scale. A score at a boundary belongs to the
// higher band.
const (
	developingThreshold = 1.8
	proficientThreshold = 2.8
	advancedThreshold   = 3.7
)

// LevelForScore buckets a rolling score into a mastery level.
func LevelForScore(score float64) Level {
	switch {
	case score >= advancedThreshold:
		return LevelAdvanced
	case score >= proficientThreshold:
		return LevelProficient
	case score >= developingThreshold:
		return LevelDeveloping
	default:
		return LevelEmerging
	}
}

// IsStrong reports whether the level counts as mastered for badge purposes.
func (l Level) IsStrong() bool {
	return l == LevelProficient || l == LevelAdvanced
}

// ══════════════════════════════════════════════════════════════════════════════
// SKILL PROGRESS
// ══════════════════════════════════════════════════════════════════════════════

// Smoothing weights for the rolling score. This is deliberately lossy
// exponential-style smoothing, not a moving average: the latest assessment
// dominates so recent work shows up quickly in the dashboard.
const (
	latestWeight   = 0.7
	previousWeight = 0.3
)

// Progress is one child's rolling progress on one named skill.
type Progress struct {
	ChildID shared.ChildID

	// Category groups the skill by writing type.
	Category shared.WritingType

	// Name is the skill name from the lesson→skill table.
	Name string

	// Score is the current rolling score on the 0-4 scale.
	Score float64

	// BestScore is the highest rolling score ever reached.
	BestScore float64

	// Level is the mastery band for Score.
	Level Level

	// TotalAttempts counts how many assessments have touched this skill.
	TotalAttempts int

	UpdatedAt time.Time
}

// NewProgress starts tracking a skill from its first assessment. The first
// score is taken as-is; smoothing starts on the second.
func NewProgress(childID shared.ChildID, category shared.WritingType, name string,
	firstScore float64, at time.Time) *Progress {
	score := shared.Score(firstScore).Clamp().Float()
	return &Progress{
		ChildID:       childID,
		Category:      category,
		Name:          name,
		Score:         score,
		BestScore:     score,
		Level:         LevelForScore(score),
		TotalAttempts: 1,
		UpdatedAt:     at,
	}
}

// ApplyScore folds a new overall score into the rolling score:
//
//	new = 0.7 × latest + 0.3 × previous
//
// and rebuckets the level. One attempt is counted per application.
func (p *Progress) ApplyScore(latest float64, at time.Time) {
	latest = shared.Score(latest).Clamp().Float()
	p.Score = latestWeight*latest + previousWeight*p.Score
	if p.Score > p.BestScore {
		p.BestScore = p.Score
	}
	p.Level = LevelForScore(p.Score)
	p.TotalAttempts++
	p.UpdatedAt = at
}
