// Package lesson contains the lesson catalog domain model: lessons, rubrics,
// the lesson-to-skill mapping, and per-child lesson progress.
// This is the core of the business logic - no external dependencies here.
package lesson

import (
	"time"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RUBRIC
// ══════════════════════════════════════════════════════════════════════════════

// Criterion is a single named scoring dimension on the 0-4 scale.
type Criterion struct {
	// Name identifies the criterion, e.g. "organization", "word_choice".
	Name string

	// Weight is the relative weight used to compute the overall score.
	// Weights across a rubric sum to 1.0.
	Weight float64

	// Description tells the coach model what to look for.
	Description string
}

// Rubric is a named set of weighted scoring criteria for a writing type.
type Rubric struct {
	// Name identifies the rubric, e.g. "narrative-tier2".
	Name string

	// Criteria are the scoring dimensions, in display order.
	Criteria []Criterion

	// MinWords is the minimum submission length. Zero means no minimum.
	MinWords int

	// MaxWords is the suggested maximum submission length. Zero means no cap.
	MaxWords int
}

// HasWordRange reports whether the rubric constrains submission length.
func (r *Rubric) HasWordRange() bool {
	return r != nil && r.MinWords > 0
}

// CriterionNames returns the criterion names in rubric order.
func (r *Rubric) CriterionNames() []string {
	names := make([]string, len(r.Criteria))
	for i, c := range r.Criteria {
		names[i] = c.Name
	}
	return names
}

// OverallScore computes the weighted overall score from per-criterion scores.
// Criteria missing from the map contribute zero; unknown keys are ignored.
func (r *Rubric) OverallScore(scores map[string]float64) float64 {
	if len(r.Criteria) == 0 {
		return 0
	}
	var total, weightSum float64
	for _, c := range r.Criteria {
		total += scores[c.Name] * c.Weight
		weightSum += c.Weight
	}
	if weightSum == 0 {
		return 0
	}
	return total / weightSum
}

// ══════════════════════════════════════════════════════════════════════════════
// LESSON
// ══════════════════════════════════════════════════════════════════════════════

// Lesson is a catalog entry: one unit of one writing type at one tier.
type Lesson struct {
	// ID is the lesson slug, e.g. "narrative-3".
	ID shared.LessonID

	// Title is the child-facing lesson title.
	Title string

	// WritingType is the genre this lesson teaches.
	WritingType shared.WritingType

	// UnitNumber orders lessons within a writing type. Lower units are
	// foundational, higher units are advanced.
	UnitNumber int

	// Tier is the difficulty band this lesson belongs to.
	Tier shared.Tier

	// Objective is a one-line learning objective injected into coach prompts.
	Objective string

	// Rubric is the scoring rubric. Nil means general (non-rubric) evaluation.
	Rubric *Rubric
}

// HasRubric reports whether the lesson defines a scoring rubric.
func (l *Lesson) HasRubric() bool {
	return l.Rubric != nil && len(l.Rubric.Criteria) > 0
}

// SkillRef names one skill a lesson develops.
type SkillRef struct {
	// Category groups skills by writing type.
	Category shared.WritingType

	// Name is the skill name, e.g. "story structure".
	Name string
}

// ══════════════════════════════════════════════════════════════════════════════
// LESSON PROGRESS
// ══════════════════════════════════════════════════════════════════════════════

// ProgressStatus is the per-child status of a lesson.
type ProgressStatus string

const (
	// StatusPending - lesson scheduled but not yet started.
	StatusPending ProgressStatus = "pending"
	// StatusInProgress - an active session exists for this lesson.
	StatusInProgress ProgressStatus = "in_progress"
	// StatusCompleted - latest assessment met the passing threshold.
	StatusCompleted ProgressStatus = "completed"
	// StatusNeedsImprovement - assessed below the passing threshold.
	StatusNeedsImprovement ProgressStatus = "needs_improvement"
)

// IsValid checks that the status is one of the known values.
func (s ProgressStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusNeedsImprovement:
		return true
	default:
		return false
	}
}

// IsFinished reports whether the lesson has been assessed at least once.
func (s ProgressStatus) IsFinished() bool {
	return s == StatusCompleted || s == StatusNeedsImprovement
}

// StatusForScore derives the lesson status from the latest overall score.
// A lesson is completed iff the latest overall score meets the passing
// threshold; otherwise it needs improvement.
func StatusForScore(overall float64) ProgressStatus {
	if shared.Score(overall).Passing() {
		return StatusCompleted
	}
	return StatusNeedsImprovement
}

// Progress tracks one child's progress on one lesson.
type Progress struct {
	ChildID  shared.ChildID
	LessonID shared.LessonID

	// Status is the lesson outcome.
	Status ProgressStatus

	// CurrentPhase mirrors the active session's phase for reporting.
	// Owned by the session state machine, stored here for dashboards.
	CurrentPhase string

	// BestScore is the highest overall score across all attempts.
	BestScore float64

	// CompletedAt is set when the lesson first reaches completed status.
	CompletedAt *time.Time

	UpdatedAt time.Time
}

// Upgrade applies a new assessment outcome to the progress record.
// Status can only improve: a completed lesson never regresses to
// needs_improvement on a later, lower-scoring revision.
func (p *Progress) Upgrade(overall float64, at time.Time) {
	newStatus := StatusForScore(overall)
	if p.Status != StatusCompleted {
		p.Status = newStatus
	}
	if p.Status == StatusCompleted && p.CompletedAt == nil {
		t := at
		p.CompletedAt = &t
	}
	if overall > p.BestScore {
		p.BestScore = overall
	}
	p.UpdatedAt = at
}
