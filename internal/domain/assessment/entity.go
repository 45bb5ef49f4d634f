// Package assessment contains writing assessment records, the submission
// quality gate, and the feedback model. Assessments are immutable once
// written; a revision creates a new record rather than mutating the old one.
package assessment

import (
	"time"

	"github.com/google/uuid"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// WRITING SUBMISSION
// ══════════════════════════════════════════════════════════════════════════════

// Submission is the child's writing exactly as submitted. Persisted
// alongside its assessment in the same transaction.
type Submission struct {
	ID        string
	SessionID shared.SessionID
	ChildID   shared.ChildID
	LessonID  shared.LessonID

	Text      string
	WordCount int

	// TimeSpentSec is client-reported writing time, zero when not supplied.
	TimeSpentSec int

	// RevisionNumber is 0 for the original, 1..MaxRevisions for revisions.
	RevisionNumber int

	SubmittedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// FEEDBACK
// ══════════════════════════════════════════════════════════════════════════════

// Feedback is the child-facing narrative portion of an evaluation.
type Feedback struct {
	// Praise names something the child did well. Always present.
	Praise string `json:"praise"`

	// Improvements are 1-2 concrete next steps.
	Improvements []string `json:"improvements"`

	// Encouragement closes on a positive note.
	Encouragement string `json:"encouragement"`
}

// ══════════════════════════════════════════════════════════════════════════════
// ASSESSMENT
// ══════════════════════════════════════════════════════════════════════════════

// Assessment is one scored evaluation of one submission. Immutable.
type Assessment struct {
	ID           string
	SubmissionID string
	SessionID    shared.SessionID
	ChildID      shared.ChildID
	LessonID     shared.LessonID

	// Scores maps rubric criterion name to a 0-4 score. For general
	// (non-rubric) evaluation the keys are the general criteria the coach
	// was asked to score.
	Scores map[string]float64

	// OverallScore is the weighted overall on the 0-4 scale.
	OverallScore float64

	Feedback Feedback

	// RevisionNumber mirrors the submission's revision number.
	RevisionNumber int

	CreatedAt time.Time
}

// NewSubmission builds a submission record with a generated id.
func NewSubmission(sessionID shared.SessionID, childID shared.ChildID, lessonID shared.LessonID,
	text string, wordCount, timeSpentSec, revisionNumber int, at time.Time) *Submission {
	return &Submission{
		ID:             uuid.NewString(),
		SessionID:      sessionID,
		ChildID:        childID,
		LessonID:       lessonID,
		Text:           text,
		WordCount:      wordCount,
		TimeSpentSec:   timeSpentSec,
		RevisionNumber: revisionNumber,
		SubmittedAt:    at,
	}
}

// NewAssessment builds an assessment for a submission. Scores are clamped
// onto the 0-4 scale; the overall is recomputed nowhere, the caller owns it.
func NewAssessment(sub *Submission, scores map[string]float64, overall float64,
	feedback Feedback, at time.Time) *Assessment {
	clamped := make(map[string]float64, len(scores))
	for name, v := range scores {
		clamped[name] = shared.Score(v).Clamp().Float()
	}
	return &Assessment{
		ID:             uuid.NewString(),
		SubmissionID:   sub.ID,
		SessionID:      sub.SessionID,
		ChildID:        sub.ChildID,
		LessonID:       sub.LessonID,
		Scores:         clamped,
		OverallScore:   shared.Score(overall).Clamp().Float(),
		Feedback:       feedback,
		RevisionNumber: sub.RevisionNumber,
		CreatedAt:      at,
	}
}

// Passing reports whether this assessment meets the lesson-completion
// threshold.
func (a *Assessment) Passing() bool {
	return shared.Score(a.OverallScore).Passing()
}

// IsRevision reports whether this assessment came from a revision.
func (a *Assessment) IsRevision() bool {
	return a.RevisionNumber > 0
}
