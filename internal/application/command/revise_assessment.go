package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REVISE ASSESSMENT COMMAND
// A second (or third) try at the assessed piece during the feedback phase.
// ══════════════════════════════════════════════════════════════════════════════

// ReviseAssessmentCommand carries a revised submission.
type ReviseAssessmentCommand struct {
	SessionID    string
	Text         string
	TimeSpentSec int
}

// Validate validates the command.
func (c ReviseAssessmentCommand) Validate() error {
	if !shared.SessionID(c.SessionID).IsValid() {
		return errors.New("revise_assessment: valid session_id is required")
	}
	return nil
}

// ReviseAssessmentResult is the outcome of a revision.
type ReviseAssessmentResult struct {
	SubmitAssessmentResult

	// PreviousScores are the scores of the assessment being revised, so
	// the client can show before/after.
	PreviousScores       map[string]float64
	PreviousOverallScore float64
}

// ReviseAssessmentHandler handles ReviseAssessmentCommand. It shares the
// evaluation pipeline with SubmitAssessmentHandler; only the entry rules
// differ.
type ReviseAssessmentHandler struct {
	submit *SubmitAssessmentHandler
}

// NewReviseAssessmentHandler creates a new ReviseAssessmentHandler.
func NewReviseAssessmentHandler(submit *SubmitAssessmentHandler) *ReviseAssessmentHandler {
	return &ReviseAssessmentHandler{submit: submit}
}

// Handle runs the revision flow. The revision slot is consumed before the
// coach call; a failed evaluation still spends the slot.
func (h *ReviseAssessmentHandler) Handle(ctx context.Context, cmd ReviseAssessmentCommand) (*ReviseAssessmentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	s, err := h.submit.sessionRepo.GetByID(ctx, shared.SessionID(cmd.SessionID))
	if err != nil {
		return nil, fmt.Errorf("revise_assessment: failed to get session: %w", err)
	}

	l := h.submit.catalog.Get(s.LessonID)
	if l == nil {
		return nil, shared.NewDomainError("assessment", "Revise", shared.ErrNotFound, "unknown lesson")
	}

	minWords := 0
	if l.Rubric.HasWordRange() {
		minWords = l.Rubric.MinWords
	}
	if gate := h.submit.gate.Check(cmd.Text, minWords); !gate.Valid {
		return &ReviseAssessmentResult{
			SubmitAssessmentResult: SubmitAssessmentResult{Gate: &gate},
		}, nil
	}

	previous, err := h.submit.assessmentRepo.LatestForSession(ctx, s.ID)
	if err != nil {
		return nil, fmt.Errorf("revise_assessment: no assessment to revise: %w", err)
	}

	if err := s.UseRevision(); err != nil {
		return nil, err
	}
	// The spent slot is persisted before the coach call so a failed
	// evaluation cannot hand the slot back.
	if err := h.submit.sessionRepo.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("revise_assessment: failed to save session: %w", err)
	}

	result, err := h.submit.record(ctx, s, l, cmd.Text, cmd.TimeSpentSec, previous.RevisionNumber+1)
	if err != nil {
		return nil, err
	}

	return &ReviseAssessmentResult{
		SubmitAssessmentResult: *result,
		PreviousScores:         previous.Scores,
		PreviousOverallScore:   previous.OverallScore,
	}, nil
}
