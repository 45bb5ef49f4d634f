package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/assessment"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/badge"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/coach"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/lesson"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/session"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT ASSESSMENT COMMAND
// The child's assessed writing comes in, passes the quality gate, gets
// scored by the coach, and moves the session into feedback.
// ══════════════════════════════════════════════════════════════════════════════

// SubmitAssessmentCommand carries the child's assessed writing.
type SubmitAssessmentCommand struct {
	SessionID string
	Text      string

	// TimeSpentSec is client-reported writing time. Zero falls back to the
	// session's writing clock.
	TimeSpentSec int
}

// Validate validates the command.
func (c SubmitAssessmentCommand) Validate() error {
	if !shared.SessionID(c.SessionID).IsValid() {
		return errors.New("submit_assessment: valid session_id is required")
	}
	return nil
}

// SubmitAssessmentResult is the outcome of a submission.
type SubmitAssessmentResult struct {
	// Gate is populated when the quality gate rejected the text; nothing
	// else in the result is meaningful in that case.
	Gate *assessment.GateResult

	AssessmentID string
	SubmissionID string
	Scores       map[string]float64
	OverallScore float64
	Feedback     assessment.Feedback
	WordCount    int

	Passing            bool
	Phase              string
	RevisionsRemaining int

	// LessonStatus is the lesson progress status after this assessment:
	// completed or needs_improvement.
	LessonStatus string

	// NewBadges lists badges earned by this submission, evaluated
	// synchronously so the celebration can ride the response.
	NewBadges []string
}

// SubmitAssessmentHandler handles SubmitAssessmentCommand.
type SubmitAssessmentHandler struct {
	sessionRepo    session.Repository
	assessmentRepo assessment.Repository
	progressRepo   lesson.ProgressRepository
	badgeRepo      badge.Repository
	factsLoader    badge.FactsLoader
	catalog        *lesson.Catalog
	coach          coach.Coach
	gate           *assessment.QualityGate
	machine        *session.StateMachine
	publisher      shared.EventPublisher
}

// NewSubmitAssessmentHandler creates a new SubmitAssessmentHandler.
func NewSubmitAssessmentHandler(
	sessionRepo session.Repository,
	assessmentRepo assessment.Repository,
	progressRepo lesson.ProgressRepository,
	badgeRepo badge.Repository,
	factsLoader badge.FactsLoader,
	catalog *lesson.Catalog,
	coachClient coach.Coach,
	publisher shared.EventPublisher,
) *SubmitAssessmentHandler {
	return &SubmitAssessmentHandler{
		sessionRepo:    sessionRepo,
		assessmentRepo: assessmentRepo,
		progressRepo:   progressRepo,
		badgeRepo:      badgeRepo,
		factsLoader:    factsLoader,
		catalog:        catalog,
		coach:          coachClient,
		gate:           assessment.NewQualityGate(),
		machine:        session.NewStateMachine(),
		publisher:      publisher,
	}
}

// Handle runs the full submission flow.
func (h *SubmitAssessmentHandler) Handle(ctx context.Context, cmd SubmitAssessmentCommand) (*SubmitAssessmentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	s, err := h.sessionRepo.GetByID(ctx, shared.SessionID(cmd.SessionID))
	if err != nil {
		return nil, fmt.Errorf("submit_assessment: failed to get session: %w", err)
	}
	if !s.CanSubmitAssessment() {
		return nil, shared.NewDomainError("assessment", "Submit", shared.ErrInvalidState,
			"submissions are only accepted during the writing phase")
	}

	l := h.catalog.Get(s.LessonID)
	if l == nil {
		return nil, shared.NewDomainError("assessment", "Submit", shared.ErrNotFound, "unknown lesson")
	}

	minWords := 0
	if l.Rubric.HasWordRange() {
		minWords = l.Rubric.MinWords
	}
	if gate := h.gate.Check(cmd.Text, minWords); !gate.Valid {
		return &SubmitAssessmentResult{Gate: &gate}, nil
	}

	return h.record(ctx, s, l, cmd.Text, cmd.TimeSpentSec, 0)
}

// record evaluates and persists a submission at the given revision number,
// shared by the original-submission and revision flows.
func (h *SubmitAssessmentHandler) record(ctx context.Context, s *session.Session, l *lesson.Lesson,
	text string, timeSpentSec, revisionNumber int) (*SubmitAssessmentResult, error) {
	now := time.Now().UTC()

	var eval *coach.Evaluation
	var err error
	if l.HasRubric() {
		eval, err = h.coach.EvaluateRubric(ctx, l, text)
	} else {
		eval, err = h.coach.EvaluateGeneral(ctx, l, text)
	}
	if err != nil {
		return nil, fmt.Errorf("submit_assessment: evaluation failed: %w", err)
	}

	if timeSpentSec == 0 {
		timeSpentSec = int(s.TimeWriting(now).Seconds())
	}

	sub := assessment.NewSubmission(s.ID, s.ChildID, s.LessonID, text,
		assessment.CountWords(text), timeSpentSec, revisionNumber, now)
	a := assessment.NewAssessment(sub, eval.Scores, eval.OverallScore, eval.Feedback, now)

	if err := h.assessmentRepo.SavePair(ctx, a, sub); err != nil {
		return nil, fmt.Errorf("submit_assessment: failed to save assessment: %w", err)
	}

	h.upgradeProgress(ctx, s, a, now)

	h.machine.AdvanceToFeedback(s, now)
	if err := h.sessionRepo.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("submit_assessment: failed to save session: %w", err)
	}

	newBadges := h.evaluateBadges(ctx, s.ChildID, now)

	if h.publisher != nil {
		event := shared.AssessmentRecordedEvent{
			BaseEvent:      shared.NewBaseEvent(shared.EventAssessmentRecorded, a.ID),
			AssessmentID:   a.ID,
			SessionID:      s.ID.String(),
			ChildID:        s.ChildID.String(),
			LessonID:       s.LessonID.String(),
			WritingType:    l.WritingType.String(),
			UnitNumber:     l.UnitNumber,
			Scores:         a.Scores,
			OverallScore:   a.OverallScore,
			WordCount:      sub.WordCount,
			HintsGiven:     s.PhaseState.HintsGiven,
			RevisionNumber: revisionNumber,
			TimeSpentSec:   timeSpentSec,
			LessonComplete: a.Passing(),
		}
		_ = h.publisher.Publish(event)
	}

	return &SubmitAssessmentResult{
		AssessmentID:       a.ID,
		SubmissionID:       sub.ID,
		Scores:             a.Scores,
		OverallScore:       a.OverallScore,
		Feedback:           a.Feedback,
		WordCount:          sub.WordCount,
		Passing:            a.Passing(),
		Phase:              s.Phase.String(),
		RevisionsRemaining: s.RevisionsRemaining(),
		LessonStatus:       string(lesson.StatusForScore(a.OverallScore)),
		NewBadges:          newBadges,
	}, nil
}

// upgradeProgress applies the assessment outcome to the lesson progress
// record, best effort.
func (h *SubmitAssessmentHandler) upgradeProgress(ctx context.Context, s *session.Session,
	a *assessment.Assessment, now time.Time) {
	p, err := h.progressRepo.Get(ctx, s.ChildID, s.LessonID)
	if err != nil {
		p = &lesson.Progress{
			ChildID:  s.ChildID,
			LessonID: s.LessonID,
			Status:   lesson.StatusInProgress,
		}
	}
	p.Upgrade(a.OverallScore, now)
	p.CurrentPhase = session.PhaseFeedback.String()
	_ = h.progressRepo.Save(ctx, p)
}

// evaluateBadges runs the badge engine synchronously so newly earned
// badges appear in the submission response. Failures only cost the
// celebration; the async pipeline re-evaluates on the recorded event.
func (h *SubmitAssessmentHandler) evaluateBadges(ctx context.Context, childID shared.ChildID, now time.Time) []string {
	if h.factsLoader == nil || h.badgeRepo == nil {
		return nil
	}
	facts, err := h.factsLoader.Load(ctx, childID)
	if err != nil {
		return nil
	}
	earned, err := h.badgeRepo.EarnedIDs(ctx, childID)
	if err != nil {
		return nil
	}
	newIDs := badge.Evaluate(facts, earned, nil)
	for _, id := range newIDs {
		_ = h.badgeRepo.Award(ctx, &badge.Achievement{ChildID: childID, BadgeID: id, EarnedAt: now})
		if h.publisher != nil {
			_ = h.publisher.Publish(shared.NewBadgeUnlockedEvent(childID.String(), id))
		}
	}
	return newIDs
}
