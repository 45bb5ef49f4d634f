// Package command contains the write-side operations of the service.
package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/child"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/coach"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/learner"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/lesson"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/session"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// START SESSION COMMAND
// Opens (or resumes) a lesson session and produces the coach's opening turn.
// ══════════════════════════════════════════════════════════════════════════════

// StartSessionCommand starts a lesson attempt for a child.
type StartSessionCommand struct {
	ChildID  string
	LessonID string
}

// Validate validates the command.
func (c StartSessionCommand) Validate() error {
	if !shared.ChildID(c.ChildID).IsValid() {
		return errors.New("start_session: valid child_id is required")
	}
	if !shared.LessonID(c.LessonID).IsValid() {
		return errors.New("start_session: valid lesson_id is required")
	}
	return nil
}

// StartSessionResult is the outcome of starting a session.
type StartSessionResult struct {
	SessionID string
	Phase     string

	// CoachMessage is the coach's opening turn, display text only.
	CoachMessage string

	// Resumed is true when an active session already existed and was
	// returned instead of a new one.
	Resumed bool
}

// StartSessionHandler handles StartSessionCommand.
type StartSessionHandler struct {
	sessionRepo  session.Repository
	childRepo    child.Repository
	progressRepo lesson.ProgressRepository
	learnerRepo  learner.Repository
	catalog      *lesson.Catalog
	coach        coach.Coach
	machine      *session.StateMachine
	publisher    shared.EventPublisher
}

// NewStartSessionHandler creates a new StartSessionHandler.
func NewStartSessionHandler(
	sessionRepo session.Repository,
	childRepo child.Repository,
	progressRepo lesson.ProgressRepository,
	learnerRepo learner.Repository,
	catalog *lesson.Catalog,
	coachClient coach.Coach,
	publisher shared.EventPublisher,
) *StartSessionHandler {
	return &StartSessionHandler{
		sessionRepo:  sessionRepo,
		childRepo:    childRepo,
		progressRepo: progressRepo,
		learnerRepo:  learnerRepo,
		catalog:      catalog,
		coach:        coachClient,
		machine:      session.NewStateMachine(),
		publisher:    publisher,
	}
}

// Handle starts or resumes a session. An existing non-feedback session for
// the same child and lesson is resumed rather than replaced.
func (h *StartSessionHandler) Handle(ctx context.Context, cmd StartSessionCommand) (*StartSessionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	childID := shared.ChildID(cmd.ChildID)
	lessonID := shared.LessonID(cmd.LessonID)

	l := h.catalog.Get(lessonID)
	if l == nil {
		return nil, shared.NewDomainError("session", "Start", shared.ErrNotFound, "unknown lesson")
	}

	if existing, err := h.sessionRepo.GetActive(ctx, childID, lessonID); err == nil {
		last := lastCoachMessage(existing)
		return &StartSessionResult{
			SessionID:    existing.ID.String(),
			Phase:        existing.Phase.String(),
			CoachMessage: last,
			Resumed:      true,
		}, nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("start_session: failed to look up active session: %w", err)
	}

	ch, err := h.childRepo.GetByID(ctx, childID)
	if err != nil {
		return nil, fmt.Errorf("start_session: failed to get child: %w", err)
	}

	s, err := session.NewSession(childID, lessonID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tc := coach.TurnContext{
		ChildName:        ch.Name,
		Age:              ch.Age,
		Tier:             ch.Tier,
		Lesson:           l,
		Phase:            s.Phase.String(),
		ConnectionPoints: h.connectionPoints(ctx, childID),
	}
	reply, err := h.coach.Reply(ctx, tc)
	if err != nil {
		return nil, fmt.Errorf("start_session: coach reply failed: %w", err)
	}

	markers := session.InterpretMarkers(reply)
	h.machine.ApplyCoachTurn(s, markers, now)
	s.AppendCoach(markers.DisplayText, now)

	if err := h.sessionRepo.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("start_session: failed to create session: %w", err)
	}

	h.mirrorProgress(ctx, s, now)

	return &StartSessionResult{
		SessionID:    s.ID.String(),
		Phase:        s.Phase.String(),
		CoachMessage: markers.DisplayText,
	}, nil
}

// connectionPoints loads the learner profile strategies, best effort.
func (h *StartSessionHandler) connectionPoints(ctx context.Context, childID shared.ChildID) []string {
	if h.learnerRepo == nil {
		return nil
	}
	profile, err := h.learnerRepo.Get(ctx, childID)
	if err != nil {
		return nil
	}
	return profile.ConnectionPoints
}

// mirrorProgress marks the lesson in progress for dashboards, best effort.
func (h *StartSessionHandler) mirrorProgress(ctx context.Context, s *session.Session, now time.Time) {
	p, err := h.progressRepo.Get(ctx, s.ChildID, s.LessonID)
	if err != nil {
		p = &lesson.Progress{
			ChildID:  s.ChildID,
			LessonID: s.LessonID,
			Status:   lesson.StatusInProgress,
		}
	}
	if p.Status == lesson.StatusPending {
		p.Status = lesson.StatusInProgress
	}
	p.CurrentPhase = s.Phase.String()
	p.UpdatedAt = now
	_ = h.progressRepo.Save(ctx, p)
}

func lastCoachMessage(s *session.Session) string {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Role == session.RoleCoach {
			return s.History[i].Content
		}
	}
	return ""
}
