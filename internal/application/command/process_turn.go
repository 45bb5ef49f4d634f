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
// PROCESS TURN COMMAND
// One conversational exchange: student message in, coach reply out, with
// the marker protocol driving phase transitions.
// ══════════════════════════════════════════════════════════════════════════════

// ProcessTurnCommand carries one student message into a session.
type ProcessTurnCommand struct {
	SessionID string
	Message   string
}

// Validate validates the command.
func (c ProcessTurnCommand) Validate() error {
	if !shared.SessionID(c.SessionID).IsValid() {
		return errors.New("process_turn: valid session_id is required")
	}
	if c.Message == "" {
		return errors.New("process_turn: message is required")
	}
	return nil
}

// ProcessTurnResult is the outcome of one exchange.
type ProcessTurnResult struct {
	// CoachMessage is the reply display text, markers stripped.
	CoachMessage string

	Phase         string
	PhaseAdvanced bool

	// WritingPrompt is set when the coach issued the assessment prompt.
	WritingPrompt string

	// ExpectsResponse signals the client to keep the input box open.
	ExpectsResponse bool

	HintsGiven int
}

// ProcessTurnHandler handles ProcessTurnCommand.
type ProcessTurnHandler struct {
	sessionRepo  session.Repository
	childRepo    child.Repository
	progressRepo lesson.ProgressRepository
	learnerRepo  learner.Repository
	catalog      *lesson.Catalog
	coach        coach.Coach
	machine      *session.StateMachine
	publisher    shared.EventPublisher
}

// NewProcessTurnHandler creates a new ProcessTurnHandler.
func NewProcessTurnHandler(
	sessionRepo session.Repository,
	childRepo child.Repository,
	progressRepo lesson.ProgressRepository,
	learnerRepo learner.Repository,
	catalog *lesson.Catalog,
	coachClient coach.Coach,
	publisher shared.EventPublisher,
) *ProcessTurnHandler {
	return &ProcessTurnHandler{
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

// Handle runs one exchange. The student message is recorded, the coach
// reply is interpreted for markers, and any legal phase transition is
// applied before the session is saved.
func (h *ProcessTurnHandler) Handle(ctx context.Context, cmd ProcessTurnCommand) (*ProcessTurnResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	s, err := h.sessionRepo.GetByID(ctx, shared.SessionID(cmd.SessionID))
	if err != nil {
		return nil, fmt.Errorf("process_turn: failed to get session: %w", err)
	}
	if s.Phase == session.PhaseFeedback {
		return nil, shared.NewDomainError("session", "ProcessTurn", shared.ErrInvalidState,
			"the lesson conversation is over; submit a revision instead")
	}

	ch, err := h.childRepo.GetByID(ctx, s.ChildID)
	if err != nil {
		return nil, fmt.Errorf("process_turn: failed to get child: %w", err)
	}
	l := h.catalog.Get(s.LessonID)
	if l == nil {
		return nil, shared.NewDomainError("session", "ProcessTurn", shared.ErrNotFound, "unknown lesson")
	}

	now := time.Now().UTC()
	s.AppendStudent(cmd.Message, now)
	h.machine.RecordStudentTurn(s)

	tc := coach.TurnContext{
		ChildName:        ch.Name,
		Age:              ch.Age,
		Tier:             ch.Tier,
		Lesson:           l,
		Phase:            s.Phase.String(),
		History:          historyTurns(s),
		ConnectionPoints: h.connectionPoints(ctx, s.ChildID),
		StudentMessage:   cmd.Message,
	}
	reply, err := h.coach.Reply(ctx, tc)
	if err != nil {
		return nil, fmt.Errorf("process_turn: coach reply failed: %w", err)
	}

	markers := session.InterpretMarkers(reply)
	outcome := h.machine.ApplyCoachTurn(s, markers, now)
	s.AppendCoach(markers.DisplayText, now)

	if err := h.sessionRepo.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("process_turn: failed to save session: %w", err)
	}

	h.mirrorProgress(ctx, s, now)

	if outcome.Advanced && h.publisher != nil {
		event := shared.NewPhaseAdvancedEvent(
			s.ID.String(), s.ChildID.String(), s.LessonID.String(),
			outcome.FromPhase.String(), outcome.ToPhase.String())
		_ = h.publisher.Publish(event)
	}

	return &ProcessTurnResult{
		CoachMessage:    markers.DisplayText,
		Phase:           s.Phase.String(),
		PhaseAdvanced:   outcome.Advanced,
		WritingPrompt:   markers.WritingPrompt,
		ExpectsResponse: markers.ExpectsResponse,
		HintsGiven:      s.PhaseState.HintsGiven,
	}, nil
}

func (h *ProcessTurnHandler) connectionPoints(ctx context.Context, childID shared.ChildID) []string {
	if h.learnerRepo == nil {
		return nil
	}
	profile, err := h.learnerRepo.Get(ctx, childID)
	if err != nil {
		return nil
	}
	return profile.ConnectionPoints
}

func (h *ProcessTurnHandler) mirrorProgress(ctx context.Context, s *session.Session, now time.Time) {
	p, err := h.progressRepo.Get(ctx, s.ChildID, s.LessonID)
	if err != nil {
		p = &lesson.Progress{
			ChildID:  s.ChildID,
			LessonID: s.LessonID,
			Status:   lesson.StatusInProgress,
		}
	}
	p.CurrentPhase = s.Phase.String()
	p.UpdatedAt = now
	_ = h.progressRepo.Save(ctx, p)
}

// historyTurns converts the stored conversation into coach prompt turns,
// excluding the message just appended.
func historyTurns(s *session.Session) []coach.Turn {
	if len(s.History) == 0 {
		return nil
	}
	turns := make([]coach.Turn, 0, len(s.History)-1)
	for _, m := range s.History[:len(s.History)-1] {
		turns = append(turns, coach.Turn{Role: string(m.Role), Content: m.Content})
	}
	return turns
}
