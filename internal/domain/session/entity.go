// Package session contains the lesson session aggregate: the phase state
// machine, the coach marker protocol, and the conversation history.
// A session is one attempt at one lesson by one child; a retake always
// creates a brand-new session.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PHASE
// ══════════════════════════════════════════════════════════════════════════════

// Phase is the macro-state of a lesson attempt. Phases only move forward:
// instruction → guided → assessment → feedback.
type Phase string

const (
	// PhaseInstruction - the coach teaches the concept.
	PhaseInstruction Phase = "instruction"
	// PhaseGuided - the child practices with coach support.
	PhaseGuided Phase = "guided"
	// PhaseAssessment - the child writes the assessed piece.
	PhaseAssessment Phase = "assessment"
	// PhaseFeedback - scores are in; revisions happen here. Terminal.
	PhaseFeedback Phase = "feedback"
)

// phaseOrder defines the forward-only ordering of phases.
var phaseOrder = map[Phase]int{
	PhaseInstruction: 0,
	PhaseGuided:      1,
	PhaseAssessment:  2,
	PhaseFeedback:    3,
}

// IsValid checks that the phase is one of the four known values.
func (p Phase) IsValid() bool {
	_, ok := phaseOrder[p]
	return ok
}

// String returns the string representation.
func (p Phase) String() string { return string(p) }

// Before reports whether p comes strictly before other in the phase ordering.
func (p Phase) Before(other Phase) bool {
	return phaseOrder[p] < phaseOrder[other]
}

// Next returns the immediate successor phase and true, or ("", false) when
// the phase is terminal.
func (p Phase) Next() (Phase, bool) {
	switch p {
	case PhaseInstruction:
		return PhaseGuided, true
	case PhaseGuided:
		return PhaseAssessment, true
	case PhaseAssessment:
		return PhaseFeedback, true
	default:
		return "", false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// PHASE STATE
// ══════════════════════════════════════════════════════════════════════════════

// PhaseState is the structured per-session progress record. It is owned
// exclusively by the Session aggregate and persisted as a typed column set,
// never as an ad hoc blob.
type PhaseState struct {
	// InstructionCompleted is set when the session leaves instruction.
	InstructionCompleted bool `json:"instruction_completed"`

	// ComprehensionCheckPassed gates the instruction→guided transition.
	// Once observed it never resets for this session.
	ComprehensionCheckPassed bool `json:"comprehension_check_passed"`

	// GuidedAttempts counts student turns taken during the guided phase.
	GuidedAttempts int `json:"guided_attempts"`

	// HintsGiven counts hint markers issued by the coach.
	HintsGiven int `json:"hints_given"`

	// GuidedComplete is set when the session advances to assessment.
	GuidedComplete bool `json:"guided_complete"`

	// WritingStartedAt is stamped when the assessment phase begins.
	WritingStartedAt *time.Time `json:"writing_started_at,omitempty"`

	// RevisionsUsed counts revisions consumed during the feedback phase.
	RevisionsUsed int `json:"revisions_used"`
}

// ══════════════════════════════════════════════════════════════════════════════
// MESSAGE
// ══════════════════════════════════════════════════════════════════════════════

// Role distinguishes who authored a conversation message.
type Role string

const (
	RoleCoach   Role = "coach"
	RoleStudent Role = "student"
)

// Message is one turn of the session conversation. Content is the rendered
// display text with control markers already stripped; raw marker text lives
// only in the marker interpreter's intermediate form.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION
// ══════════════════════════════════════════════════════════════════════════════

// Session is one lesson attempt. The conversation history is append-only;
// the phase only moves forward.
type Session struct {
	ID       shared.SessionID
	ChildID  shared.ChildID
	LessonID shared.LessonID

	Phase      Phase
	PhaseState PhaseState

	// History is the ordered, append-only conversation.
	History []Message

	// Version supports optimistic locking on save.
	Version int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession starts a fresh lesson attempt in the instruction phase.
func NewSession(childID shared.ChildID, lessonID shared.LessonID) (*Session, error) {
	if !childID.IsValid() {
		return nil, shared.NewDomainError("session", "NewSession", shared.ErrInvalidID, "invalid child id")
	}
	if !lessonID.IsValid() {
		return nil, shared.NewDomainError("session", "NewSession", shared.ErrInvalidID, "invalid lesson id")
	}
	now := time.Now().UTC()
	return &Session{
		ID:        shared.SessionID(uuid.NewString()),
		ChildID:   childID,
		LessonID:  lessonID,
		Phase:     PhaseInstruction,
		History:   []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AppendStudent appends a student message to the history.
func (s *Session) AppendStudent(content string, at time.Time) {
	s.History = append(s.History, Message{Role: RoleStudent, Content: content, Timestamp: at})
	s.UpdatedAt = at
}

// AppendCoach appends a coach message (display text, markers stripped).
func (s *Session) AppendCoach(content string, at time.Time) {
	s.History = append(s.History, Message{Role: RoleCoach, Content: content, Timestamp: at})
	s.UpdatedAt = at
}

// CanSubmitAssessment reports whether an assessment submission is legal in
// the current phase. Guided is deliberately accepted alongside assessment:
// the client may submit while the phase-advance reply is still in flight,
// and rejecting that race would lose the child's writing.
func (s *Session) CanSubmitAssessment() bool {
	return s.Phase == PhaseAssessment || s.Phase == PhaseGuided
}

// MaxRevisions is the number of revisions allowed after the original
// assessment, for a total of three assessments per session.
const MaxRevisions = 2

// CanRevise reports whether a revision is legal: feedback phase only, and
// under the revision cap.
func (s *Session) CanRevise() bool {
	return s.Phase == PhaseFeedback && s.PhaseState.RevisionsUsed < MaxRevisions
}

// RevisionsRemaining returns how many revisions the child has left.
func (s *Session) RevisionsRemaining() int {
	remaining := MaxRevisions - s.PhaseState.RevisionsUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// UseRevision consumes one revision slot. Returns ErrLimitReached when the
// cap is already spent or the session is not in feedback.
func (s *Session) UseRevision() error {
	if s.Phase != PhaseFeedback {
		return shared.NewDomainError("session", "UseRevision", shared.ErrInvalidState,
			"revisions are only allowed in the feedback phase")
	}
	if s.PhaseState.RevisionsUsed >= MaxRevisions {
		return shared.NewDomainError("session", "UseRevision", shared.ErrLimitReached,
			"revision limit reached")
	}
	s.PhaseState.RevisionsUsed++
	return nil
}

// TimeWriting returns how long the child has been in the writing phase,
// or zero if writing never started.
func (s *Session) TimeWriting(now time.Time) time.Duration {
	if s.PhaseState.WritingStartedAt == nil {
		return 0
	}
	return now.Sub(*s.PhaseState.WritingStartedAt)
}
