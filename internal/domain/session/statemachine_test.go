package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

const (
	testChildID  = "11111111-2222-3333-4444-555555555555"
	testLessonID = "narrative-1"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(shared.ChildID(testChildID), shared.LessonID(testLessonID))
	require.NoError(t, err)
	return s
}

func TestNewSession_StartsInInstruction(t *testing.T) {
	s := newTestSession(t)
	assert.Equal(t, PhaseInstruction, s.Phase)
	assert.False(t, s.PhaseState.ComprehensionCheckPassed)
	assert.Empty(t, s.History)
	assert.True(t, s.ID.IsValid())
}

func TestComprehensionGate_BlocksGuidedTransition(t *testing.T) {
	s := newTestSession(t)
	sm := NewStateMachine()
	now := time.Now()

	// Transition requested before the gate passes: silently suppressed.
	out := sm.ApplyCoachTurn(s, MarkerResult{TransitionRequest: PhaseGuided}, now)
	assert.False(t, out.Advanced)
	assert.True(t, out.GateSuppressed)
	assert.Equal(t, PhaseInstruction, s.Phase)

	// Gate passes.
	out = sm.ApplyCoachTurn(s, MarkerResult{ComprehensionPassed: true}, now)
	assert.True(t, out.ComprehensionPassed)
	assert.True(t, s.PhaseState.ComprehensionCheckPassed)
	assert.Equal(t, PhaseInstruction, s.Phase)

	// Same request now succeeds.
	out = sm.ApplyCoachTurn(s, MarkerResult{TransitionRequest: PhaseGuided}, now)
	assert.True(t, out.Advanced)
	assert.Equal(t, PhaseGuided, s.Phase)
	assert.True(t, s.PhaseState.InstructionCompleted)
}

func TestComprehensionAndTransitionInSameTurn(t *testing.T) {
	s := newTestSession(t)
	sm := NewStateMachine()

	out := sm.ApplyCoachTurn(s, MarkerResult{
		ComprehensionPassed: true,
		TransitionRequest:   PhaseGuided,
	}, time.Now())

	assert.True(t, out.Advanced)
	assert.Equal(t, PhaseGuided, s.Phase)
}

func TestForwardOnly_IllegalTargetsIgnored(t *testing.T) {
	s := newTestSession(t)
	sm := NewStateMachine()
	now := time.Now()

	// assessment is not the immediate next step from instruction.
	out := sm.ApplyCoachTurn(s, MarkerResult{TransitionRequest: PhaseAssessment}, now)
	assert.False(t, out.Advanced)
	assert.Equal(t, PhaseInstruction, s.Phase)

	// Move to guided legitimately, then try to go back.
	s.PhaseState.ComprehensionCheckPassed = true
	sm.ApplyCoachTurn(s, MarkerResult{TransitionRequest: PhaseGuided}, now)
	require.Equal(t, PhaseGuided, s.Phase)

	out = sm.ApplyCoachTurn(s, MarkerResult{TransitionRequest: PhaseGuided}, now)
	assert.False(t, out.Advanced)
	assert.Equal(t, PhaseGuided, s.Phase)
}

func TestGuidedCounters(t *testing.T) {
	s := newTestSession(t)
	sm := NewStateMachine()
	now := time.Now()

	// Student turns in instruction do not count as guided attempts.
	sm.RecordStudentTurn(s)
	assert.Equal(t, 0, s.PhaseState.GuidedAttempts)

	s.PhaseState.ComprehensionCheckPassed = true
	sm.ApplyCoachTurn(s, MarkerResult{TransitionRequest: PhaseGuided}, now)

	sm.RecordStudentTurn(s)
	sm.RecordStudentTurn(s)
	assert.Equal(t, 2, s.PhaseState.GuidedAttempts)

	sm.ApplyCoachTurn(s, MarkerResult{HintCount: 1}, now)
	sm.ApplyCoachTurn(s, MarkerResult{HintCount: 2}, now)
	assert.Equal(t, 3, s.PhaseState.HintsGiven)
}

func TestAdvanceToAssessment_MarksGuidedCompleteAndTimestamps(t *testing.T) {
	s := newTestSession(t)
	sm := NewStateMachine()
	now := time.Now()

	s.PhaseState.ComprehensionCheckPassed = true
	sm.ApplyCoachTurn(s, MarkerResult{TransitionRequest: PhaseGuided}, now)

	out := sm.ApplyCoachTurn(s, MarkerResult{TransitionRequest: PhaseAssessment}, now)
	assert.True(t, out.Advanced)
	assert.Equal(t, PhaseAssessment, s.Phase)
	assert.True(t, s.PhaseState.GuidedComplete)
	require.NotNil(t, s.PhaseState.WritingStartedAt)
	assert.Equal(t, now, *s.PhaseState.WritingStartedAt)
}

func TestAdvanceToFeedback_FromGuidedBackfills(t *testing.T) {
	s := newTestSession(t)
	sm := NewStateMachine()
	now := time.Now()

	s.PhaseState.ComprehensionCheckPassed = true
	sm.ApplyCoachTurn(s, MarkerResult{TransitionRequest: PhaseGuided}, now)
	require.Equal(t, PhaseGuided, s.Phase)

	// Submission accepted from guided: the session jumps through
	// assessment into feedback and the writing timestamp is backfilled.
	out := sm.AdvanceToFeedback(s, now)
	assert.True(t, out.Advanced)
	assert.Equal(t, PhaseFeedback, s.Phase)
	assert.True(t, s.PhaseState.GuidedComplete)
	assert.NotNil(t, s.PhaseState.WritingStartedAt)
}

func TestSubmitAllowedPhases(t *testing.T) {
	s := newTestSession(t)
	assert.False(t, s.CanSubmitAssessment(), "instruction must reject submissions")

	s.Phase = PhaseGuided
	assert.True(t, s.CanSubmitAssessment(), "guided is accepted as race tolerance")

	s.Phase = PhaseAssessment
	assert.True(t, s.CanSubmitAssessment())

	s.Phase = PhaseFeedback
	assert.False(t, s.CanSubmitAssessment())
}

func TestRevisionCap(t *testing.T) {
	s := newTestSession(t)
	s.Phase = PhaseFeedback

	require.True(t, s.CanRevise())
	assert.Equal(t, 2, s.RevisionsRemaining())

	require.NoError(t, s.UseRevision())
	require.NoError(t, s.UseRevision())
	assert.Equal(t, 0, s.RevisionsRemaining())
	assert.False(t, s.CanRevise())

	err := s.UseRevision()
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrLimitReached)
}

func TestRevisionOutsideFeedbackRejected(t *testing.T) {
	s := newTestSession(t)
	s.Phase = PhaseAssessment

	err := s.UseRevision()
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}
