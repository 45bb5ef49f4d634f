package session

import "time"

// ══════════════════════════════════════════════════════════════════════════════
// PHASE STATE MACHINE
// Owns transition legality and all PhaseState mutation. The marker
// interpreter proposes; the state machine disposes.
// ══════════════════════════════════════════════════════════════════════════════

// TransitionOutcome reports what a turn did to the session.
type TransitionOutcome struct {
	// Advanced is true when the phase actually changed.
	Advanced bool

	// FromPhase and ToPhase describe the transition when Advanced is true.
	FromPhase Phase
	ToPhase   Phase

	// GateSuppressed is true when a guided transition was requested but
	// blocked by the comprehension gate.
	GateSuppressed bool

	// ComprehensionPassed is true when this turn satisfied the gate.
	ComprehensionPassed bool
}

// StateMachine applies interpreted coach output to a session. It is
// stateless; all state lives on the Session aggregate.
type StateMachine struct{}

// NewStateMachine creates the phase state machine.
func NewStateMachine() *StateMachine {
	return &StateMachine{}
}

// RecordStudentTurn updates per-phase counters for a student message.
// Every student turn in the guided phase counts as a guided attempt.
func (sm *StateMachine) RecordStudentTurn(s *Session) {
	if s.Phase == PhaseGuided {
		s.PhaseState.GuidedAttempts++
	}
}

// ApplyCoachTurn folds an interpreted coach reply into the session state.
// Rules, in order:
//
//  1. A comprehension-passed signal in the instruction phase latches
//     ComprehensionCheckPassed. It never unlatches.
//  2. Every hint marker increments HintsGiven, in any phase.
//  3. A requested transition to guided is honored only when the
//     comprehension gate has passed. Otherwise it is silently suppressed:
//     the coach keeps teaching, no error is raised.
//  4. A requested transition must be the immediate forward step from the
//     current phase. Anything else is ignored.
//  5. Advancing to assessment marks GuidedComplete and stamps
//     WritingStartedAt.
func (sm *StateMachine) ApplyCoachTurn(s *Session, markers MarkerResult, now time.Time) TransitionOutcome {
	outcome := TransitionOutcome{FromPhase: s.Phase}

	if markers.ComprehensionPassed && s.Phase == PhaseInstruction && !s.PhaseState.ComprehensionCheckPassed {
		s.PhaseState.ComprehensionCheckPassed = true
		outcome.ComprehensionPassed = true
	}

	s.PhaseState.HintsGiven += markers.HintCount

	if markers.TransitionRequest == "" {
		return outcome
	}

	target := markers.TransitionRequest
	next, ok := s.Phase.Next()
	if !ok || target != next {
		// Not a legal forward step from here. Phases never move backward
		// or skip ahead, so the request is dropped.
		return outcome
	}

	if target == PhaseGuided && !s.PhaseState.ComprehensionCheckPassed {
		outcome.GateSuppressed = true
		return outcome
	}

	sm.advance(s, target, now)
	outcome.Advanced = true
	outcome.ToPhase = target
	return outcome
}

// AdvanceToFeedback moves the session into the feedback phase after a
// successful assessment submission. Submissions are accepted from guided as
// well as assessment, so the transition may skip the assessment phase's
// marker-driven entry; the writing timestamp is backfilled in that case.
func (sm *StateMachine) AdvanceToFeedback(s *Session, now time.Time) TransitionOutcome {
	outcome := TransitionOutcome{FromPhase: s.Phase}
	if s.Phase == PhaseFeedback {
		return outcome
	}
	if s.Phase == PhaseGuided {
		sm.advance(s, PhaseAssessment, now)
	}
	if s.Phase == PhaseAssessment {
		sm.advance(s, PhaseFeedback, now)
		outcome.Advanced = true
		outcome.ToPhase = PhaseFeedback
	}
	return outcome
}

// advance performs the bookkeeping for a single forward step.
func (sm *StateMachine) advance(s *Session, to Phase, now time.Time) {
	switch to {
	case PhaseGuided:
		s.PhaseState.InstructionCompleted = true
	case PhaseAssessment:
		s.PhaseState.GuidedComplete = true
		if s.PhaseState.WritingStartedAt == nil {
			t := now
			s.PhaseState.WritingStartedAt = &t
		}
	}
	s.Phase = to
	s.UpdatedAt = now
}
