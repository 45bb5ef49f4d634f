package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/session"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// newReviseFixture builds a session that already has one assessed
// submission and sits in the feedback phase.
func newReviseFixture(t *testing.T) (*ReviseAssessmentHandler, *submitFixture) {
	t.Helper()
	f := newSubmitFixture(t, goodEvaluation(), nil)

	_, err := f.handler.Handle(context.Background(), SubmitAssessmentCommand{
		SessionID: f.session.ID.String(),
		Text:      passingText,
	})
	require.NoError(t, err)

	return NewReviseAssessmentHandler(f.handler), f
}

func TestReviseAssessment_RecordsNextRevision(t *testing.T) {
	h, f := newReviseFixture(t)

	result, err := h.Handle(context.Background(), ReviseAssessmentCommand{
		SessionID: f.session.ID.String(),
		Text:      passingText + " He thanked every fish twice.",
	})
	require.NoError(t, err)
	require.Nil(t, result.Gate)

	assert.InDelta(t, 3.1, result.PreviousOverallScore, 0.001)
	assert.Equal(t, session.MaxRevisions-1, result.RevisionsRemaining)

	require.Len(t, f.assessments.pairs, 2)
	assert.Equal(t, 1, f.assessments.pairs[1].RevisionNumber)

	saved, err := f.sessions.GetByID(context.Background(), f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, saved.PhaseState.RevisionsUsed)
}

func TestReviseAssessment_EnforcesRevisionCap(t *testing.T) {
	h, f := newReviseFixture(t)

	for i := 0; i < session.MaxRevisions; i++ {
		_, err := h.Handle(context.Background(), ReviseAssessmentCommand{
			SessionID: f.session.ID.String(),
			Text:      passingText,
		})
		require.NoError(t, err)
	}

	_, err := h.Handle(context.Background(), ReviseAssessmentCommand{
		SessionID: f.session.ID.String(),
		Text:      passingText,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrLimitReached))
}

func TestReviseAssessment_RejectsBeforeFeedback(t *testing.T) {
	f := newSubmitFixture(t, goodEvaluation(), nil)
	h := NewReviseAssessmentHandler(f.handler)

	_, err := h.Handle(context.Background(), ReviseAssessmentCommand{
		SessionID: f.session.ID.String(),
		Text:      passingText,
	})
	require.Error(t, err)
}

func TestReviseAssessment_GateRunsBeforeSlotIsSpent(t *testing.T) {
	h, f := newReviseFixture(t)
	callsAfterSetup := f.coach.evalCalls

	result, err := h.Handle(context.Background(), ReviseAssessmentCommand{
		SessionID: f.session.ID.String(),
		Text:      "too short",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Gate)
	assert.False(t, result.Gate.Valid)

	// A gated revision neither spends the slot nor reaches the coach.
	assert.Equal(t, callsAfterSetup, f.coach.evalCalls)
	saved, err := f.sessions.GetByID(context.Background(), f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, saved.PhaseState.RevisionsUsed)
}

func TestReviseAssessment_FailedEvaluationStillSpendsSlot(t *testing.T) {
	h, f := newReviseFixture(t)
	f.handler.coach = &fakeCoach{evalErr: errors.New("model timeout")}
	versionBefore := f.session.Version

	_, err := h.Handle(context.Background(), ReviseAssessmentCommand{
		SessionID: f.session.ID.String(),
		Text:      passingText,
	})
	require.Error(t, err)

	// The slot was written through to the repository before the coach
	// call failed, not just mutated in memory.
	saved, err := f.sessions.GetByID(context.Background(), f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, saved.PhaseState.RevisionsUsed)
	assert.Equal(t, versionBefore+1, saved.Version)
	require.Len(t, f.assessments.pairs, 1)
}
