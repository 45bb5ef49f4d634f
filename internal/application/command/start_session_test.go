package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/child"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/lesson"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/session"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

// firstChild returns the single child seeded into a fake repo.
func firstChild(r *fakeChildRepo) *child.Child {
	for _, c := range r.children {
		return c
	}
	return nil
}

func newStartSessionFixture(t *testing.T, reply string) (*StartSessionHandler, *fakeSessionRepo, *fakeProgressRepo, *fakeChildRepo) {
	t.Helper()
	ch := testChild(t)
	sessions := newFakeSessionRepo()
	progress := newFakeProgressRepo()
	children := newFakeChildRepo(ch)
	h := NewStartSessionHandler(
		sessions,
		children,
		progress,
		newFakeLearnerRepo(),
		lesson.NewCatalog(),
		&fakeCoach{reply: reply},
		&fakePublisher{},
	)
	return h, sessions, progress, children
}

func TestStartSession_CreatesSessionWithOpeningTurn(t *testing.T) {
	h, sessions, progress, children := newStartSessionFixture(t,
		"Hi Maya! Today we're learning how stories begin. [EXPECTS_RESPONSE]")
	ch := firstChild(children)

	result, err := h.Handle(context.Background(), StartSessionCommand{
		ChildID:  ch.ID.String(),
		LessonID: "narrative-1",
	})
	require.NoError(t, err)

	assert.False(t, result.Resumed)
	assert.Equal(t, "instruction", result.Phase)
	assert.Equal(t, "Hi Maya! Today we're learning how stories begin.", result.CoachMessage)

	s, err := sessions.GetByID(context.Background(), shared.SessionID(result.SessionID))
	require.NoError(t, err)
	require.Len(t, s.History, 1)
	assert.Equal(t, session.RoleCoach, s.History[0].Role)

	p, err := progress.Get(context.Background(), ch.ID, "narrative-1")
	require.NoError(t, err)
	assert.Equal(t, lesson.StatusInProgress, p.Status)
	assert.Equal(t, "instruction", p.CurrentPhase)
}

func TestStartSession_ResumesActiveSession(t *testing.T) {
	h, sessions, _, children := newStartSessionFixture(t, "Welcome back!")
	ch := firstChild(children)

	existing := testSession(t, ch, "narrative-1")
	existing.AppendCoach("We were talking about beginnings.", existing.CreatedAt)
	require.NoError(t, sessions.Create(context.Background(), existing))

	result, err := h.Handle(context.Background(), StartSessionCommand{
		ChildID:  ch.ID.String(),
		LessonID: "narrative-1",
	})
	require.NoError(t, err)

	assert.True(t, result.Resumed)
	assert.Equal(t, existing.ID.String(), result.SessionID)
	assert.Equal(t, "We were talking about beginnings.", result.CoachMessage)
	assert.Len(t, sessions.sessions, 1)
}

func TestStartSession_FinishedSessionIsNotResumed(t *testing.T) {
	h, sessions, _, children := newStartSessionFixture(t, "Ready for another go?")
	ch := firstChild(children)

	done := testSession(t, ch, "narrative-1")
	done.Phase = session.PhaseFeedback
	require.NoError(t, sessions.Create(context.Background(), done))

	result, err := h.Handle(context.Background(), StartSessionCommand{
		ChildID:  ch.ID.String(),
		LessonID: "narrative-1",
	})
	require.NoError(t, err)

	assert.False(t, result.Resumed)
	assert.NotEqual(t, done.ID.String(), result.SessionID)
	assert.Len(t, sessions.sessions, 2)
}

func TestStartSession_UnknownLesson(t *testing.T) {
	h, _, _, children := newStartSessionFixture(t, "hello")
	ch := firstChild(children)

	_, err := h.Handle(context.Background(), StartSessionCommand{
		ChildID:  ch.ID.String(),
		LessonID: "narrative-99",
	})
	require.Error(t, err)
}
