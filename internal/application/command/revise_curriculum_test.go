package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/child"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/coach"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/curriculum"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/lesson"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

func testCurriculum(t *testing.T, ch *child.Child) *curriculum.Curriculum {
	t.Helper()
	weeks := []curriculum.Week{
		{WeekNumber: 1, Theme: "Story basics", Status: curriculum.WeekCompleted,
			LessonIDs: []shared.LessonID{"narrative-1"}},
		{WeekNumber: 2, Theme: "Opinions", Status: curriculum.WeekInProgress,
			LessonIDs: []shared.LessonID{"opinion-1"}},
		{WeekNumber: 3, Theme: "Facts", Status: curriculum.WeekPending,
			LessonIDs: []shared.LessonID{"informative-1"}},
		{WeekNumber: 4, Theme: "Descriptions", Status: curriculum.WeekPending,
			LessonIDs: []shared.LessonID{"descriptive-1"}},
	}
	return curriculum.NewCurriculum(ch.ID, ch.Tier, weeks, time.Now().UTC())
}

func newReviseCurriculumFixture(t *testing.T, c *fakeCoach) (*ReviseCurriculumHandler, *child.Child, *fakeCurriculumRepo, *fakePublisher) {
	t.Helper()
	ch := testChild(t)
	repo := newFakeCurriculumRepo(testCurriculum(t, ch))
	pub := &fakePublisher{}
	h := NewReviseCurriculumHandler(newFakeChildRepo(ch), repo, lesson.NewCatalog(), c, pub)
	return h, ch, repo, pub
}

func TestReviseCurriculum_AppliesCoachPlanToPendingWeeks(t *testing.T) {
	plans := []coach.WeekPlan{
		{WeekNumber: 3, Theme: "Dinosaur facts", LessonIDs: []shared.LessonID{"informative-2"}},
		{WeekNumber: 4, Theme: "Dinosaur scenes", LessonIDs: []shared.LessonID{"descriptive-2"}},
	}
	h, ch, repo, pub := newReviseCurriculumFixture(t, &fakeCoach{plans: plans})

	result, err := h.Handle(context.Background(), ReviseCurriculumCommand{
		ChildID:     ch.ID.String(),
		ParentPIN:   "1234",
		Description: "More dinosaurs please",
	})
	require.NoError(t, err)

	assert.False(t, result.UsedFallback)
	assert.Equal(t, 2, result.WeeksChanged)

	cur := repo.active[ch.ID]
	assert.Equal(t, "Dinosaur facts", cur.Weeks[2].Theme)
	assert.Equal(t, []shared.LessonID{"descriptive-2"}, cur.Weeks[3].LessonIDs)

	// Completed and in-progress weeks are untouched.
	assert.Equal(t, "Story basics", cur.Weeks[0].Theme)
	assert.Equal(t, "Opinions", cur.Weeks[1].Theme)

	require.Len(t, repo.revisions, 1)
	rev := repo.revisions[0]
	assert.Equal(t, curriculum.ReasonParentRequest, rev.Reason)
	assert.Equal(t, "More dinosaurs please", rev.Description)
	assert.Equal(t, "Facts", rev.PreviousPlan[2].Theme)
	assert.Equal(t, "Dinosaur facts", rev.NewPlan[2].Theme)

	assert.Len(t, pub.byType(shared.EventCurriculumRevised), 1)
}

func TestReviseCurriculum_StoresSuppliedReason(t *testing.T) {
	plans := []coach.WeekPlan{
		{WeekNumber: 3, Theme: "Easier facts", LessonIDs: []shared.LessonID{"informative-2"}},
	}
	h, ch, repo, _ := newReviseCurriculumFixture(t, &fakeCoach{plans: plans})

	_, err := h.Handle(context.Background(), ReviseCurriculumCommand{
		ChildID:     ch.ID.String(),
		ParentPIN:   "1234",
		Reason:      string(curriculum.ReasonAdaptStruggling),
		Description: "Scores have been slipping",
	})
	require.NoError(t, err)

	require.Len(t, repo.revisions, 1)
	assert.Equal(t, curriculum.ReasonAdaptStruggling, repo.revisions[0].Reason)
}

func TestReviseCurriculum_RejectsUnknownReason(t *testing.T) {
	h, ch, _, _ := newReviseCurriculumFixture(t, &fakeCoach{})

	_, err := h.Handle(context.Background(), ReviseCurriculumCommand{
		ChildID:   ch.ID.String(),
		ParentPIN: "1234",
		Reason:    "because",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown reason")
}

func TestReviseCurriculum_FallsBackOnMalformedProposal(t *testing.T) {
	h, ch, repo, _ := newReviseCurriculumFixture(t, &fakeCoach{planErr: shared.ErrMalformedResponse})

	result, err := h.Handle(context.Background(), ReviseCurriculumCommand{
		ChildID:   ch.ID.String(),
		ParentPIN: "1234",
	})
	require.NoError(t, err)

	assert.True(t, result.UsedFallback)
	assert.Equal(t, 2, result.WeeksChanged)

	// The planner still filled both pending weeks with real lessons.
	cur := repo.active[ch.ID]
	for _, w := range cur.Weeks[2:] {
		assert.NotEmpty(t, w.LessonIDs, "week %d left empty", w.WeekNumber)
	}
	require.Len(t, repo.revisions, 1)
}

func TestReviseCurriculum_RejectsWrongPIN(t *testing.T) {
	h, ch, repo, _ := newReviseCurriculumFixture(t, &fakeCoach{})

	_, err := h.Handle(context.Background(), ReviseCurriculumCommand{
		ChildID:   ch.ID.String(),
		ParentPIN: "9999",
	})
	require.ErrorIs(t, err, ErrInvalidPIN)
	assert.Empty(t, repo.revisions)
}

func TestReviseCurriculum_NoPendingWeeks(t *testing.T) {
	ch := testChild(t)
	cur := testCurriculum(t, ch)
	for i := range cur.Weeks {
		cur.Weeks[i].Status = curriculum.WeekCompleted
	}
	repo := newFakeCurriculumRepo(cur)
	h := NewReviseCurriculumHandler(newFakeChildRepo(ch), repo, lesson.NewCatalog(), &fakeCoach{}, nil)

	_, err := h.Handle(context.Background(), ReviseCurriculumCommand{
		ChildID:   ch.ID.String(),
		ParentPIN: "1234",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}

func TestReviseCurriculum_UnexpectedCoachErrorPropagates(t *testing.T) {
	h, ch, repo, _ := newReviseCurriculumFixture(t, &fakeCoach{planErr: errors.New("network down")})

	_, err := h.Handle(context.Background(), ReviseCurriculumCommand{
		ChildID:   ch.ID.String(),
		ParentPIN: "1234",
	})
	require.Error(t, err)
	assert.Empty(t, repo.revisions)
}
