package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/curriculum"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/lesson"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

func TestCreateChild_SeedsStarterCurriculum(t *testing.T) {
	children := newFakeChildRepo()
	curricula := newFakeCurriculumRepo()
	catalog := lesson.NewCatalog()
	h := NewCreateChildHandler(children, curricula, catalog)

	result, err := h.Handle(context.Background(), CreateChildCommand{
		Name:      "Maya",
		Age:       8,
		Interests: []string{"dinosaurs", "soccer"},
		ParentPIN: "1234",
	})
	require.NoError(t, err)

	assert.True(t, shared.ChildID(result.ChildID).IsValid())
	assert.Equal(t, int(shared.Tier1), result.Tier)
	require.Len(t, result.Weeks, initialPlanWeeks)

	for i, w := range result.Weeks {
		assert.Equal(t, i+1, w.WeekNumber)
		assert.Equal(t, curriculum.WeekPending, w.Status)
		require.NotEmpty(t, w.LessonIDs)
		for _, id := range w.LessonIDs {
			l := catalog.Get(id)
			require.NotNil(t, l, "unknown lesson %q in starter plan", id)
			assert.LessOrEqual(t, int(l.Tier), int(shared.Tier1))
		}
	}

	cur := curricula.active[shared.ChildID(result.ChildID)]
	require.NotNil(t, cur)
	assert.True(t, cur.Active)
}

func TestCreateChild_WeeklyGoalOverride(t *testing.T) {
	children := newFakeChildRepo()
	h := NewCreateChildHandler(children, newFakeCurriculumRepo(), lesson.NewCatalog())

	result, err := h.Handle(context.Background(), CreateChildCommand{
		Name:             "Omar",
		Age:              12,
		ParentPIN:        "123456",
		WeeklyLessonGoal: 5,
	})
	require.NoError(t, err)

	ch, err := children.GetByID(context.Background(), shared.ChildID(result.ChildID))
	require.NoError(t, err)
	assert.Equal(t, 5, ch.WeeklyLessonGoal)
	assert.Equal(t, shared.Tier3, ch.Tier)
	assert.True(t, ch.VerifyPIN("123456"))
	assert.False(t, ch.VerifyPIN("000000"))
}

func TestCreateChild_RejectsBadInput(t *testing.T) {
	h := NewCreateChildHandler(newFakeChildRepo(), newFakeCurriculumRepo(), lesson.NewCatalog())

	cases := []CreateChildCommand{
		{Name: "", Age: 8, ParentPIN: "1234"},
		{Name: "Maya", Age: 5, ParentPIN: "1234"},
		{Name: "Maya", Age: 15, ParentPIN: "1234"},
		{Name: "Maya", Age: 8, ParentPIN: "12"},
		{Name: "Maya", Age: 8, ParentPIN: "12ab"},
	}
	for _, cmd := range cases {
		_, err := h.Handle(context.Background(), cmd)
		assert.Error(t, err, "command %+v should fail", cmd)
	}
}
