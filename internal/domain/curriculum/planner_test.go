package curriculum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/lesson"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

func TestFallbackPlanner_FillsAllWeeks(t *testing.T) {
	p := NewFallbackPlanner(lesson.NewCatalog())

	weeks := p.PlanWeeks(shared.Tier1, []int{1, 2, 3, 4}, nil)
	require.Len(t, weeks, 4)

	seen := map[shared.LessonID]bool{}
	for i, w := range weeks {
		assert.Equal(t, i+1, w.WeekNumber)
		assert.Equal(t, WeekPending, w.Status)
		assert.NotEmpty(t, w.Theme)
		require.Len(t, w.LessonIDs, 2)
		for _, id := range w.LessonIDs {
			assert.False(t, seen[id], "lesson %s scheduled twice", id)
			seen[id] = true
		}
	}
}

func TestFallbackPlanner_RespectsTier(t *testing.T) {
	catalog := lesson.NewCatalog()
	p := NewFallbackPlanner(catalog)

	weeks := p.PlanWeeks(shared.Tier1, []int{1, 2}, nil)
	for _, w := range weeks {
		for _, id := range w.LessonIDs {
			l := catalog.Get(id)
			require.NotNil(t, l)
			assert.LessOrEqual(t, int(l.Tier), int(shared.Tier1))
		}
	}
}

func TestFallbackPlanner_SkipsScheduled(t *testing.T) {
	p := NewFallbackPlanner(lesson.NewCatalog())

	scheduled := map[shared.LessonID]bool{"narrative-1": true, "opinion-1": true}
	weeks := p.PlanWeeks(shared.Tier1, []int{3}, scheduled)
	require.Len(t, weeks, 1)
	for _, id := range weeks[0].LessonIDs {
		assert.False(t, scheduled[id])
	}
}

func TestFallbackPlanner_CatalogExhaustedRecycles(t *testing.T) {
	catalog := lesson.NewCatalog()
	p := NewFallbackPlanner(catalog)

	// Mark every tier-1 lesson as scheduled so nothing fresh remains.
	scheduled := map[shared.LessonID]bool{}
	for _, l := range catalog.ForTier(shared.Tier1) {
		scheduled[l.ID] = true
	}

	weeks := p.PlanWeeks(shared.Tier1, []int{9}, scheduled)
	require.Len(t, weeks, 1)
	assert.NotEmpty(t, weeks[0].LessonIDs, "a plan must never come back empty")
}
